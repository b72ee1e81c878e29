package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPredicates_SeeThroughWrapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"validation", ValidationError{Field: "participants", Msg: "must be positive"}, IsValidation},
		{"authorization", AuthorizationError{Resource: "booking"}, IsAuthorization},
		{"not found", NotFoundError{Resource: "booking"}, IsNotFound},
		{"not available", NotAvailableError{Resource: "travel plan"}, IsNotAvailable},
		{"minimum payment", MinimumPaymentError{Minimum: 200, Got: 150}, IsMinimumPayment},
		{"not allowed", NotAllowedError{Action: "cancel"}, IsNotAllowed},
		{"conflict", ConflictError{Resource: "booking"}, IsConflict},
		{"internal", InternalError{Err: errors.New("boom")}, IsInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("apply payment: %w", tc.err)
			if !tc.is(wrapped) {
				t.Fatalf("predicate did not match wrapped %T", tc.err)
			}
		})
	}
}

func TestIsDomain_ExcludesInternal(t *testing.T) {
	if IsDomain(InternalError{Err: errors.New("db down")}) {
		t.Fatalf("internal error must not be exposed as domain error")
	}
	if !IsDomain(MinimumPaymentError{Minimum: 200, Got: 150}) {
		t.Fatalf("minimum payment error must be a domain error")
	}
}

func TestMessages(t *testing.T) {
	if got := (ValidationError{Field: "participants", Msg: "exceeds plan maximum"}).Error(); got != "participants: exceeds plan maximum" {
		t.Fatalf("unexpected validation message %q", got)
	}
	if got := (MinimumPaymentError{Minimum: 200, Got: 150}).Error(); got != "first partial payment must be at least 200, got 150" {
		t.Fatalf("unexpected minimum payment message %q", got)
	}
	if got := (InternalError{Err: errors.New("pq: relation missing")}).Error(); got != "internal error" {
		t.Fatalf("internal error leaks details: %q", got)
	}
}
