package domain

import (
	"errors"
	"fmt"
)

// ValidationError — некорректные входные данные, отклоняются до любой записи.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// AuthorizationError — вызывающий не владеет бронированием.
type AuthorizationError struct {
	Resource string
	Msg      string
}

func (e AuthorizationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource != "" {
		return fmt.Sprintf("not allowed to access %s", e.Resource)
	}
	return "forbidden"
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// NotAvailableError — план неактивен или не хватает мест.
type NotAvailableError struct {
	Resource string
	Msg      string
}

func (e NotAvailableError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s not available: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s not available", e.Resource)
	default:
		return "not available"
	}
}

// MinimumPaymentError — первый частичный платёж меньше минимального.
type MinimumPaymentError struct {
	Minimum int64
	Got     int64
}

func (e MinimumPaymentError) Error() string {
	return fmt.Sprintf("first partial payment must be at least %d, got %d", e.Minimum, e.Got)
}

// NotAllowedError — переход запрещён правилами жизненного цикла.
type NotAllowedError struct {
	Action string
	Msg    string
	Err    error
}

func (e NotAllowedError) Error() string {
	switch {
	case e.Msg != "" && e.Action != "":
		return fmt.Sprintf("%s not allowed: %s", e.Action, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Action != "":
		return fmt.Sprintf("%s not allowed", e.Action)
	default:
		return "not allowed"
	}
}

func (e NotAllowedError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InternalError скрывает детали хранилища от вызывающего; Err остаётся для логов.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsNotAvailable(err error) bool {
	var target NotAvailableError
	return errors.As(err, &target)
}

func IsMinimumPayment(err error) bool {
	var target MinimumPaymentError
	return errors.As(err, &target)
}

func IsNotAllowed(err error) bool {
	var target NotAllowedError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// IsDomain сообщает, можно ли показать ошибку вызывающему как есть.
func IsDomain(err error) bool {
	return IsValidation(err) ||
		IsAuthorization(err) ||
		IsNotFound(err) ||
		IsNotAvailable(err) ||
		IsMinimumPayment(err) ||
		IsNotAllowed(err) ||
		IsConflict(err)
}
