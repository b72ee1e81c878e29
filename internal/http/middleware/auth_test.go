package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestParseToken(t *testing.T) {
	secret := []byte("s3cret")
	id := uuid.New()

	tok, err := IssueToken(secret, id, RoleHost, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseToken(secret, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != id.String() || claims.Role != RoleHost {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken([]byte("other"), tok); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
	expired, err := IssueToken(secret, id, RoleHost, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken(secret, expired); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestAuthAndRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("s3cret")

	r := gin.New()
	r.GET("/me", Auth(secret), RequireRoles(RoleHost), func(c *gin.Context) {
		id, ok := CallerID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	host := uuid.New()
	hostTok, _ := IssueToken(secret, host, RoleHost, time.Hour)
	guestTok, _ := IssueToken(secret, uuid.New(), RoleGuest, time.Hour)

	if w := call("Bearer " + hostTok); w.Code != http.StatusOK || w.Body.String() != host.String() {
		t.Fatalf("host: %d %s", w.Code, w.Body.String())
	}
	if w := call("Bearer " + guestTok); w.Code != http.StatusForbidden {
		t.Fatalf("guest: expected 403, got %d", w.Code)
	}
	if w := call("Token " + hostTok); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong scheme: expected 401, got %d", w.Code)
	}
	if w := call(""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no header: expected 401, got %d", w.Code)
	}
}
