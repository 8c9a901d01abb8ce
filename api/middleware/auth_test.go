package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
)

func TestAuthRejectsMissingAndInvalidToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler)

	for _, header := range []string{"", "Bearer invalid", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.Code)
		}
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, userID, enums.UserRoleAdmin, "jti-1")

	var (
		gotUser   uuid.UUID
		gotRole   enums.UserRole
		gotAccess string
	)
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUser != userID || gotRole != enums.UserRoleAdmin || gotAccess != "jti-1" {
		t.Fatalf("unexpected identity %s %s %s", gotUser, gotRole, gotAccess)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token := mintTestToken(t, uuid.New(), enums.UserRoleCustomer, "jti-2")

	cases := []struct {
		verifier stubSessionVerifier
		status   int
		code     pkgerrors.Code
	}{
		{stubSessionVerifier{ok: false}, http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{stubSessionVerifier{err: errors.New("redis down")}, http.StatusServiceUnavailable, pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		Auth(testJWT, tc.verifier, nil)(okHandler).ServeHTTP(resp, req)
		if resp.Code != tc.status || errorCode(t, resp.Body.Bytes()) != string(tc.code) {
			t.Fatalf("expected %d %s, got %d %s", tc.status, tc.code, resp.Code, resp.Body.String())
		}
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	var gotUser uuid.UUID
	handler := OptionalAuth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK || gotUser != uuid.Nil {
		t.Fatalf("expected anonymous pass-through, got %d %s", resp.Code, gotUser)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(enums.UserRoleAdmin, nil)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), enums.UserRoleCustomer, "jti"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), enums.UserRoleAdmin, "jti"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
