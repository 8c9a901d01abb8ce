package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrinebr/loja-api/api/middleware"
	"github.com/vitrinebr/loja-api/pkg/enums"
	"github.com/vitrinebr/loja-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: io.Discard})
}

type requestOpts struct {
	body        string
	params      map[string]string
	userID      uuid.UUID
	role        enums.UserRole
	cartSession string
}

func newRequest(method, target string, opts requestOpts) *http.Request {
	var body io.Reader = http.NoBody
	if opts.body != "" {
		body = strings.NewReader(opts.body)
	}
	req := httptest.NewRequest(method, target, body)
	ctx := req.Context()
	rc := chi.NewRouteContext()
	for k, v := range opts.params {
		rc.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	if opts.userID != uuid.Nil {
		role := opts.role
		if role == "" {
			role = enums.UserRoleCustomer
		}
		ctx = middleware.WithIdentity(ctx, opts.userID, role, "access-1")
	}
	if opts.cartSession != "" {
		ctx = middleware.WithCartSession(ctx, opts.cartSession)
	}
	return req.WithContext(ctx)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCodeOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v (body %s)", err, rec.Body.String())
	}
	return payload.Error.Code
}
