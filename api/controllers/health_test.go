package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/vitrinebr/loja-api/pkg/config"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := testLogger()

	rec := serve(HealthReady(cfg, logg, stubPinger{}, stubPinger{}), newRequest(http.MethodGet, "/health/ready", requestOpts{}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Loja-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}

	rec = serve(HealthReady(cfg, logg, stubPinger{}, stubPinger{err: errors.New("connection refused")}), newRequest(http.MethodGet, "/health/ready", requestOpts{}))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when redis is down, got %d", rec.Code)
	}
	if code := errorCodeOf(t, rec); code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected DEPENDENCY_ERROR, got %s", code)
	}

	rec = serve(HealthReady(cfg, logg, nil, stubPinger{}), newRequest(http.MethodGet, "/health/ready", requestOpts{}))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a database, got %d", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	rec := serve(HealthLive(cfg), newRequest(http.MethodGet, "/health/live", requestOpts{}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
