package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/pixfunnel-backend/api/validators"
)

func oversizedBody() string {
	return `{"customer":{"email":"big@example.com","name":"` + strings.Repeat("a", validators.MaxBodyBytes) + `"}}`
}

func TestBodyLimitStopsRateLimitBuffering(t *testing.T) {
	called := false
	policy := NewRateLimitPolicy("create_pix", time.Minute, 0, 5)
	handler := BodyLimit()(RateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/public/create-pix", strings.NewReader(oversizedBody()))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run for an oversized body")
	}
}

func TestBodyLimitStopsIdempotencyBuffering(t *testing.T) {
	called := false
	handler := BodyLimit()(Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	req := requestWithPattern(http.MethodPost, "/api/public/create-pix", "/api/public/create-pix", strings.NewReader(oversizedBody()))
	req.Header.Set(idempotencyHeader, "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run for an oversized body")
	}
}

func TestBufferBodyCapsWithoutBodyLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(oversizedBody()))
	if _, err := bufferBody(req); err == nil {
		t.Fatalf("expected error for oversized body")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	body, err := bufferBody(req)
	if err != nil {
		t.Fatalf("buffer body: %v", err)
	}
	again, _ := io.ReadAll(req.Body)
	if string(body) != `{"a":1}` || string(again) != `{"a":1}` {
		t.Fatalf("body not restored: %q %q", body, again)
	}
}
