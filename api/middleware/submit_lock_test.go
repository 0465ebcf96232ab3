package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

type fakeLockStore struct {
	held     map[string]string
	released []string
	err      error
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{held: map[string]string{}}
}

func (f *fakeLockStore) LockKey(scope, id string) string {
	return "lock:" + scope + ":" + id
}

func (f *fakeLockStore) AcquireLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	if _, ok := f.held[key]; ok {
		return "", false, nil
	}
	f.held[key] = "token-" + key
	return f.held[key], true, nil
}

func (f *fakeLockStore) ReleaseLock(_ context.Context, key, token string) error {
	if f.held[key] == token {
		delete(f.held, key)
		f.released = append(f.released, key)
	}
	return nil
}

func withCart(r *http.Request, key string) *http.Request {
	return r.WithContext(WithCartKey(r.Context(), key))
}

func TestSubmitLockReleasesAfterHandler(t *testing.T) {
	store := newFakeLockStore()
	var heldDuring bool
	handler := SubmitLock(store, time.Minute, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, heldDuring = store.held["lock:create_pix:cart-1"]
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withCart(httptest.NewRequest(http.MethodPost, "/api/public/create-pix", nil), "cart-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !heldDuring {
		t.Fatalf("expected lock held while handler runs")
	}
	if len(store.held) != 0 || len(store.released) != 1 {
		t.Fatalf("expected lock released, held=%v released=%v", store.held, store.released)
	}
}

func TestSubmitLockRejectsConcurrentSubmit(t *testing.T) {
	store := newFakeLockStore()
	store.held["lock:create_pix:cart-1"] = "someone-else"
	called := false
	handler := SubmitLock(store, time.Minute, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withCart(httptest.NewRequest(http.MethodPost, "/api/public/create-pix", nil), "cart-1"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run while locked")
	}
	if store.held["lock:create_pix:cart-1"] != "someone-else" {
		t.Fatalf("foreign lock must be left alone")
	}
}

func TestSubmitLockStoreFailure(t *testing.T) {
	store := newFakeLockStore()
	store.err = errors.New("redis down")
	handler := SubmitLock(store, time.Minute, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withCart(httptest.NewRequest(http.MethodPost, "/api/public/create-pix", nil), "cart-1"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	if code := errorCode(t, rec.Body.Bytes()); code != string(pkgerrors.CodeDependency) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestSubmitLockWithoutCartKeyPassesThrough(t *testing.T) {
	store := newFakeLockStore()
	handler := SubmitLock(store, time.Minute, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/public/create-pix", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(store.released) != 0 {
		t.Fatalf("expected no lock activity")
	}
}
