package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key], _ = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	return true, f.Set(ctx, key, value, ttl)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func postWithKey(target, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	return payload.Error.Code
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	Idempotency(newFakeStore(), nil, 0)(handler).ServeHTTP(rec, postWithKey("/transactions", "", `{"foo":"bar"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, CheckoutIdempotencyTTL)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	first := httptest.NewRecorder()
	mw(handler).ServeHTTP(first, postWithKey("/checkout", "abc", `{"foo":"bar"}`))
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	mw(handler).ServeHTTP(replay, postWithKey("/checkout", "abc", `{"foo":"bar"}`))
	if replay.Code != http.StatusAccepted {
		t.Fatalf("expected replay status 202 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if replay.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if replay.Body.String() != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for _, ttl := range store.ttls {
		if ttl != CheckoutIdempotencyTTL {
			t.Fatalf("expected final record ttl %v got %v", CheckoutIdempotencyTTL, ttl)
		}
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	mw := Idempotency(newFakeStore(), nil, 0)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), postWithKey("/transactions", "xyz", `{"foo":"bar"}`))

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, postWithKey("/transactions", "xyz", `{"foo":"diff"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestIdempotencyRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	var inner *httptest.ResponseRecorder
	var calls int

	var handler http.Handler
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// a duplicate arrives while the first request is still running
			inner = httptest.NewRecorder()
			mw(handler).ServeHTTP(inner, postWithKey("/confirm", "dup", `{}`))
		}
		w.WriteHeader(http.StatusCreated)
	})

	outer := httptest.NewRecorder()
	mw(handler).ServeHTTP(outer, postWithKey("/confirm", "dup", `{}`))

	if outer.Code != http.StatusCreated {
		t.Fatalf("expected first request 201 got %d", outer.Code)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to be rejected with 409")
	}
	if calls != 1 {
		t.Fatalf("expected one handler run, got %d", calls)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	mw := Idempotency(newFakeStore(), nil, 0)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		mw(handler).ServeHTTP(httptest.NewRecorder(), postWithKey("/confirm", "retry-me", `{}`))
	}
	if calls != 2 {
		t.Fatalf("expected retry after 503 to reach handler, got %d calls", calls)
	}
}

func TestIdempotencyWithoutStorePassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Idempotency(nil, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, postWithKey("/confirm", "", ""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through 204 got %d", rec.Code)
	}
}
