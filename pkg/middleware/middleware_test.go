package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"spacebook/pkg/identity"
	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

func okHandler(calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})
}

func TestRateLimit_PerKey(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, 2, RequesterKey, logger.Discard())
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler(nil))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		if userID != "" {
			req = req.WithContext(identity.WithRequester(req.Context(), model.Requester{ID: userID}))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("alice"); code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, code)
		}
	}
	if code := send("alice"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %d", code)
	}
	if code := send("bob"); code != http.StatusCreated {
		t.Errorf("a different requester must have its own bucket, got %d", code)
	}
	if code := send(""); code != http.StatusCreated {
		t.Errorf("anonymous requests are keyed by address, got %d", code)
	}
}

func TestRateLimit_RetryAfterHeader(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute, 1, nil, logger.Discard())
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler(nil))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestIdempotency_ReplaysPerRequester(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	var calls atomic.Int32
	h := Idempotency(store, "")(okHandler(&calls))

	send := func(userID, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req = req.WithContext(identity.WithRequester(req.Context(), model.Requester{ID: userID}))
		req.Header.Set(IdempotencyHeader, key)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	first := send("alice", "k1")
	second := send("alice", "k1")
	if calls.Load() != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls.Load())
	}
	if second.Code != first.Code || second.Body.String() != first.Body.String() {
		t.Errorf("replay differs: %d %q vs %d %q", second.Code, second.Body.String(), first.Code, first.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Error("expected replay marker header")
	}

	send("bob", "k1")
	if calls.Load() != 2 {
		t.Errorf("same key from another requester must not replay, calls=%d", calls.Load())
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("expected failed responses to be retried, calls=%d", calls.Load())
	}
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "late") {
		t.Error("late write must be dropped")
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard())(okHandler(nil))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusCreated},
		{"form post", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing type", http.MethodPatch, `{}`, "", http.StatusUnsupportedMediaType},
		{"bodiless delete", http.MethodDelete, "", "", http.StatusCreated},
		{"get", http.MethodGet, "", "", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(okHandler(nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"too":"large"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	if w.Code != http.StatusCreated {
		t.Errorf("expected small body to pass, got %d", w.Code)
	}
}

func TestRecoveryAndRequestID(t *testing.T) {
	log := logger.Discard()
	var seenID string
	h := RequestLogging(log)(Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if seenID != "req-123" {
		t.Errorf("expected incoming request id to be kept, got %q", seenID)
	}
	if w.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("expected request id echoed in response header")
	}
}
