package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	return req
}

func TestShouldRateLimit_FixedWindow(t *testing.T) {
	l := New()
	req := newRequest("203.0.113.7")

	wantLimited := []bool{false, false, false, true, true}
	wantRemaining := []int{2, 1, 0, 0, 0}

	for i := range wantLimited {
		res := l.ShouldRateLimit(req, "api", 3, time.Minute)
		assert.Equal(t, wantLimited[i], res.Limited, "request %d limited", i+1)
		assert.Equal(t, wantRemaining[i], res.Remaining, "request %d remaining", i+1)
	}
}

func TestShouldRateLimit_WindowReset(t *testing.T) {
	l := New()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	req := newRequest("203.0.113.7")

	for i := 0; i < 3; i++ {
		l.ShouldRateLimit(req, "api", 2, time.Minute)
	}
	res := l.ShouldRateLimit(req, "api", 2, time.Minute)
	require.True(t, res.Limited)
	assert.Equal(t, current.Add(time.Minute), res.ResetAt)

	// Advance past the window boundary; the counter starts over.
	current = current.Add(time.Minute + time.Second)
	res = l.ShouldRateLimit(req, "api", 2, time.Minute)
	assert.False(t, res.Limited)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, current.Add(time.Minute), res.ResetAt)
}

func TestShouldRateLimit_BucketsIsolatedByPrefixAndClient(t *testing.T) {
	l := New()

	reqA := newRequest("203.0.113.7")
	reqB := newRequest("198.51.100.9")

	for i := 0; i < 2; i++ {
		res := l.ShouldRateLimit(reqA, "auth", 1, time.Minute)
		if i == 0 {
			assert.False(t, res.Limited)
		} else {
			assert.True(t, res.Limited)
		}
	}

	// Same client, different prefix: separate bucket.
	assert.False(t, l.ShouldRateLimit(reqA, "payments", 1, time.Minute).Limited)
	// Same prefix, different client: separate bucket.
	assert.False(t, l.ShouldRateLimit(reqB, "auth", 1, time.Minute).Limited)
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first forwarded entry wins",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-Ip": "198.51.100.9"},
			want:    "203.0.113.7",
		},
		{
			name:    "forwarded entry is trimmed",
			headers: map[string]string{"X-Forwarded-For": "  203.0.113.7 , 10.0.0.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "real ip fallback",
			headers: map[string]string{"X-Real-Ip": "198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "anonymous fallback",
			headers: nil,
			want:    "anon",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientKey(req))
		})
	}
}

func TestReset(t *testing.T) {
	l := New()
	req := newRequest("203.0.113.7")

	l.ShouldRateLimit(req, "api", 1, time.Minute)
	require.True(t, l.ShouldRateLimit(req, "api", 1, time.Minute).Limited)

	l.Reset()
	assert.False(t, l.ShouldRateLimit(req, "api", 1, time.Minute).Limited)
}

func TestSweep_EvictsExpiredBuckets(t *testing.T) {
	l := New()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	req := newRequest("203.0.113.7")
	l.ShouldRateLimit(req, "api", 3, time.Minute)
	require.Len(t, l.buckets, 1)

	// Still inside the retention window after expiry.
	current = current.Add(2 * time.Minute)
	l.sweep(5 * time.Minute)
	assert.Len(t, l.buckets, 1)

	current = current.Add(10 * time.Minute)
	l.sweep(5 * time.Minute)
	assert.Empty(t, l.buckets)
}

func TestMiddleware_DeniedRequest(t *testing.T) {
	l := New()
	rejections := 0
	l.OnReject = func() { rejections++ }

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := l.Middleware("auth", 1, time.Minute)(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newRequest("203.0.113.7"))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, newRequest("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, 1, rejections)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "RATE_LIMITED", errBody["code"])
}
