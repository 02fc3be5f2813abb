package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/pkg/requestcontext"
)

func TestInMemory_AllowsUpToLimit(t *testing.T) {
	l := NewInMemory(time.Minute)

	for i := 0; i < 3; i++ {
		d := l.Allow("1.2.3.4", 3)
		assert.True(t, d.Allowed, "request %d", i+1)
	}
	d := l.Allow("1.2.3.4", 3)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestInMemory_KeysAreIndependent(t *testing.T) {
	l := NewInMemory(time.Minute)

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", 3)
	}
	d := l.Allow("5.6.7.8", 3)
	assert.True(t, d.Allowed)
}

func TestInMemory_WindowResets(t *testing.T) {
	l := NewInMemory(10 * time.Millisecond)

	require.True(t, l.Allow("1.2.3.4", 1).Allowed)
	assert.False(t, l.Allow("1.2.3.4", 1).Allowed)

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4", 1).Allowed)
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	handler := Middleware(NewInMemory(time.Minute), 2)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, do("1.2.3.4").Code)

	rec := do("1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Same error envelope as every other endpoint.
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body["error"])
	assert.Equal(t, "too many requests", body["error_description"])

	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, do("9.9.9.9").Code)
}
