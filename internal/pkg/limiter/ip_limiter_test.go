package limiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/resp"
)

func newTestLimiter(t *testing.T, r rate.Limit, b int) *IPRateLimiter {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewIPRateLimiter(ctx, r, b, time.Hour)
}

func TestIPRateLimiter_GetLimiterIsPerIP(t *testing.T) {
	l := newTestLimiter(t, 1, 1)

	a := l.GetLimiter("10.0.0.1")
	assert.Same(t, a, l.GetLimiter("10.0.0.1"))
	assert.NotSame(t, a, l.GetLimiter("10.0.0.2"))
	assert.Equal(t, 2, l.Len())
}

func TestIPRateLimiter_SweepRemovesIdleVisitors(t *testing.T) {
	l := newTestLimiter(t, 1, 2)

	busy := l.GetLimiter("10.0.0.1")
	require.True(t, busy.Allow())
	require.True(t, busy.Allow())
	l.GetLimiter("10.0.0.2")

	removed, remaining := l.sweep(time.Now())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, remaining)

	// a minute later the busy bucket has refilled
	removed, remaining = l.sweep(time.Now().Add(time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, remaining)
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := newTestLimiter(t, rate.Every(time.Hour), 2)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1001").Code)

	rec := call("192.0.2.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body resp.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errs.ErrRateLimitExceeded, body.Code)

	// another address has its own bucket
	assert.Equal(t, http.StatusNoContent, call("192.0.2.9:1000").Code)
}
