package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(okHandler)

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))
}

func TestClientIPIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", rl.clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "10.0.0.1", rl.clientIP(req))
}

func TestClientIPBehindTrustedProxies(t *testing.T) {
	rl := NewRateLimiter(1, 1, netip.MustParsePrefix("10.0.0.0/8"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", rl.clientIP(req), "no header")

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", rl.clientIP(req))

	// a client-forged leading hop is skipped; the proxy-appended hop wins
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.7, 10.0.0.2")
	assert.Equal(t, "203.0.113.7", rl.clientIP(req))

	req.Header.Set("X-Forwarded-For", "garbage")
	assert.Equal(t, "10.0.0.1", rl.clientIP(req))
}

func TestRotatingForwardedForCannotDodgeLimit(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	h := rl.Middleware(okHandler)

	blocked := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			blocked++
		}
	}

	assert.Equal(t, 49, blocked)
	assert.Len(t, rl.visitors, 1)
}

func TestCleanupVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("1.1.1.1")
	rl.visitors["1.1.1.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.getLimiter("2.2.2.2")

	rl.evictIdle(3 * time.Minute)
	assert.NotContains(t, rl.visitors, "1.1.1.1")
	assert.Contains(t, rl.visitors, "2.2.2.2")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.CleanupVisitors(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop on cancel")
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	h := BasicAuthMiddleware("admin", "secret")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req.SetBasicAuth("admin", "wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req.SetBasicAuth("admin", "secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	disabled := BasicAuthMiddleware("", "")(okHandler)
	rr = httptest.NewRecorder()
	disabled.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMonitorMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MonitorMiddleware)
	r.HandleFunc("/api/v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/things/{id}", http.MethodGet, http.StatusText(http.StatusTeapot)))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/things/42", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/things/{id}", http.MethodGet, http.StatusText(http.StatusTeapot)))

	assert.Equal(t, before+1, after)
}
