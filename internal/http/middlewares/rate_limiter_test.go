package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _, _ := rl.Allow(ctx, "k"); !ok {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	ok, retry, _ := rl.Allow(ctx, "k")
	if ok {
		t.Fatalf("third hit should be limited")
	}
	if retry != time.Minute {
		t.Fatalf("got retry %s, want 1m", retry)
	}

	if ok, _, _ := rl.Allow(ctx, "other"); !ok {
		t.Fatalf("keys must be limited independently")
	}

	now = now.Add(time.Minute)
	if ok, _, _ := rl.Allow(ctx, "k"); !ok {
		t.Fatalf("a new window should reset the count")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", RateLimit(NewRateLimiter(1, time.Minute), KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/open", RateLimit(failingLimiter{}, KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	post := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := post("/login"); w.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", w.Code)
	}

	w := post("/login")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	for i := 0; i < 3; i++ {
		if w := post("/open"); w.Code != http.StatusOK {
			t.Fatalf("limiter errors must not block requests, got %d", w.Code)
		}
	}
}
