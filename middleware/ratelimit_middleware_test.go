package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Piero-design/VETAQP/limiter"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
)

// Both limiter strategies must fail open when the redis backend is
// unreachable, the login and register routes included.
func TestRateLimitFailsOpenWhenRedisUnavailable(t *testing.T) {
	strategies := map[string]limiter.Strategy{
		"fixed-window":   &limiter.FixedWindowStrategy{},
		"sliding-window": &limiter.SlidingWindowStrategy{},
	}

	for name, strategy := range strategies {
		t.Run(name, func(t *testing.T) {
			rdb := goredis.NewClient(&goredis.Options{
				Addr:        "127.0.0.1:1",
				DialTimeout: 100 * time.Millisecond,
			})
			defer rdb.Close()

			mw := NewRateLimitMiddleware(
				limiter.NewManager(rdb, strategy),
				RateLimitConfig{Limit: 1, Window: time.Minute},
			)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			handler := mw(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})
			if err := handler(c); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}
			if !called {
				t.Fatal("request should pass through when the limiter backend is down")
			}
		})
	}
}

