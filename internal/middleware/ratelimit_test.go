package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupRateLimitedRouter(perMinute int) *gin.Engine {
	router := gin.New()
	rl := NewRateLimiter(perMinute)
	router.GET("/limited", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func hitFrom(router *gin.Engine, addr string) int {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterEnforcesBudget(t *testing.T) {
	router := setupRateLimitedRouter(3)

	for i := 0; i < 3; i++ {
		if code := hitFrom(router, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}

	if code := hitFrom(router, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("over-budget request: status = %d, want 429", code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	router := setupRateLimitedRouter(1)

	if code := hitFrom(router, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first client status = %d, want 200", code)
	}
	if code := hitFrom(router, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("first client second hit status = %d, want 429", code)
	}

	// a different ip has its own bucket
	if code := hitFrom(router, "10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", code)
	}
}
