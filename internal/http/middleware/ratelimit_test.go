package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatalf("expected burst of 2 to pass")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatalf("limits must be per IP")
	}
	now = now.Add(30 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Fatalf("expected a token after refill")
	}

	now = now.Add(2 * limiterIdleTTL)
	rl.Allow("3.3.3.3")
	if _, ok := rl.limiters["1.1.1.1"]; ok {
		t.Fatalf("expected idle limiter to be swept")
	}

	disabled := NewIPRateLimiter(0)
	if disabled != nil || !disabled.Allow("x") {
		t.Fatalf("expected a disabled limiter to allow everything")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generate-image", RateLimit(NewIPRateLimiter(1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate-image", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
}
