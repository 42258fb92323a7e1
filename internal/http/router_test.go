package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpH "github.com/yungbote/moodlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/moodlog-backend/internal/http/middleware"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

func TestRouter_HealthMetricsAndRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New(prometheus.NewRegistry())
	r := NewRouter(RouterConfig{
		Log:                  logger.Nop(),
		Metrics:              m,
		HealthHandler:        httpH.NewHealthHandler(),
		GenerateImageHandler: httpH.NewGenerateImageHandler(logger.Nop(), nil, nil),
		ImageRateLimiter:     httpMW.NewIPRateLimiter(1),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}

	// Malformed bodies stop before the image service, so a nil one is fine here.
	codes := []int{}
	for _, path := range []string{"/generate-image", "/api/generate-image"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.RemoteAddr = "10.1.1.1:999"
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected 400 then 429 across both paths, got %v", codes)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "moodlog_http_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
