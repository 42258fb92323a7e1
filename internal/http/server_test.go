package http

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

func runAsync(s *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run("127.0.0.1:0") }()
	return done
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run still serving 2s after Shutdown")
	}
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(RouterConfig{Log: logger.Nop()})
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	waitRun(t, runAsync(s))
}

func TestServer_ShutdownRacingRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for i := 0; i < 20; i++ {
		s := NewServer(RouterConfig{Log: logger.Nop()})
		done := runAsync(s)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := s.Shutdown(ctx); err != nil {
			cancel()
			t.Fatalf("Shutdown: %v", err)
		}
		cancel()
		waitRun(t, done)
	}
}
