package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/moodlog-backend/internal/platform/httpx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

func newTestImageClient(t *testing.T, model string, handler http.HandlerFunc) ImageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewImageClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: model})
	if err != nil {
		t.Fatalf("NewImageClient: %v", err)
	}
	return c
}

func TestGenerateImageB64(t *testing.T) {
	var body map[string]any
	var path, auth string
	c := newTestImageClient(t, "dall-e-3", func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data": []any{map[string]any{
				"b64_json":       base64.StdEncoding.EncodeToString([]byte("png-bytes")),
				"revised_prompt": "a cuter kitten",
			}},
		})
	})

	img, err := c.GenerateImage(context.Background(), "a kitten")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if path != "/v1/images/generations" {
		t.Fatalf("path: got %q", path)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("auth header: got %q", auth)
	}
	if body["model"] != "dall-e-3" || body["prompt"] != "a kitten" || body["response_format"] != "b64_json" {
		t.Fatalf("unexpected request body: %#v", body)
	}
	if string(img.Bytes) != "png-bytes" || img.MimeType != "image/png" || img.RevisedPrompt != "a cuter kitten" {
		t.Fatalf("unexpected image: %+v", img)
	}
}

func TestGenerateImageURL(t *testing.T) {
	c := newTestImageClient(t, "dall-e-2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://img.example.com/a.png"}]}`))
	})
	img, err := c.GenerateImage(context.Background(), "a puppy")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if img.URL != "https://img.example.com/a.png" || len(img.Bytes) != 0 {
		t.Fatalf("unexpected image: %+v", img)
	}
}

func TestGenerateImageAPIError(t *testing.T) {
	calls := 0
	c := newTestImageClient(t, "dall-e-3", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	})
	_, err := c.GenerateImage(context.Background(), "a kitten")
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
	if httpx.FailureReason(err) != "rate_limited" {
		t.Fatalf("FailureReason: got %q", httpx.FailureReason(err))
	}
	if calls != 1 {
		t.Fatalf("expected no retries, got %d calls", calls)
	}
}
