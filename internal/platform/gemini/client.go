package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/moodlog-backend/internal/platform/httpx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModels is the order the generative-language models are tried in
// when no chain file overrides it.
var DefaultModels = []string{
	"gemini-2.5-flash-image-preview",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

var ErrNoImage = errors.New("gemini: response contained no image")

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Image is the first image found in a generateContent response: either raw
// bytes (inline data or an embedded data URL) or a URL mentioned in text.
type Image struct {
	Bytes    []byte
	MimeType string
	URL      string
}

type Client interface {
	GenerateImage(ctx context.Context, model, prompt string) (Image, error)
}

type client struct {
	log        *logger.Logger
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &client{
		log:        log.With("client", "GeminiClient"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (c *client) GenerateImage(ctx context.Context, model, prompt string) (Image, error) {
	var out Image
	model = strings.TrimSpace(model)
	if model == "" {
		return out, errors.New("gemini: model required")
	}
	if strings.TrimSpace(prompt) == "" {
		return out, errors.New("gemini: prompt required")
	}
	req := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}
	path := "/v1beta/models/" + url.PathEscape(model) + ":generateContent"

	var resp generateResponse
	if err := c.do(ctx, path, req, &resp); err != nil {
		return out, err
	}
	img, ok := extractImage(resp)
	if !ok {
		return out, fmt.Errorf("%w (model=%s)", ErrNoImage, model)
	}
	return img, nil
}

func (c *client) do(ctx context.Context, path string, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpx.StatusError{Service: "gemini", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gemini decode error: %w", err)
	}
	return nil
}

var (
	imageURLPattern = regexp.MustCompile(`(?i)https?://[^\s"'<>)]+\.(jpg|jpeg|png|gif|webp)`)
	dataURLPattern  = regexp.MustCompile(`data:(image/[A-Za-z0-9.+-]+);base64,([A-Za-z0-9+/=]+)`)
)

// extractImage prefers inline image parts, then a data URL embedded in text,
// then a plain image URL in text.
func extractImage(resp generateResponse) (Image, bool) {
	var texts []string
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && strings.HasPrefix(strings.ToLower(p.InlineData.MimeType), "image/") {
				raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err == nil && len(raw) > 0 {
					return Image{Bytes: raw, MimeType: p.InlineData.MimeType}, true
				}
			}
			if t := strings.TrimSpace(p.Text); t != "" {
				texts = append(texts, t)
			}
		}
	}
	text := strings.Join(texts, "\n")
	if m := dataURLPattern.FindStringSubmatch(text); m != nil {
		raw, err := base64.StdEncoding.DecodeString(m[2])
		if err == nil && len(raw) > 0 {
			return Image{Bytes: raw, MimeType: m[1]}, true
		}
	}
	if u := imageURLPattern.FindString(text); u != "" {
		return Image{URL: u}, true
	}
	return Image{}, false
}
