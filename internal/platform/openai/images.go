package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yungbote/moodlog-backend/internal/platform/httpx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
}

// ImageGeneration holds either decoded bytes or the URL the API returned.
type ImageGeneration struct {
	Bytes         []byte
	MimeType      string
	URL           string
	RevisedPrompt string
}

type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error)
	Model() string
}

type imageClient struct {
	log   *logger.Logger
	sdk   openai.Client
	model string
	size  string
}

func NewImageClient(log *logger.Logger, cfg Config) (ImageClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	size := strings.TrimSpace(cfg.Size)
	if size == "" {
		size = "1024x1024"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		// The provider chain moves on instead of retrying.
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &imageClient{
		log:   log.With("client", "OpenAIImageClient"),
		sdk:   openai.NewClient(opts...),
		model: model,
		size:  size,
	}, nil
}

func (c *imageClient) Model() string { return c.model }

func (c *imageClient) GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error) {
	var out ImageGeneration
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, errors.New("image prompt required")
	}
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(c.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(c.size),
	}
	// gpt-image models always return base64 and reject response_format.
	if !strings.HasPrefix(strings.ToLower(c.model), "gpt-image-") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := c.sdk.Images.Generate(ctx, params)
	if err != nil {
		return out, asStatusError(err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return out, errors.New("openai: no image returned")
	}
	item := resp.Data[0]
	out.RevisedPrompt = strings.TrimSpace(item.RevisedPrompt)
	if b64 := strings.TrimSpace(item.B64JSON); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil || len(raw) == 0 {
			return out, fmt.Errorf("decode image base64: %w", err)
		}
		out.Bytes = raw
		out.MimeType = "image/png"
		return out, nil
	}
	if u := strings.TrimSpace(item.URL); u != "" {
		out.URL = u
		return out, nil
	}
	return out, errors.New("openai: image response missing b64_json and url")
}

// asStatusError maps SDK API errors onto httpx.StatusError so failure
// classification works the same for every provider.
func asStatusError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if body == "" && apiErr.Response != nil && apiErr.Response.Body != nil {
			if b, rErr := io.ReadAll(io.LimitReader(apiErr.Response.Body, 4096)); rErr == nil {
				body = string(b)
			}
		}
		return &httpx.StatusError{Service: "openai", StatusCode: apiErr.StatusCode, Body: body}
	}
	return err
}
