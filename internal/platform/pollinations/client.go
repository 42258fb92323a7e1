package pollinations

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/moodlog-backend/internal/platform/httpx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://image.pollinations.ai"

type Config struct {
	BaseURL string
	Width   int
	Height  int
	Timeout time.Duration
}

// Client renders a prompt into an image URL. The service generates on GET,
// so ImageURL fetches the URL once and only returns it when an image came back.
type Client interface {
	ImageURL(ctx context.Context, prompt string) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	width      int
	height     int
	httpClient *http.Client
}

func NewClient(log *logger.Logger, cfg Config) Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.Width <= 0 {
		cfg.Width = 400
	}
	if cfg.Height <= 0 {
		cfg.Height = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &client{
		log:        log.With("client", "PollinationsClient"),
		baseURL:    base,
		width:      cfg.Width,
		height:     cfg.Height,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// BuildURL is stable for a given prompt: the seed is derived from the prompt
// so re-fetching the stored URL renders the same picture.
func (c *client) BuildURL(prompt string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	q := url.Values{}
	q.Set("width", strconv.Itoa(c.width))
	q.Set("height", strconv.Itoa(c.height))
	q.Set("seed", strconv.FormatUint(uint64(h.Sum32()%100000), 10))
	q.Set("nologo", "true")
	return c.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}

func (c *client) ImageURL(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("pollinations: prompt required")
	}
	u := c.BuildURL(prompt)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &httpx.StatusError{Service: "pollinations", StatusCode: resp.StatusCode, Body: string(body)}
	}
	ct := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("pollinations: unexpected content type %q", ct)
	}
	// Drain so the connection can be reused; the bytes stay on their CDN.
	_, _ = io.Copy(io.Discard, resp.Body)
	return u, nil
}
