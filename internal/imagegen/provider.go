package imagegen

import (
	"context"
	"errors"

	types "github.com/yungbote/moodlog-backend/internal/domain"
)

// ErrEmptyImage is returned when a provider answers without a usable image.
var ErrEmptyImage = errors.New("provider returned no image")

type Request struct {
	Prompt  string
	Note    string
	Mood    types.MoodLabel
	Species Species
}

// Image is a provider payload: a URL the provider hosts, or raw bytes that
// still need a home.
type Image struct {
	URL           string
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
}

func (img Image) Empty() bool {
	return img.URL == "" && len(img.Bytes) == 0
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (Image, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context, req Request) (Image, error)
}

func (p ProviderFunc) Name() string { return p.ProviderName }

func (p ProviderFunc) Generate(ctx context.Context, req Request) (Image, error) {
	return p.Fn(ctx, req)
}
