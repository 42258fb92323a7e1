package imagegen

import (
	"context"

	"github.com/yungbote/moodlog-backend/internal/platform/gemini"
	"github.com/yungbote/moodlog-backend/internal/platform/openai"
	"github.com/yungbote/moodlog-backend/internal/platform/pollinations"
)

type geminiProvider struct {
	name   string
	model  string
	client gemini.Client
}

// NewGeminiProvider serves a single model; configure one entry per model to
// try several.
func NewGeminiProvider(name, model string, client gemini.Client) Provider {
	if name == "" {
		name = "gemini:" + model
	}
	return &geminiProvider{name: name, model: model, client: client}
}

func (p *geminiProvider) Name() string { return p.name }

func (p *geminiProvider) Generate(ctx context.Context, req Request) (Image, error) {
	img, err := p.client.GenerateImage(ctx, p.model, req.Prompt)
	if err != nil {
		return Image{}, err
	}
	return Image{URL: img.URL, Bytes: img.Bytes, MimeType: img.MimeType}, nil
}

type dalleProvider struct {
	name   string
	client openai.ImageClient
}

func NewDalleProvider(name string, client openai.ImageClient) Provider {
	if name == "" {
		name = "dalle:" + client.Model()
	}
	return &dalleProvider{name: name, client: client}
}

func (p *dalleProvider) Name() string { return p.name }

func (p *dalleProvider) Generate(ctx context.Context, req Request) (Image, error) {
	gen, err := p.client.GenerateImage(ctx, req.Prompt)
	if err != nil {
		return Image{}, err
	}
	return Image{URL: gen.URL, Bytes: gen.Bytes, MimeType: gen.MimeType, RevisedPrompt: gen.RevisedPrompt}, nil
}

type pollinationsProvider struct {
	name   string
	client pollinations.Client
}

func NewPollinationsProvider(name string, client pollinations.Client) Provider {
	if name == "" {
		name = "pollinations"
	}
	return &pollinationsProvider{name: name, client: client}
}

func (p *pollinationsProvider) Name() string { return p.name }

func (p *pollinationsProvider) Generate(ctx context.Context, req Request) (Image, error) {
	u, err := p.client.ImageURL(ctx, req.Prompt)
	if err != nil {
		return Image{}, err
	}
	return Image{URL: u}, nil
}
