package services

import (
	"context"
	"errors"
	"strings"

	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/imagegen"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

// ImageChain is the part of *imagegen.Chain the services use.
type ImageChain interface {
	Generate(ctx context.Context, req imagegen.Request) imagegen.Result
}

// GeneratedImage is a chain result as reported to callers.
type GeneratedImage struct {
	URL           string             `json:"image_url"`
	Provider      string             `json:"provider"`
	Prompt        string             `json:"prompt"`
	RevisedPrompt string             `json:"revised_prompt,omitempty"`
	Placeholder   bool               `json:"placeholder"`
	Attempts      []imagegen.Attempt `json:"attempts,omitempty"`
}

type ImageService interface {
	// GenerateForNote builds a prompt for note and runs the provider chain.
	// It fails only on invalid input or a missing chain; provider trouble
	// ends in the placeholder.
	GenerateForNote(ctx context.Context, note string, mood types.MoodLabel) (*GeneratedImage, error)
}

var errNoChain = errors.New("image chain not configured")

type imageService struct {
	log     *logger.Logger
	prompts *imagegen.PromptBuilder
	chain   ImageChain
}

func NewImageService(log *logger.Logger, prompts *imagegen.PromptBuilder, chain ImageChain) ImageService {
	if prompts == nil {
		prompts = imagegen.NewPromptBuilder(nil)
	}
	return &imageService{
		log:     log.With("service", "ImageService"),
		prompts: prompts,
		chain:   chain,
	}
}

func (s *imageService) GenerateForNote(ctx context.Context, note string, mood types.MoodLabel) (*GeneratedImage, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apierr.InvalidInput(errors.New("note is required"))
	}
	if !mood.Valid() {
		return nil, apierr.InvalidInput(errors.New("moodType must be one of: happy, neutral, sad"))
	}
	if s.chain == nil {
		return nil, errNoChain
	}
	p := s.prompts.Compose(note, mood)
	res := s.chain.Generate(ctx, imagegen.Request{
		Prompt:  p.Text,
		Note:    note,
		Mood:    mood,
		Species: p.Species,
	})
	if res.ImageRef == "" {
		return nil, errors.New("image chain returned no reference")
	}
	s.log.Debug("mood image generated",
		"provider", res.ProviderName,
		"category", string(p.Category),
		"species", string(p.Species),
		"attempts", len(res.Attempts),
	)
	prompt := res.Prompt
	if prompt == "" {
		prompt = p.Text
	}
	return &GeneratedImage{
		URL:           res.ImageRef,
		Provider:      res.ProviderName,
		Prompt:        prompt,
		RevisedPrompt: res.RevisedPrompt,
		Placeholder:   res.UsedPlaceholder,
		Attempts:      res.Attempts,
	}, nil
}
