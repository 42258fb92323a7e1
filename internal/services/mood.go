package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/moodlog-backend/internal/data/db"
	"github.com/yungbote/moodlog-backend/internal/data/repos"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

// DefaultMoodImageURL stands in for the illustration when image generation
// itself could not run.
const DefaultMoodImageURL = "https://images.unsplash.com/photo-1518791841217-8f162f1e1131?w=400&h=300&fit=crop"

// Submission outcomes, as counted in metrics.
const (
	SubmitOK           = "ok"
	SubmitInvalid      = "invalid_input"
	SubmitUnknownUser  = "unknown_identity"
	SubmitPersistError = "persistence_error"
)

type SubmitInput struct {
	Username string `json:"username" validate:"required"`
	Mood     string `json:"mood_type" validate:"required,oneof=happy neutral sad"`
	Note     string `json:"note" validate:"max=2000"`
}

// SubmissionResult reports a saved entry and what happened on the way.
type SubmissionResult struct {
	Entry         *types.MoodEntry `json:"entry"`
	User          *types.User      `json:"user"`
	Profile       string           `json:"profile"`
	Image         *GeneratedImage  `json:"image,omitempty"`
	ImageFallback bool             `json:"image_fallback"`
	Encouragement Encouragement    `json:"encouragement"`
}

type MoodService interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmissionResult, error)
	ListRecent(ctx context.Context, username string, w Window) (*History, error)
	Timeline(ctx context.Context, username string, from, to time.Time) (*Timeline, error)
}

type MoodOption func(*moodService)

func WithClock(now func() time.Time) MoodOption {
	return func(s *moodService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithEncourager(e *Encourager) MoodOption {
	return func(s *moodService) {
		if e != nil {
			s.encourager = e
		}
	}
}

func WithMoodMetrics(m *observability.Metrics) MoodOption {
	return func(s *moodService) { s.metrics = m }
}

// WithDefaultImageURL overrides DefaultMoodImageURL; empty leaves the entry
// without an image when generation cannot run.
func WithDefaultImageURL(url string) MoodOption {
	return func(s *moodService) { s.defaultImageURL = strings.TrimSpace(url) }
}

// WithInsertProfiles overrides the column profile degradation order.
func WithInsertProfiles(profiles []repos.ColumnProfile) MoodOption {
	return func(s *moodService) {
		if len(profiles) > 0 {
			s.profiles = profiles
		}
	}
}

type moodService struct {
	log             *logger.Logger
	dir             repos.IdentityDirectory
	moods           repos.MoodEntryRepo
	images          ImageService
	encourager      *Encourager
	metrics         *observability.Metrics
	profiles        []repos.ColumnProfile
	defaultImageURL string
	now             func() time.Time
}

func NewMoodService(
	log *logger.Logger,
	dir repos.IdentityDirectory,
	moods repos.MoodEntryRepo,
	images ImageService,
	opts ...MoodOption,
) MoodService {
	s := &moodService{
		log:             log.With("service", "MoodService"),
		dir:             dir,
		moods:           moods,
		images:          images,
		encourager:      NewEncourager(rand.New(rand.NewSource(time.Now().UnixNano()))),
		profiles:        repos.InsertProfiles,
		defaultImageURL: DefaultMoodImageURL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *moodService) Submit(ctx context.Context, in SubmitInput) (*SubmissionResult, error) {
	// Validating
	in.Username = strings.TrimSpace(in.Username)
	in.Mood = strings.ToLower(strings.TrimSpace(in.Mood))
	if err := validateInput(in); err != nil {
		s.metrics.IncSubmission(SubmitInvalid)
		return nil, err
	}
	mood := types.MoodLabel(in.Mood)
	note := strings.TrimSpace(in.Note)

	// ResolvingIdentity
	u, err := resolveIdentity(ctx, s.dir, s.log, in.Username)
	if err != nil {
		s.metrics.IncSubmission(submitOutcome(err))
		return nil, err
	}

	now := s.now().UTC()
	row := &types.MoodEntry{
		UserID:        u.ID,
		MoodType:      mood,
		EntryDate:     datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)),
		MoodTimestamp: &now,
		CreatedAt:     now,
	}
	res := &SubmissionResult{User: u}

	// GeneratingImage
	if note != "" {
		row.Note = &note
		img, fellBack := s.generateImage(ctx, note, mood)
		res.Image = img
		res.ImageFallback = fellBack
		if img != nil {
			row.ImageURL = &img.URL
			if img.Provider != "" {
				row.ImageModel = &img.Provider
			}
			if img.Prompt != "" {
				row.ImagePrompt = &img.Prompt
			}
		}
	}

	// Persisting
	profile, err := s.persist(ctx, row)
	if err != nil {
		s.metrics.IncSubmission(SubmitPersistError)
		return nil, err
	}
	s.metrics.IncSubmission(SubmitOK)
	s.log.Info("mood saved",
		"user_id", u.ID,
		"mood", string(mood),
		"profile", profile.Name,
		"with_image", row.ImageURL != nil,
	)

	res.Entry = keepProfileColumns(row, profile)
	res.Profile = profile.Name
	res.Encouragement = s.encourager.Pick(mood, note != "")
	return res, nil
}

// generateImage never fails the submission. The second result reports that
// the default image stood in for a generator error.
func (s *moodService) generateImage(ctx context.Context, note string, mood types.MoodLabel) (*GeneratedImage, bool) {
	var (
		img *GeneratedImage
		err error
	)
	if s.images != nil {
		img, err = s.images.GenerateForNote(ctx, note, mood)
	} else {
		err = errNoChain
	}
	if err == nil && img != nil && img.URL != "" {
		return img, false
	}
	if err == nil {
		err = errors.New("no image returned")
	}
	s.log.Warn("image generation absorbed", "error", err)
	if s.defaultImageURL == "" {
		return nil, true
	}
	return &GeneratedImage{URL: s.defaultImageURL}, true
}

// persist tries each column profile in order. Only an unknown column moves on
// to the next profile; any other failure is final.
func (s *moodService) persist(ctx context.Context, row *types.MoodEntry) (repos.ColumnProfile, error) {
	var lastErr error
	for _, profile := range s.profiles {
		err := s.moods.Insert(dbctx.Context{Ctx: ctx}, profile, row)
		if err == nil {
			s.metrics.IncPersistenceWrite(profile.Name, "ok")
			return profile, nil
		}
		if !errors.Is(err, db.ErrUnknownColumn) {
			s.metrics.IncPersistenceWrite(profile.Name, "error")
			s.log.Error("mood insert failed", "profile", profile.Name, "error", err)
			return repos.ColumnProfile{}, apierr.Persistence(err)
		}
		s.metrics.IncPersistenceWrite(profile.Name, "unknown_column")
		s.log.Warn("mood insert degraded", "profile", profile.Name, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no column profiles configured")
	}
	return repos.ColumnProfile{}, apierr.Persistence(lastErr)
}

// keepProfileColumns clears optional fields the profile did not write, so the
// returned entry matches the stored row.
func keepProfileColumns(row *types.MoodEntry, profile repos.ColumnProfile) *types.MoodEntry {
	has := make(map[string]bool, len(profile.Columns))
	for _, c := range profile.Columns {
		has[c] = true
	}
	if !has["mood_timestamp"] {
		row.MoodTimestamp = nil
	}
	if !has["mood_image_url"] {
		row.ImageURL = nil
	}
	if !has["mood_image_model"] {
		row.ImageModel = nil
	}
	if !has["mood_image_prompt"] {
		row.ImagePrompt = nil
	}
	return row
}

func submitOutcome(err error) string {
	switch apierr.CodeOf(err) {
	case apierr.CodeInvalidInput:
		return SubmitInvalid
	case apierr.CodeUnknownIdentity:
		return SubmitUnknownUser
	default:
		return SubmitPersistError
	}
}
