package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/yungbote/moodlog-backend/internal/imagegen"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
	"github.com/yungbote/moodlog-backend/internal/services"
)

type Services struct {
	Chain       *imagegen.Chain
	Placeholder *imagegen.PlaceholderProvider

	Identity services.IdentityService
	Session  services.SessionService
	Images   services.ImageService
	Moods    services.MoodService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, r Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	chainFile, err := imagegen.LoadChainFile(cfg.ImageProvidersFile)
	if err != nil {
		return Services{}, fmt.Errorf("load image providers: %w", err)
	}
	entries, err := imagegen.BuildEntries(log, chainFile, clients.Images)
	if err != nil {
		return Services{}, fmt.Errorf("build image providers: %w", err)
	}

	var store imagegen.ImageStore = imagegen.InlineStore{MaxBytes: cfg.InlineImageMaxBytes}
	if clients.Bucket != nil {
		store = &imagegen.BucketStore{Bucket: clients.Bucket, Prefix: "mood-images", Now: time.Now}
	}

	seed := time.Now().UnixNano()
	placeholder := imagegen.NewPlaceholderProvider(cfg.PlaceholderBaseURL, rand.New(rand.NewSource(seed)))
	chain := imagegen.NewChain(log, entries, placeholder, chainFile.BreakerSettings(),
		imagegen.WithStore(store),
		imagegen.WithMetrics(metrics),
	)
	log.Info("Image provider chain ready", "providers", chain.Providers())

	images := services.NewImageService(log, imagegen.NewPromptBuilder(rand.New(rand.NewSource(seed+1))), chain)
	moods := services.NewMoodService(log, r.Directory, r.MoodEntry, images,
		services.WithEncourager(services.NewEncourager(rand.New(rand.NewSource(seed+2)))),
		services.WithMoodMetrics(metrics),
		services.WithDefaultImageURL(cfg.DefaultMoodImageURL),
	)

	return Services{
		Chain:       chain,
		Placeholder: placeholder,
		Identity:    services.NewIdentityService(log, r.Directory),
		Session:     services.NewSessionService(log, r.Directory, cfg.SessionSecret, cfg.SessionTTL),
		Images:      images,
		Moods:       moods,
	}, nil
}
