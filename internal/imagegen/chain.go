package imagegen

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/httpx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

// Attempt outcomes besides httpx.FailureReason values.
const (
	OutcomeOK          = "ok"
	OutcomeBreakerOpen = "breaker_open"
	OutcomeEmpty       = "empty"
	OutcomeStoreError  = "store_error"
)

type Attempt struct {
	Provider string        `json:"provider"`
	Outcome  string        `json:"outcome"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

type Result struct {
	ProviderName    string
	ImageRef        string
	Prompt          string
	RevisedPrompt   string
	Attempts        []Attempt
	UsedPlaceholder bool
}

// Entry is one configured link of the chain.
type Entry struct {
	Provider Provider
	// Timeout bounds a single call; zero leaves it to the provider's client.
	Timeout time.Duration
}

type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenFor             time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 3
	}
	if s.OpenFor <= 0 {
		s.OpenFor = 2 * time.Minute
	}
	return s
}

type link struct {
	entry   Entry
	breaker *gobreaker.CircuitBreaker[Image]
}

// Chain tries providers strictly in order, one call at a time, each at most
// once per Generate. It never fails: when every provider fails, or the
// caller's context ends, the placeholder answers.
type Chain struct {
	log         *logger.Logger
	links       []link
	store       ImageStore
	placeholder *PlaceholderProvider
	metrics     *observability.Metrics
}

type ChainOption func(*Chain)

func WithStore(s ImageStore) ChainOption {
	return func(c *Chain) {
		if s != nil {
			c.store = s
		}
	}
}

func WithMetrics(m *observability.Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

func NewChain(log *logger.Logger, entries []Entry, placeholder *PlaceholderProvider, breaker BreakerSettings, opts ...ChainOption) *Chain {
	if placeholder == nil {
		placeholder = NewPlaceholderProvider("", nil)
	}
	chainLog := log.With("service", "ImageProviderChain")
	breaker = breaker.withDefaults()
	c := &Chain{
		log:         chainLog,
		store:       InlineStore{},
		placeholder: placeholder,
	}
	for _, e := range entries {
		if e.Provider == nil {
			continue
		}
		name := e.Provider.Name()
		cb := gobreaker.NewCircuitBreaker[Image](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     breaker.OpenFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breaker.ConsecutiveFailures
			},
			// A caller hanging up says nothing about the provider's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				chainLog.Warn("image provider breaker state change", "provider", name, "from", from.String(), "to", to.String())
			},
		})
		c.links = append(c.links, link{entry: e, breaker: cb})
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Providers lists configured provider names in order, excluding the placeholder.
func (c *Chain) Providers() []string {
	out := make([]string, 0, len(c.links))
	for _, l := range c.links {
		out = append(out, l.entry.Provider.Name())
	}
	return out
}

func (c *Chain) Generate(ctx context.Context, req Request) Result {
	res := Result{Prompt: req.Prompt}
	for i, l := range c.links {
		if ctx.Err() != nil {
			c.log.Warn("image chain abandoned, caller context done", "error", ctx.Err(), "tried", len(res.Attempts))
			break
		}
		ref, revised, attempt := c.try(ctx, i+1, l, req)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Outcome == OutcomeOK {
			res.ProviderName = attempt.Provider
			res.ImageRef = ref
			res.RevisedPrompt = revised
			return res
		}
	}

	res.ProviderName = c.placeholder.Name()
	res.ImageRef = c.placeholder.URL()
	res.UsedPlaceholder = true
	c.metrics.IncPlaceholder()
	c.metrics.ObserveProviderAttempt(PlaceholderName, OutcomeOK, 0)
	c.log.Warn("image chain fell back to placeholder", "attempts", len(res.Attempts))
	return res
}

func (c *Chain) try(ctx context.Context, n int, l link, req Request) (string, string, Attempt) {
	name := l.entry.Provider.Name()
	callCtx, span := observability.Tracer().Start(ctx, "imagegen.provider")
	span.SetAttributes(attribute.String("imagegen.provider", name))
	defer span.End()

	if l.entry.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, l.entry.Timeout)
		defer cancel()
	}

	start := time.Now()
	img, err := l.breaker.Execute(func() (Image, error) {
		img, err := l.entry.Provider.Generate(callCtx, req)
		if err == nil && img.Empty() {
			err = ErrEmptyImage
		}
		return img, err
	})
	var ref string
	if err == nil {
		ref, err = c.store.Save(callCtx, name, img)
		if err != nil {
			err = &storeError{err: err}
		}
	}
	dur := time.Since(start)

	attempt := Attempt{Provider: name, Outcome: outcomeOf(err), Duration: dur}
	c.metrics.ObserveProviderAttempt(name, attempt.Outcome, dur)
	span.SetAttributes(attribute.String("imagegen.outcome", attempt.Outcome))
	if err != nil {
		attempt.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, attempt.Outcome)
		c.log.Warn("image provider failed",
			"provider", name,
			"attempt", n,
			"reason", attempt.Outcome,
			"duration_ms", dur.Milliseconds(),
			"error", err,
		)
		return "", "", attempt
	}
	c.log.Debug("image provider succeeded", "provider", name, "duration_ms", dur.Milliseconds())
	return ref, img.RevisedPrompt, attempt
}

func outcomeOf(err error) string {
	var se *storeError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &se):
		return OutcomeStoreError
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return OutcomeBreakerOpen
	case errors.Is(err, ErrEmptyImage):
		return OutcomeEmpty
	}
	return httpx.FailureReason(err)
}

type storeError struct{ err error }

func (e *storeError) Error() string { return "store image: " + e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }
