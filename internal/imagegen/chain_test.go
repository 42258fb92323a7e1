package imagegen

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/httpx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

var placeholderURL = regexp.MustCompile(`^https://picsum\.photos/seed/(\d{1,3})/400/300$`)

type fakeProvider struct {
	name     string
	img      Image
	err      error
	calls    atomic.Int32
	inflight *atomic.Int32
	maxSeen  *atomic.Int32
	block    bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, req Request) (Image, error) {
	p.calls.Add(1)
	if p.inflight != nil {
		n := p.inflight.Add(1)
		defer p.inflight.Add(-1)
		for {
			cur := p.maxSeen.Load()
			if n <= cur || p.maxSeen.CompareAndSwap(cur, n) {
				break
			}
		}
	}
	if p.block {
		<-ctx.Done()
		return Image{}, ctx.Err()
	}
	return p.img, p.err
}

func failing(name string) *fakeProvider {
	return &fakeProvider{name: name, err: &httpx.StatusError{Service: name, StatusCode: 503}}
}

func newTestChain(providers ...Provider) *Chain {
	entries := make([]Entry, 0, len(providers))
	for _, p := range providers {
		entries = append(entries, Entry{Provider: p})
	}
	return NewChain(logger.Nop(), entries, NewPlaceholderProvider("", rand.New(rand.NewSource(7))), BreakerSettings{})
}

func TestChainAllFailingFallsBackToPlaceholder(t *testing.T) {
	for n := 0; n <= 4; n++ {
		var inflight, maxSeen atomic.Int32
		var ps []*fakeProvider
		var providers []Provider
		for i := 0; i < n; i++ {
			p := failing("p" + string(rune('a'+i)))
			p.inflight, p.maxSeen = &inflight, &maxSeen
			ps = append(ps, p)
			providers = append(providers, p)
		}
		res := newTestChain(providers...).Generate(context.Background(), Request{Prompt: "a kitten"})

		if res.ProviderName != PlaceholderName || !res.UsedPlaceholder {
			t.Fatalf("n=%d: expected placeholder, got %+v", n, res)
		}
		if !placeholderURL.MatchString(res.ImageRef) {
			t.Fatalf("n=%d: unexpected placeholder url %q", n, res.ImageRef)
		}
		if len(res.Attempts) != n {
			t.Fatalf("n=%d: expected %d attempts, got %d", n, n, len(res.Attempts))
		}
		for i, p := range ps {
			if p.calls.Load() != 1 {
				t.Fatalf("n=%d: provider %d called %d times", n, i, p.calls.Load())
			}
			if res.Attempts[i].Provider != p.name || res.Attempts[i].Outcome != "http_5xx" {
				t.Fatalf("n=%d: attempt %d = %+v", n, i, res.Attempts[i])
			}
		}
		if maxSeen.Load() > 1 {
			t.Fatalf("n=%d: providers overlapped (%d in flight)", n, maxSeen.Load())
		}
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	a := failing("a")
	b := &fakeProvider{name: "b", img: Image{URL: "https://img.example.com/b.png", RevisedPrompt: "rev"}}
	c := &fakeProvider{name: "c", img: Image{URL: "https://img.example.com/c.png"}}

	res := newTestChain(a, b, c).Generate(context.Background(), Request{Prompt: "a puppy"})
	if res.ProviderName != "b" || res.ImageRef != "https://img.example.com/b.png" || res.UsedPlaceholder {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Prompt != "a puppy" || res.RevisedPrompt != "rev" {
		t.Fatalf("prompt diagnostics: %+v", res)
	}
	if c.calls.Load() != 0 {
		t.Fatalf("provider after success must not be called")
	}
	if len(res.Attempts) != 2 || res.Attempts[1].Outcome != OutcomeOK {
		t.Fatalf("attempts: %+v", res.Attempts)
	}
}

func TestChainBytesGoThroughStore(t *testing.T) {
	p := &fakeProvider{name: "bytes", img: Image{Bytes: []byte("\x89PNG\r\n\x1a\nrest"), MimeType: "image/png"}}
	res := newTestChain(p).Generate(context.Background(), Request{Prompt: "x"})
	if !strings.HasPrefix(res.ImageRef, "data:image/png;base64,") {
		t.Fatalf("expected inline data url, got %q", res.ImageRef)
	}
}

func TestChainEmptyImageIsFailure(t *testing.T) {
	empty := &fakeProvider{name: "empty"}
	res := newTestChain(empty).Generate(context.Background(), Request{Prompt: "x"})
	if !res.UsedPlaceholder || res.Attempts[0].Outcome != OutcomeEmpty {
		t.Fatalf("unexpected result %+v", res)
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, Image) (string, error) {
	return "", errors.New("bucket unavailable")
}

func TestChainStoreFailureMovesOn(t *testing.T) {
	a := &fakeProvider{name: "a", img: Image{Bytes: []byte("png")}}
	b := &fakeProvider{name: "b", img: Image{URL: "https://img.example.com/b.png"}}
	c := NewChain(logger.Nop(), []Entry{{Provider: a}, {Provider: b}}, nil, BreakerSettings{}, WithStore(failingStore{}))

	res := c.Generate(context.Background(), Request{Prompt: "x"})
	if res.Attempts[0].Outcome != OutcomeStoreError {
		t.Fatalf("expected store_error, got %+v", res.Attempts[0])
	}
	if !res.UsedPlaceholder {
		t.Fatalf("expected placeholder after both store failures, got %+v", res)
	}
}

func TestChainCanceledContextSkipsProviders(t *testing.T) {
	a := &fakeProvider{name: "a", img: Image{URL: "https://img.example.com/a.png"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestChain(a).Generate(ctx, Request{Prompt: "x"})
	if !res.UsedPlaceholder || a.calls.Load() != 0 || len(res.Attempts) != 0 {
		t.Fatalf("expected immediate placeholder, got %+v calls=%d", res, a.calls.Load())
	}
}

func TestChainEntryTimeout(t *testing.T) {
	slow := &fakeProvider{name: "slow", block: true}
	fast := &fakeProvider{name: "fast", img: Image{URL: "https://img.example.com/f.png"}}
	c := NewChain(logger.Nop(), []Entry{{Provider: slow, Timeout: 20 * time.Millisecond}, {Provider: fast}}, nil, BreakerSettings{})

	res := c.Generate(context.Background(), Request{Prompt: "x"})
	if res.ProviderName != "fast" {
		t.Fatalf("expected fast provider after timeout, got %+v", res)
	}
	if res.Attempts[0].Outcome != "timeout" {
		t.Fatalf("expected timeout outcome, got %+v", res.Attempts[0])
	}
}

func TestChainBreakerOpens(t *testing.T) {
	a := failing("a")
	c := NewChain(logger.Nop(), []Entry{{Provider: a}}, nil, BreakerSettings{ConsecutiveFailures: 2, OpenFor: time.Hour})

	for i := 0; i < 2; i++ {
		c.Generate(context.Background(), Request{Prompt: "x"})
	}
	res := c.Generate(context.Background(), Request{Prompt: "x"})
	if a.calls.Load() != 2 {
		t.Fatalf("open breaker must short-circuit; calls=%d", a.calls.Load())
	}
	if len(res.Attempts) != 1 || res.Attempts[0].Outcome != OutcomeBreakerOpen {
		t.Fatalf("expected breaker_open attempt, got %+v", res.Attempts)
	}
	if !res.UsedPlaceholder {
		t.Fatalf("expected placeholder")
	}
}

func TestChainRecordsMetrics(t *testing.T) {
	m := observability.New(prometheus.NewRegistry())
	c := NewChain(logger.Nop(), []Entry{{Provider: failing("a")}}, nil, BreakerSettings{}, WithMetrics(m))
	res := c.Generate(context.Background(), Request{Prompt: "x"})
	if !res.UsedPlaceholder {
		t.Fatalf("expected placeholder")
	}
	if got := c.Providers(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("Providers: %v", got)
	}
}

func TestPlaceholderSeeded(t *testing.T) {
	a := NewPlaceholderProvider("https://picsum.photos/", rand.New(rand.NewSource(3)))
	b := NewPlaceholderProvider("https://picsum.photos", rand.New(rand.NewSource(3)))
	for i := 0; i < 20; i++ {
		ua, ub := a.URL(), b.URL()
		if ua != ub {
			t.Fatalf("same seed diverged: %q vs %q", ua, ub)
		}
		if !placeholderURL.MatchString(ua) {
			t.Fatalf("unexpected url %q", ua)
		}
	}
	img, err := a.Generate(context.Background(), Request{})
	if err != nil || img.URL == "" {
		t.Fatalf("placeholder must never fail: img=%+v err=%v", img, err)
	}
}
