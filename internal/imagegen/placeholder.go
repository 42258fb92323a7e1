package imagegen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

const (
	PlaceholderName        = "placeholder"
	DefaultPlaceholderBase = "https://picsum.photos"
)

// PlaceholderProvider never fails. It points at a seeded stock photo service.
type PlaceholderProvider struct {
	base string
	mu   sync.Mutex
	rng  *rand.Rand
}

func NewPlaceholderProvider(base string, rng *rand.Rand) *PlaceholderProvider {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultPlaceholderBase
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &PlaceholderProvider{base: base, rng: rng}
}

func (p *PlaceholderProvider) Name() string { return PlaceholderName }

// URL draws a seed in [0, 1000).
func (p *PlaceholderProvider) URL() string {
	p.mu.Lock()
	seed := p.rng.Intn(1000)
	p.mu.Unlock()
	return fmt.Sprintf("%s/seed/%d/400/300", p.base, seed)
}

func (p *PlaceholderProvider) Generate(_ context.Context, _ Request) (Image, error) {
	return Image{URL: p.URL()}, nil
}
