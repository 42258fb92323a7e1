package imagegen

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/moodlog-backend/internal/platform/gemini"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
	"github.com/yungbote/moodlog-backend/internal/platform/openai"
	"github.com/yungbote/moodlog-backend/internal/platform/pollinations"
)

const (
	KindGemini       = "gemini"
	KindDalle        = "dalle"
	KindPollinations = "pollinations"
	KindSketch       = "sketch"
)

// ProviderSpec is one entry of the chain file.
type ProviderSpec struct {
	Kind     string `yaml:"kind" json:"kind" jsonschema:"enum=gemini,enum=dalle,enum=pollinations,enum=sketch"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Label recorded as the image model; unique per chain; defaults to kind:model"`
	Model    string `yaml:"model,omitempty" json:"model,omitempty"`
	Size     string `yaml:"size,omitempty" json:"size,omitempty" jsonschema:"description=dalle only, e.g. 1024x1024"`
	Timeout  string `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Go duration bounding one call, e.g. 30s"`
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

type BreakerSpec struct {
	ConsecutiveFailures uint32 `yaml:"consecutive_failures,omitempty" json:"consecutive_failures,omitempty"`
	OpenFor             string `yaml:"open_for,omitempty" json:"open_for,omitempty" jsonschema:"description=Go duration the breaker stays open"`
}

// ChainFile is the static, ordered provider configuration. The placeholder is
// always appended and cannot be listed.
type ChainFile struct {
	Providers []ProviderSpec `yaml:"providers" json:"providers"`
	Breaker   BreakerSpec    `yaml:"breaker,omitempty" json:"breaker,omitempty"`
}

func DefaultChainFile() ChainFile {
	var f ChainFile
	for _, m := range gemini.DefaultModels {
		f.Providers = append(f.Providers, ProviderSpec{Kind: KindGemini, Model: m, Timeout: "30s"})
	}
	f.Providers = append(f.Providers,
		ProviderSpec{Kind: KindDalle, Model: "dall-e-3", Size: "1024x1024", Timeout: "60s"},
		ProviderSpec{Kind: KindPollinations, Timeout: "45s"},
	)
	return f
}

// LoadChainFile reads path, or returns the default chain when path is empty.
func LoadChainFile(path string) (ChainFile, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultChainFile(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ChainFile{}, fmt.Errorf("read image providers file: %w", err)
	}
	return ParseChainFile(raw)
}

func ParseChainFile(raw []byte) (ChainFile, error) {
	var f ChainFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return ChainFile{}, fmt.Errorf("parse image providers file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return ChainFile{}, err
	}
	return f, nil
}

const defaultDalleModel = "dall-e-3"

// ResolvedName is the label the entry runs under: its metric label, breaker
// name and recorded image model. The sketch renderer always runs as "sketch".
func (p ProviderSpec) ResolvedName() string {
	kind := strings.ToLower(strings.TrimSpace(p.Kind))
	if kind == KindSketch {
		return SketchName
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	model := strings.TrimSpace(p.Model)
	switch kind {
	case KindGemini:
		return "gemini:" + model
	case KindDalle:
		if model == "" {
			model = defaultDalleModel
		}
		return "dalle:" + model
	default:
		return kind
	}
}

// Validate also rejects two enabled entries resolving to the same name.
func (f ChainFile) Validate() error {
	seen := make(map[string]int, len(f.Providers))
	for i, p := range f.Providers {
		switch strings.ToLower(strings.TrimSpace(p.Kind)) {
		case KindGemini:
			if strings.TrimSpace(p.Model) == "" {
				return fmt.Errorf("providers[%d]: gemini requires model", i)
			}
		case KindDalle, KindPollinations, KindSketch:
		case PlaceholderName:
			return fmt.Errorf("providers[%d]: placeholder is always last and cannot be configured", i)
		default:
			return fmt.Errorf("providers[%d]: unknown kind %q", i, p.Kind)
		}
		if _, err := parseOptionalDuration(p.Timeout); err != nil {
			return fmt.Errorf("providers[%d]: timeout: %w", i, err)
		}
		if p.Disabled {
			continue
		}
		name := p.ResolvedName()
		if name == PlaceholderName {
			return fmt.Errorf("providers[%d]: name %q is reserved", i, name)
		}
		if j, dup := seen[name]; dup {
			return fmt.Errorf("providers[%d]: name %q already used by providers[%d]; set a distinct name", i, name, j)
		}
		seen[name] = i
	}
	if _, err := parseOptionalDuration(f.Breaker.OpenFor); err != nil {
		return fmt.Errorf("breaker.open_for: %w", err)
	}
	return nil
}

func (f ChainFile) BreakerSettings() BreakerSettings {
	d, _ := parseOptionalDuration(f.Breaker.OpenFor)
	return BreakerSettings{ConsecutiveFailures: f.Breaker.ConsecutiveFailures, OpenFor: d}
}

func parseOptionalDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Backends are the clients entries are bound to. A nil backend skips every
// entry of its kind.
type Backends struct {
	Gemini       gemini.Client
	OpenAI       func(model, size string) (openai.ImageClient, error)
	Pollinations pollinations.Client
}

// BuildEntries turns the file into chain entries, in file order.
func BuildEntries(log *logger.Logger, f ChainFile, b Backends) ([]Entry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []Entry
	for i, spec := range f.Providers {
		if spec.Disabled {
			continue
		}
		timeout, err := parseOptionalDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("providers[%d]: timeout: %w", i, err)
		}
		var p Provider
		switch strings.ToLower(strings.TrimSpace(spec.Kind)) {
		case KindGemini:
			if b.Gemini != nil {
				p = NewGeminiProvider(spec.ResolvedName(), spec.Model, b.Gemini)
			}
		case KindDalle:
			if b.OpenAI != nil {
				c, err := b.OpenAI(spec.Model, spec.Size)
				if err != nil {
					return nil, fmt.Errorf("providers[%d]: %w", i, err)
				}
				p = NewDalleProvider(spec.ResolvedName(), c)
			}
		case KindPollinations:
			if b.Pollinations != nil {
				p = NewPollinationsProvider(spec.ResolvedName(), b.Pollinations)
			}
		case KindSketch:
			s, err := NewSketchProvider()
			if err != nil {
				return nil, fmt.Errorf("providers[%d]: %w", i, err)
			}
			p = s
		default:
			return nil, fmt.Errorf("providers[%d]: unknown kind %q", i, spec.Kind)
		}
		if p == nil {
			log.Warn("image provider skipped, backend not configured", "index", i, "kind", spec.Kind, "model", spec.Model)
			continue
		}
		out = append(out, Entry{Provider: p, Timeout: timeout})
	}
	return out, nil
}
