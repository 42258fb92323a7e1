package imagegen

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	types "github.com/yungbote/moodlog-backend/internal/domain"
)

type Species string

const (
	SpeciesKitten Species = "kitten"
	SpeciesPuppy  Species = "puppy"
)

type Category string

const (
	CategoryWork      Category = "work"
	CategoryFatigue   Category = "fatigue"
	CategoryHappiness Category = "happiness"
	CategorySadness   Category = "sadness"
	CategoryFood      Category = "food"
	CategoryExercise  Category = "exercise"
	CategoryFamily    Category = "family"
	CategoryFriends   Category = "friends"
	CategoryRain      Category = "rain"
	CategorySun       Category = "sun"
)

type categoryRule struct {
	Category Category
	Keywords []string
	// Context is a format string with a single %s for the species.
	Context string
}

// categoryTable is frozen. Order is the tie-break: the first category with any
// keyword hit wins, even when a later one matches more keywords.
var categoryTable = []categoryRule{
	{
		Category: CategoryWork,
		Keywords: []string{"trabajo", "oficina", "productiv", "reunión", "reunion", "proyecto", "work", "office"},
		Context:  "a tiny %s at a cluttered office desk with a laptop, sticky notes and a steaming coffee mug",
	},
	{
		Category: CategoryFatigue,
		Keywords: []string{"cansad", "sueño", "dormir", "agotad", "tired", "sleepy"},
		Context:  "a drowsy %s yawning under a fluffy blanket, eyes half closed, curled up in a comically sleepy pose",
	},
	{
		Category: CategoryHappiness,
		Keywords: []string{"feliz", "alegre", "content", "genial", "happy"},
		Context:  "a beaming %s bouncing through a field of flowers with confetti in the air",
	},
	{
		Category: CategorySadness,
		Keywords: []string{"triste", "llorar", "deprimid", "sad"},
		Context:  "a small %s with big glossy eyes hugging a soft pillow by a window, being gently comforted",
	},
	{
		Category: CategoryFood,
		Keywords: []string{"comida", "cena", "almuerzo", "desayuno", "pizza", "food"},
		Context:  "a delighted %s surrounded by plates of food, cheeks full, looking very satisfied",
	},
	{
		Category: CategoryExercise,
		Keywords: []string{"ejercicio", "gym", "correr", "entrenar", "exercise", "running"},
		Context:  "a determined %s in a tiny sweatband and sneakers, jogging or lifting miniature dumbbells",
	},
	{
		Category: CategoryFamily,
		Keywords: []string{"familia", "mamá", "papá", "hermano", "hermana", "family"},
		Context:  "a %s snuggled together with its family on a cozy couch at home",
	},
	{
		Category: CategoryFriends,
		Keywords: []string{"amigo", "amiga", "personas", "fiesta", "friends"},
		Context:  "a %s at a cheerful little party with animal friends, balloons and snacks",
	},
	{
		Category: CategoryRain,
		Keywords: []string{"lluvia", "lloviendo", "mal tiempo", "rain"},
		Context:  "a %s holding a bright yellow umbrella in the rain, splashing in puddles while staying adorable",
	},
	{
		Category: CategorySun,
		Keywords: []string{"soleado", "día de sol", "playa", "sunny"},
		Context:  "a %s wearing little sunglasses on a sunny beach next to a sandcastle",
	},
}

var moodExpression = map[types.MoodLabel]string{
	types.MoodHappy:   "very happy and playful, with a big smile",
	types.MoodNeutral: "calm and serene, with a relaxed expression",
	types.MoodSad:     "a little sad but very tender, with big expressive eyes",
}

// Used when no category keyword appears in the note.
var moodFallbackContext = map[types.MoodLabel]string{
	types.MoodHappy:   "a cheerful %s playing in a sunny garden, creatively reflecting the note",
	types.MoodNeutral: "a peaceful %s sitting on a windowsill watching the world go by, creatively reflecting the note",
	types.MoodSad:     "a %s wrapped in a warm scarf on a quiet rainy afternoon, creatively reflecting the note",
}

const styleSuffix = "Style: colorful digital illustration, cute cartoon, soft lighting, vibrant colors, high detail, heartwarming and funny."

// PromptBuilder turns a journal note and mood into an image prompt. The only
// randomness is the species coin flip, drawn once per Build from rng.
type PromptBuilder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewPromptBuilder(rng *rand.Rand) *PromptBuilder {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &PromptBuilder{rng: rng}
}

// Prompt is a built prompt plus the choices that went into it.
type Prompt struct {
	Text     string
	Species  Species
	Category Category
}

func (b *PromptBuilder) Build(note string, mood types.MoodLabel) string {
	return b.Compose(note, mood).Text
}

func (b *PromptBuilder) Compose(note string, mood types.MoodLabel) Prompt {
	species := b.pickSpecies()
	category, _ := MatchCategory(note)
	return Prompt{Text: BuildFor(note, mood, species), Species: species, Category: category}
}

func (b *PromptBuilder) pickSpecies() Species {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rng.Intn(2) == 0 {
		return SpeciesKitten
	}
	return SpeciesPuppy
}

// MatchCategory returns the first table category with a keyword in note.
func MatchCategory(note string) (Category, bool) {
	lower := strings.ToLower(note)
	for _, rule := range categoryTable {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// ContextFragment is the scene text for a category, or for the mood when
// category is empty.
func ContextFragment(category Category, mood types.MoodLabel, species Species) string {
	for _, rule := range categoryTable {
		if rule.Category == category {
			return fmt.Sprintf(rule.Context, species)
		}
	}
	tmpl, ok := moodFallbackContext[mood]
	if !ok {
		tmpl = moodFallbackContext[types.MoodNeutral]
	}
	return fmt.Sprintf(tmpl, species)
}

// BuildFor is Build with the species fixed.
func BuildFor(note string, mood types.MoodLabel, species Species) string {
	category, _ := MatchCategory(note)
	expr, ok := moodExpression[mood]
	if !ok {
		expr = "tender"
	}
	return fmt.Sprintf(
		"A whimsical, adorable illustration of a %s feeling %s. Scene: %s. %s Inspired by this journal note: \"%s\"",
		species, expr, ContextFragment(category, mood, species), styleSuffix, note,
	)
}
