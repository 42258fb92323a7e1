package services

import (
	"math/rand"
	"sync"

	types "github.com/yungbote/moodlog-backend/internal/domain"
)

// Encouragement is the pair of messages shown after a mood is saved.
type Encouragement struct {
	MoodMessage string `json:"mood_message"`
	NoteMessage string `json:"note_message,omitempty"`
}

var moodMessages = map[types.MoodLabel][]string{
	types.MoodHappy: {
		"¡Qué genial que te sientas feliz! 😊",
		"¡Me alegra saber que estás de buen humor! 🌟",
		"¡Qué bueno que tengas un día alegre! ✨",
		"¡Tu felicidad es contagiosa! 🎉",
	},
	types.MoodNeutral: {
		"Es perfectamente normal sentirse neutral. 😌",
		"Los días tranquilos también son valiosos. 🌸",
		"A veces necesitamos estos momentos de calma. 🕊️",
		"Tu equilibrio emocional es admirable. ⚖️",
	},
	types.MoodSad: {
		"Es valiente que compartas cómo te sientes. 💙",
		"Los días difíciles también pasan. 🌈",
		"Reconocer tus emociones es el primer paso. 🤗",
		"Está bien no estar bien a veces. 💜",
	},
}

var noteMessages = map[types.MoodLabel][]string{
	types.MoodHappy: {
		"Gracias por compartir tu alegría con nosotros.",
		"Es hermoso ver cómo disfrutas los pequeños momentos.",
		"Tu positividad ilumina el día de todos.",
		"Que sigas teniendo muchos momentos así.",
	},
	types.MoodNeutral: {
		"Gracias por ser honesto sobre cómo te sientes.",
		"Cada día es una oportunidad de crecimiento.",
		"Tu autenticidad es muy valiosa.",
		"Es importante escuchar todas nuestras emociones.",
	},
	types.MoodSad: {
		"Gracias por confiar en nosotros con tus sentimientos.",
		"Recuerda que no estás solo en esto.",
		"Es valiente expresar lo que sientes.",
		"Cada día es una nueva oportunidad.",
	},
}

// Encourager picks encouragement messages from a fixed per-mood pool.
type Encourager struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEncourager(rng *rand.Rand) *Encourager {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Encourager{rng: rng}
}

// Pick returns one mood message, plus a note message when the entry had a note.
func (e *Encourager) Pick(mood types.MoodLabel, withNote bool) Encouragement {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := Encouragement{MoodMessage: e.pick(moodMessages[mood])}
	if withNote {
		out.NoteMessage = e.pick(noteMessages[mood])
	}
	return out
}

func (e *Encourager) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[e.rng.Intn(len(pool))]
}
