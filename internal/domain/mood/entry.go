package mood

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Label string

const (
	LabelHappy   Label = "happy"
	LabelNeutral Label = "neutral"
	LabelSad     Label = "sad"
)

// Labels lists the closed set in display order.
var Labels = []Label{LabelHappy, LabelNeutral, LabelSad}

func (l Label) Valid() bool {
	switch l {
	case LabelHappy, LabelNeutral, LabelSad:
		return true
	default:
		return false
	}
}

func ParseLabel(raw string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(raw)))
	if !l.Valid() {
		return "", fmt.Errorf("invalid mood %q (allowed: happy, neutral, sad)", raw)
	}
	return l, nil
}

// Entry is one logged mood. Rows are append-only.
//
// ImageURL, ImageModel and ImagePrompt, and even MoodTimestamp, may be missing
// from older deployments of the table; reads tolerate their absence and writes
// degrade through column profiles (see repos.MoodEntryRepo).
type Entry struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	MoodType Label     `gorm:"not null;column:mood_type" json:"mood_type"`
	Note     *string   `gorm:"column:note" json:"note"`

	EntryDate     datatypes.Date `gorm:"not null;index;column:entry_date" json:"entry_date"`
	MoodTimestamp *time.Time     `gorm:"index;column:mood_timestamp" json:"mood_timestamp,omitempty"`

	ImageURL    *string `gorm:"column:mood_image_url" json:"mood_image_url,omitempty"`
	ImageModel  *string `gorm:"column:mood_image_model" json:"mood_image_model,omitempty"`
	ImagePrompt *string `gorm:"column:mood_image_prompt" json:"mood_image_prompt,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;column:created_at" json:"created_at"`
}

func (Entry) TableName() string { return "mood_entries" }

// LoggedAt is the best available point in time for the entry: the timestamp
// column when present, otherwise the entry date.
func (e *Entry) LoggedAt() time.Time {
	if e == nil {
		return time.Time{}
	}
	if e.MoodTimestamp != nil && !e.MoodTimestamp.IsZero() {
		return e.MoodTimestamp.UTC()
	}
	return time.Time(e.EntryDate).UTC()
}

// DayKey formats t as YYYY-MM-DD in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
