package domain

import (
	"time"

	"github.com/yungbote/moodlog-backend/internal/domain/mood"
	"github.com/yungbote/moodlog-backend/internal/domain/user"
)

type (
	User      = user.User
	MoodEntry = mood.Entry
	MoodLabel = mood.Label
)

const (
	MoodHappy   = mood.LabelHappy
	MoodNeutral = mood.LabelNeutral
	MoodSad     = mood.LabelSad
)

// MoodLabels is the closed label set in display order.
var MoodLabels = mood.Labels

// DayKey formats t as YYYY-MM-DD in UTC.
func DayKey(t time.Time) string { return mood.DayKey(t) }

// ParseMoodLabel accepts a label in any case, surrounded by spaces.
func ParseMoodLabel(raw string) (MoodLabel, error) { return mood.ParseLabel(raw) }
