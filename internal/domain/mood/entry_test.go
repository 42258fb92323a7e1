package mood

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestParseLabel(t *testing.T) {
	for _, raw := range []string{"happy", " Neutral ", "SAD"} {
		if _, err := ParseLabel(raw); err != nil {
			t.Fatalf("ParseLabel(%q): %v", raw, err)
		}
	}
	for _, raw := range []string{"", "angry", "happy!"} {
		if _, err := ParseLabel(raw); err == nil {
			t.Fatalf("ParseLabel(%q): expected error", raw)
		}
	}
}

func TestLoggedAtFallsBackToEntryDate(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	e := &Entry{EntryDate: datatypes.Date(day)}
	if got := e.LoggedAt(); !got.Equal(day) {
		t.Fatalf("LoggedAt without timestamp: got=%s", got)
	}
	ts := day.Add(15 * time.Hour)
	e.MoodTimestamp = &ts
	if got := e.LoggedAt(); !got.Equal(ts) {
		t.Fatalf("LoggedAt with timestamp: got=%s", got)
	}
	if DayKey(ts) != "2026-03-04" {
		t.Fatalf("DayKey: got=%s", DayKey(ts))
	}
}
