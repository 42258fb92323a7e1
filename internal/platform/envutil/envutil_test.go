package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"30", 30 * time.Second},
		{"1m30s", 90 * time.Second},
		{"-3", 5 * time.Second},
		{"soon", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("MOODLOG_TEST_DURATION", tc.raw)
		if got := Duration("MOODLOG_TEST_DURATION", 5*time.Second); got != tc.want {
			t.Fatalf("Duration(%q): got=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("MOODLOG_TEST_BOOL", "off")
	if Bool("MOODLOG_TEST_BOOL", true) {
		t.Fatalf("expected off to parse as false")
	}
	t.Setenv("MOODLOG_TEST_BOOL", "maybe")
	if !Bool("MOODLOG_TEST_BOOL", true) {
		t.Fatalf("expected unparseable value to return default")
	}
	t.Setenv("MOODLOG_TEST_INT", "12")
	if got := Int("MOODLOG_TEST_INT", 1); got != 12 {
		t.Fatalf("Int: got=%d", got)
	}
	if got := String("MOODLOG_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("String: got=%q", got)
	}
}
