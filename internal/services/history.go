package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yungbote/moodlog-backend/internal/data/db"
	"github.com/yungbote/moodlog-backend/internal/data/repos"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
)

const (
	DefaultRecentDays   = 7
	DefaultRecentLimit  = 20
	MaxRecentLimit      = 100
	DefaultTimelineDays = 30
	MaxTimelineDays     = 366
	maxTimelineEntries  = 5000
	historyViewList     = "list"
	historyViewTimeline = "timeline"
)

// Window bounds the list view. Zero values take the defaults.
type Window struct {
	Days  int
	Limit int
}

func (w Window) normalized() Window {
	if w.Days <= 0 {
		w.Days = DefaultRecentDays
	}
	if w.Limit <= 0 {
		w.Limit = DefaultRecentLimit
	}
	if w.Limit > MaxRecentLimit {
		w.Limit = MaxRecentLimit
	}
	return w
}

// History is the list view: newest first. DateOnly marks a store without
// the timestamp column, where ordering is by entry date.
type History struct {
	User     *types.User        `json:"user"`
	Entries  []*types.MoodEntry `json:"entries"`
	DateOnly bool               `json:"date_only"`
}

type DayBucket struct {
	Date    string `json:"date"`
	Happy   int    `json:"happy"`
	Neutral int    `json:"neutral"`
	Sad     int    `json:"sad"`
	Total   int    `json:"total"`
}

func (b *DayBucket) add(l types.MoodLabel) {
	switch l {
	case types.MoodHappy:
		b.Happy++
	case types.MoodNeutral:
		b.Neutral++
	case types.MoodSad:
		b.Sad++
	}
	b.Total++
}

// Timeline is the chart view: entries oldest first, per-day counts and
// totals for the whole range.
type Timeline struct {
	User     *types.User        `json:"user"`
	From     time.Time          `json:"from"`
	To       time.Time          `json:"to"`
	Entries  []*types.MoodEntry `json:"entries"`
	Days     []DayBucket        `json:"days"`
	Totals   DayBucket          `json:"totals"`
	DateOnly bool               `json:"date_only"`
}

func (s *moodService) ListRecent(ctx context.Context, username string, w Window) (*History, error) {
	u, err := resolveIdentity(ctx, s.dir, s.log, username)
	if err != nil {
		return nil, err
	}
	w = w.normalized()
	since := s.now().UTC().Add(-time.Duration(w.Days) * 24 * time.Hour)
	entries, dateOnly, err := s.list(ctx, historyViewList, repos.MoodListQuery{
		UserID: u.ID,
		Since:  &since,
		Limit:  w.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &History{User: u, Entries: entries, DateOnly: dateOnly}, nil
}

func (s *moodService) Timeline(ctx context.Context, username string, from, to time.Time) (*Timeline, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultTimelineDays * 24 * time.Hour)
	}
	from, to = from.UTC(), to.UTC()
	if from.After(to) {
		return nil, apierr.InvalidInput(errors.New("from must not be after to"))
	}
	if to.Sub(from) > MaxTimelineDays*24*time.Hour {
		return nil, apierr.InvalidInput(fmt.Errorf("range must not exceed %d days", MaxTimelineDays))
	}
	u, err := resolveIdentity(ctx, s.dir, s.log, username)
	if err != nil {
		return nil, err
	}
	entries, dateOnly, err := s.list(ctx, historyViewTimeline, repos.MoodListQuery{
		UserID:    u.ID,
		Since:     &from,
		Until:     &to,
		Ascending: true,
		Limit:     maxTimelineEntries,
	})
	if err != nil {
		return nil, err
	}
	days, totals := bucketByDay(entries)
	return &Timeline{
		User:     u,
		From:     from,
		To:       to,
		Entries:  entries,
		Days:     days,
		Totals:   totals,
		DateOnly: dateOnly,
	}, nil
}

// list runs q on the timestamp column and, when the store has none, again on
// the entry date.
func (s *moodService) list(ctx context.Context, view string, q repos.MoodListQuery) ([]*types.MoodEntry, bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	entries, err := s.moods.ListByUser(dbc, q)
	if err == nil {
		return nonNil(entries), false, nil
	}
	if !errors.Is(err, db.ErrUnknownColumn) {
		s.log.Error("mood history query failed", "view", view, "error", err)
		return nil, false, apierr.Persistence(err)
	}
	s.metrics.IncHistoryFallback(view)
	s.log.Warn("mood history falling back to entry date", "view", view, "error", err)
	q.DateOnly = true
	entries, err = s.moods.ListByUser(dbc, q)
	if err != nil {
		s.log.Error("mood history date query failed", "view", view, "error", err)
		return nil, true, apierr.Persistence(err)
	}
	return nonNil(entries), true, nil
}

func nonNil(entries []*types.MoodEntry) []*types.MoodEntry {
	if entries == nil {
		return []*types.MoodEntry{}
	}
	return entries
}

func bucketByDay(entries []*types.MoodEntry) ([]DayBucket, DayBucket) {
	byDay := map[string]*DayBucket{}
	var totals DayBucket
	for _, e := range entries {
		key := types.DayKey(e.LoggedAt())
		b, ok := byDay[key]
		if !ok {
			b = &DayBucket{Date: key}
			byDay[key] = b
		}
		b.add(e.MoodType)
		totals.add(e.MoodType)
	}
	days := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, totals
}
