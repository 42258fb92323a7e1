package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/moodlog-backend/internal/data/repos"
	"github.com/yungbote/moodlog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/imagegen"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
)

// fakeImages counts calls and answers with a fixed result.
type fakeImages struct {
	mu    sync.Mutex
	calls int
	notes []string
	img   *GeneratedImage
	err   error
}

func (f *fakeImages) GenerateForNote(_ context.Context, note string, _ types.MoodLabel) (*GeneratedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.notes = append(f.notes, note)
	return f.img, f.err
}

// recordingChain captures the requests it receives.
type recordingChain struct {
	reqs   []imagegen.Request
	result imagegen.Result
}

func (c *recordingChain) Generate(_ context.Context, req imagegen.Request) imagegen.Result {
	c.reqs = append(c.reqs, req)
	res := c.result
	if res.Prompt == "" {
		res.Prompt = req.Prompt
	}
	return res
}

// brokenStore fails every insert with a non-column error.
type brokenStore struct {
	repos.MoodEntryRepo
	inserts int
}

func (b *brokenStore) Insert(dbctx.Context, repos.ColumnProfile, *types.MoodEntry) error {
	b.inserts++
	return errors.New("connection reset by peer")
}

type fixture struct {
	conn   *gorm.DB
	users  repos.UserRepo
	moods  repos.MoodEntryRepo
	dir    repos.IdentityDirectory
	images *fakeImages
	clock  time.Time
	ana    *types.User
}

func newFixture(t *testing.T, conn *gorm.DB) *fixture {
	t.Helper()
	log := testutil.Logger(t)
	f := &fixture{
		conn:  conn,
		users: repos.NewUserRepo(conn, log),
		moods: repos.NewMoodEntryRepo(conn, log),
		images: &fakeImages{img: &GeneratedImage{
			URL:      "https://img.example/cat.png",
			Provider: "gemini:gemini-2.0-flash-exp",
			Prompt:   "a kitten",
		}},
		clock: time.Date(2026, 3, 12, 18, 30, 0, 0, time.UTC),
	}
	f.dir = repos.NewIdentityDirectory(f.users, nil, 0, log)
	f.ana = testutil.SeedUser(t, context.Background(), conn, "ana")
	return f
}

func (f *fixture) service(t *testing.T, opts ...MoodOption) MoodService {
	t.Helper()
	base := []MoodOption{
		WithClock(func() time.Time { return f.clock }),
		WithEncourager(NewEncourager(rand.New(rand.NewSource(1)))),
	}
	return NewMoodService(testutil.Logger(t), f.dir, f.moods, f.images, append(base, opts...)...)
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	n, err := f.moods.CountByUser(dbctx.Context{Ctx: context.Background()}, f.ana.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	return n
}
