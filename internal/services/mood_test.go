package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/moodlog-backend/internal/data/repos"
	"github.com/yungbote/moodlog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/imagegen"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
)

func TestSubmit_EmptyNoteSkipsImage(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	svc := f.service(t)

	res, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "happy", Note: "   "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.images.calls != 0 {
		t.Fatalf("expected no image generation, got %d calls", f.images.calls)
	}
	if res.Profile != "full" {
		t.Fatalf("expected full profile, got %q", res.Profile)
	}
	if res.Encouragement.MoodMessage == "" || res.Encouragement.NoteMessage != "" {
		t.Fatalf("unexpected encouragement: %+v", res.Encouragement)
	}

	rows, err := f.moods.ListByUser(dbctx.Context{Ctx: context.Background()}, repos.MoodListQuery{UserID: f.ana.ID})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.MoodType != types.MoodHappy || got.Note != nil || got.ImageURL != nil || got.ImageModel != nil {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.MoodTimestamp == nil || !got.MoodTimestamp.Equal(f.clock) {
		t.Fatalf("expected timestamp %s, got %v", f.clock, got.MoodTimestamp)
	}
	if !res.Entry.CreatedAt.Equal(f.clock) {
		t.Fatalf("returned entry created_at: want=%s got=%s", f.clock, res.Entry.CreatedAt)
	}
	if !got.CreatedAt.Equal(f.clock) {
		t.Fatalf("stored created_at: want=%s got=%s", f.clock, got.CreatedAt)
	}
}

func TestSubmit_NoteAttachesImage(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	svc := f.service(t)

	res, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "Sad", Note: "  día de lluvia  "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.images.calls != 1 || f.images.notes[0] != "día de lluvia" {
		t.Fatalf("expected one call with trimmed note, got %d %q", f.images.calls, f.images.notes)
	}
	if res.ImageFallback || res.Image == nil || res.Image.URL != "https://img.example/cat.png" {
		t.Fatalf("unexpected image result: %+v", res.Image)
	}
	if res.Encouragement.NoteMessage == "" {
		t.Fatalf("expected note message")
	}
	e := res.Entry
	if e.MoodType != types.MoodSad || e.Note == nil || *e.Note != "día de lluvia" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.ImageModel == nil || *e.ImageModel != "gemini:gemini-2.0-flash-exp" {
		t.Fatalf("expected provider diagnostics, got %v", e.ImageModel)
	}
	if f.count(t) != 1 {
		t.Fatalf("expected exactly one row")
	}
}

func TestSubmit_ImageFailureIsAbsorbed(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	f.images.img = nil
	f.images.err = errors.New("chain exploded")
	svc := f.service(t)

	res, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "neutral", Note: "nada especial"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.ImageFallback || res.Entry.ImageURL == nil || *res.Entry.ImageURL != DefaultMoodImageURL {
		t.Fatalf("expected default image, got %+v", res.Entry)
	}
	if res.Entry.ImageModel != nil {
		t.Fatalf("default image must not claim a provider: %v", *res.Entry.ImageModel)
	}

	svc = f.service(t, WithDefaultImageURL(""))
	res, err = svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "neutral", Note: "otra nota"})
	if err != nil {
		t.Fatalf("Submit without default: %v", err)
	}
	if res.Entry.ImageURL != nil {
		t.Fatalf("expected no image, got %q", *res.Entry.ImageURL)
	}
	if f.count(t) != 2 {
		t.Fatalf("expected two rows")
	}
}

func TestSubmit_WorkBeatsFatigue(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	chain := &recordingChain{result: imagegen.Result{ProviderName: "dalle:dall-e-3", ImageRef: "https://img.example/dog.png"}}
	images := NewImageService(testutil.Logger(t), imagegen.NewPromptBuilder(nil), chain)
	svc := NewMoodService(testutil.Logger(t), f.dir, f.moods, images)

	res, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "sad", Note: "trabajo muy cansado"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(chain.reqs) != 1 {
		t.Fatalf("expected one chain call, got %d", len(chain.reqs))
	}
	req := chain.reqs[0]
	work := imagegen.ContextFragment(imagegen.CategoryWork, types.MoodSad, req.Species)
	fatigue := imagegen.ContextFragment(imagegen.CategoryFatigue, types.MoodSad, req.Species)
	if !strings.Contains(req.Prompt, work) || strings.Contains(req.Prompt, fatigue) {
		t.Fatalf("expected work context only, got %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "trabajo muy cansado") {
		t.Fatalf("prompt must carry the note verbatim: %q", req.Prompt)
	}
	if res.Entry.ImagePrompt == nil || *res.Entry.ImagePrompt != req.Prompt {
		t.Fatalf("expected stored prompt to match the sent prompt")
	}
}

func TestSubmit_ChainOfFailuresEndsInPlaceholder(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	log := testutil.Logger(t)
	var calls int
	fail := func(name string) imagegen.Entry {
		return imagegen.Entry{Provider: imagegen.ProviderFunc{
			ProviderName: name,
			Fn: func(context.Context, imagegen.Request) (imagegen.Image, error) {
				calls++
				return imagegen.Image{}, errors.New("boom")
			},
		}}
	}
	chain := imagegen.NewChain(log, []imagegen.Entry{fail("a"), fail("b")},
		imagegen.NewPlaceholderProvider("", nil), imagegen.BreakerSettings{})
	svc := NewMoodService(log, f.dir, f.moods, NewImageService(log, nil, chain))

	res, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "happy", Note: "pizza con amigos"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected each provider once, got %d calls", calls)
	}
	if res.Image == nil || !res.Image.Placeholder || res.Image.Provider != imagegen.PlaceholderName {
		t.Fatalf("expected placeholder image, got %+v", res.Image)
	}
	if !strings.HasPrefix(*res.Entry.ImageURL, imagegen.DefaultPlaceholderBase+"/seed/") {
		t.Fatalf("unexpected placeholder url %q", *res.Entry.ImageURL)
	}
	if len(res.Image.Attempts) != 2 {
		t.Fatalf("expected 2 recorded attempts, got %d", len(res.Image.Attempts))
	}
}

func TestSubmit_Failures(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	svc := f.service(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   SubmitInput
		code string
	}{
		{"missing mood", SubmitInput{Username: "ana"}, apierr.CodeInvalidInput},
		{"bad mood", SubmitInput{Username: "ana", Mood: "angry"}, apierr.CodeInvalidInput},
		{"missing user", SubmitInput{Mood: "happy"}, apierr.CodeInvalidInput},
		{"long note", SubmitInput{Username: "ana", Mood: "happy", Note: strings.Repeat("a", 2001)}, apierr.CodeInvalidInput},
		{"unknown user", SubmitInput{Username: "zoe", Mood: "happy", Note: "hola"}, apierr.CodeUnknownIdentity},
	}
	for _, tc := range cases {
		_, err := svc.Submit(ctx, tc.in)
		if got := apierr.CodeOf(err); got != tc.code {
			t.Fatalf("%s: expected %s, got %q (%v)", tc.name, tc.code, got, err)
		}
	}
	if f.images.calls != 0 {
		t.Fatalf("failed submissions must not generate images, got %d", f.images.calls)
	}
	if f.count(t) != 0 {
		t.Fatalf("failed submissions must not write rows")
	}
}

func TestSubmit_PersistenceErrorStopsDegradation(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	store := &brokenStore{MoodEntryRepo: f.moods}
	svc := NewMoodService(testutil.Logger(t), f.dir, store, f.images)

	_, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "sad", Note: "hola"})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodePersistenceError || !ae.Retryable() {
		t.Fatalf("expected retryable persistence error, got %v", err)
	}
	if store.inserts != 1 {
		t.Fatalf("expected a single insert attempt, got %d", store.inserts)
	}
	if f.count(t) != 0 {
		t.Fatalf("expected no rows after a failed write")
	}
}

func TestSubmit_LegacySchemas(t *testing.T) {
	cases := []struct {
		layout     string
		profile    string
		wantImage  bool
		wantModel  bool
		wantMoment bool
	}{
		{testutil.LegacyNoDebug, "no_diagnostics", true, false, true},
		{testutil.LegacyNoImage, "no_image", false, false, true},
		{testutil.LegacyMinimal, "minimal", false, false, false},
	}
	for _, tc := range cases {
		f := newFixture(t, testutil.LegacyDB(t, tc.layout))
		svc := f.service(t)
		res, err := svc.Submit(context.Background(), SubmitInput{Username: "ana", Mood: "happy", Note: "fiesta con amigos"})
		if err != nil {
			t.Fatalf("%s: Submit: %v", tc.layout, err)
		}
		if res.Profile != tc.profile {
			t.Fatalf("%s: expected profile %s, got %s", tc.layout, tc.profile, res.Profile)
		}
		if f.count(t) != 1 {
			t.Fatalf("%s: expected exactly one row", tc.layout)
		}
		if (res.Entry.ImageURL != nil) != tc.wantImage || (res.Entry.ImageModel != nil) != tc.wantModel ||
			(res.Entry.MoodTimestamp != nil) != tc.wantMoment {
			t.Fatalf("%s: entry does not match stored columns: %+v", tc.layout, res.Entry)
		}

		h, err := svc.ListRecent(context.Background(), "ana", Window{})
		if err != nil {
			t.Fatalf("%s: ListRecent: %v", tc.layout, err)
		}
		if len(h.Entries) != 1 || h.Entries[0].ImageModel != nil {
			t.Fatalf("%s: expected the entry back without diagnostics, got %+v", tc.layout, h.Entries)
		}
		if h.DateOnly != !tc.wantMoment {
			t.Fatalf("%s: DateOnly=%v", tc.layout, h.DateOnly)
		}
	}
}
