package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/moodlog-backend/internal/data/repos/testutil"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/ctxutil"
)

func TestSessionService_RoundTrip(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	svc := NewSessionService(testutil.Logger(t), f.dir, "secret", time.Hour)
	ctx := context.Background()

	sess, err := svc.Start(ctx, " ana ")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Token == "" || sess.User == nil || sess.User.ID != f.ana.ID {
		t.Fatalf("unexpected session %+v", sess)
	}

	got, err := svc.SetContextFromToken(ctx, sess.Token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if ctxutil.SessionUsername(got) != "ana" {
		t.Fatalf("expected session username ana, got %q", ctxutil.SessionUsername(got))
	}

	same, err := svc.SetContextFromToken(ctx, "")
	if err != nil || ctxutil.GetSessionData(same) != nil {
		t.Fatalf("empty token must leave ctx untouched: %v", err)
	}
}

func TestSessionService_Rejects(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	ctx := context.Background()
	svc := NewSessionService(testutil.Logger(t), f.dir, "secret", time.Hour)

	if _, err := svc.Start(ctx, "zoe"); apierr.CodeOf(err) != apierr.CodeUnknownIdentity {
		t.Fatalf("expected unknown_identity, got %v", err)
	}

	other := NewSessionService(testutil.Logger(t), f.dir, "other-secret", time.Hour)
	sess, err := other.Start(ctx, "ana")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, sess.Token); apierr.CodeOf(err) != apierr.CodeInvalidSession {
		t.Fatalf("expected invalid_session for foreign signature, got %v", err)
	}

	expired := NewSessionService(testutil.Logger(t), f.dir, "secret", time.Hour).(*sessionService)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	sess, err = expired.Start(ctx, "ana")
	if err != nil {
		t.Fatalf("Start expired: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, sess.Token); apierr.CodeOf(err) != apierr.CodeInvalidSession {
		t.Fatalf("expected invalid_session for expired token, got %v", err)
	}
}

func TestIdentityService(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	testutil.SeedUser(t, context.Background(), f.conn, "mika")
	svc := NewIdentityService(testutil.Logger(t), f.dir)

	roster, err := svc.ListRoster(context.Background())
	if err != nil {
		t.Fatalf("ListRoster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(roster))
	}
	if _, err := svc.Resolve(context.Background(), ""); apierr.CodeOf(err) != apierr.CodeUnknownIdentity {
		t.Fatalf("expected unknown_identity for blank handle, got %v", err)
	}
	u, err := svc.Resolve(context.Background(), "mika")
	if err != nil || u.Username != "mika" {
		t.Fatalf("Resolve: %v %+v", err, u)
	}
}
