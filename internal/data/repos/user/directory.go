package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

// Directory resolves identity handles. FindByUsername returns nil, nil for
// unknown handles.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*types.User, error)
	ListAll(ctx context.Context) ([]*types.User, error)
}

type repoDirectory struct {
	repo UserRepo
}

func NewDirectory(repo UserRepo) Directory {
	return &repoDirectory{repo: repo}
}

func (d *repoDirectory) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	return d.repo.GetByUsername(dbctx.Context{Ctx: ctx}, username)
}

func (d *repoDirectory) ListAll(ctx context.Context) ([]*types.User, error) {
	return d.repo.ListAll(dbctx.Context{Ctx: ctx})
}

const identityKeyPrefix = "moodlog:identity:"

type cachedDirectory struct {
	next  Directory
	rdb   goredis.UniversalClient
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// NewCachedDirectory puts a redis read-through cache in front of next.
// Only found identities are cached; redis failures fall through to next.
func NewCachedDirectory(next Directory, rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) Directory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cachedDirectory{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  baseLog.With("service", "IdentityCache"),
	}
}

func (d *cachedDirectory) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	// Handles are case-sensitive, so the key is the exact handle.
	key := identityKeyPrefix + username

	raw, err := d.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var u types.User
		if uErr := json.Unmarshal(raw, &u); uErr == nil && u.Username == username {
			return &u, nil
		}
	case !errors.Is(err, goredis.Nil):
		d.log.Warn("identity cache read failed", "error", err)
	}

	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		return d.next.FindByUsername(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	u, _ := v.(*types.User)
	if u == nil {
		return nil, nil
	}
	if b, mErr := json.Marshal(u); mErr == nil {
		if sErr := d.rdb.Set(ctx, key, b, d.ttl).Err(); sErr != nil {
			d.log.Warn("identity cache write failed", "error", sErr)
		}
	}
	return u, nil
}

// ListAll is not cached; the roster screen is rare and wants fresh data.
func (d *cachedDirectory) ListAll(ctx context.Context) ([]*types.User, error) {
	return d.next.ListAll(ctx)
}
