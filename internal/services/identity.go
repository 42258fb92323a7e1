package services

import (
	"context"
	"strings"

	"github.com/yungbote/moodlog-backend/internal/data/repos"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type IdentityService interface {
	// ListRoster returns every selectable identity for the login screen.
	ListRoster(ctx context.Context) ([]*types.User, error)
	// Resolve maps a handle to its identity, failing with unknown_identity.
	Resolve(ctx context.Context, username string) (*types.User, error)
}

type identityService struct {
	log *logger.Logger
	dir repos.IdentityDirectory
}

func NewIdentityService(log *logger.Logger, dir repos.IdentityDirectory) IdentityService {
	return &identityService{
		log: log.With("service", "IdentityService"),
		dir: dir,
	}
}

func (s *identityService) ListRoster(ctx context.Context) ([]*types.User, error) {
	users, err := s.dir.ListAll(ctx)
	if err != nil {
		s.log.Warn("list roster failed", "error", err)
		return nil, apierr.Persistence(err)
	}
	if users == nil {
		users = []*types.User{}
	}
	return users, nil
}

func (s *identityService) Resolve(ctx context.Context, username string) (*types.User, error) {
	return resolveIdentity(ctx, s.dir, s.log, username)
}

func resolveIdentity(ctx context.Context, dir repos.IdentityDirectory, log *logger.Logger, username string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apierr.UnknownIdentity(username)
	}
	u, err := dir.FindByUsername(ctx, username)
	if err != nil {
		log.Warn("identity lookup failed", "username", username, "error", err)
		return nil, apierr.Persistence(err)
	}
	if u == nil {
		return nil, apierr.UnknownIdentity(username)
	}
	return u, nil
}
