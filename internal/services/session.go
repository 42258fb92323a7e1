package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/moodlog-backend/internal/data/repos"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

const sessionIssuer = "moodlog"

// SessionClaims carry the identity handle picked on the login screen.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *types.User `json:"user"`
}

type SessionService interface {
	// Start resolves username and signs a session for it.
	Start(ctx context.Context, username string) (*Session, error)
	// SetContextFromToken attaches the token's session data to ctx. An empty
	// token leaves ctx unchanged.
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
	TTL() time.Duration
}

type sessionService struct {
	log    *logger.Logger
	dir    repos.IdentityDirectory
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(log *logger.Logger, dir repos.IdentityDirectory, secret string, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &sessionService{
		log:    log.With("service", "SessionService"),
		dir:    dir,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *sessionService) TTL() time.Duration { return s.ttl }

func (s *sessionService) Start(ctx context.Context, username string) (*Session, error) {
	u, err := resolveIdentity(ctx, s.dir, s.log, username)
	if err != nil {
		return nil, err
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp.UTC(), User: u}, nil
}

func (s *sessionService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ctx, apierr.InvalidSession(fmt.Errorf("parse session: %w", err))
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Username) == "" {
		return ctx, apierr.InvalidSession(errors.New("invalid or expired session"))
	}
	return ctxutil.WithSessionData(ctx, &ctxutil.SessionData{Username: claims.Username}), nil
}
