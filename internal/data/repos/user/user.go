package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	ListAll(dbc dbctx.Context) ([]*types.User, error)
	Upsert(dbc dbctx.Context, rows []*types.User) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

// GetByUsername returns nil, nil when no identity has that handle.
func (r *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var row types.User
	err := dbc.DB(r.db).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) ListAll(dbc dbctx.Context) ([]*types.User, error) {
	var out []*types.User
	if err := dbc.DB(r.db).Order("display_name ASC").Order("username ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts roster rows, updating display name and emoji of existing usernames.
func (r *userRepo) Upsert(dbc dbctx.Context, rows []*types.User) ([]*types.User, error) {
	if len(rows) == 0 {
		return []*types.User{}, nil
	}
	now := time.Now().UTC()
	clean := make([]*types.User, 0, len(rows))
	usernames := make([]string, 0, len(rows))
	for _, u := range rows {
		if u == nil || strings.TrimSpace(u.Username) == "" {
			continue
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.Username = strings.TrimSpace(u.Username)
		u.CreatedAt = now
		u.UpdatedAt = now
		clean = append(clean, u)
		usernames = append(usernames, u.Username)
	}
	if len(clean) == 0 {
		return []*types.User{}, nil
	}
	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "emoji", "updated_at"}),
		}).
		Create(&clean).Error
	if err != nil {
		return nil, err
	}
	// Existing usernames keep their original id; reload so callers see it.
	var out []*types.User
	if err := dbc.DB(r.db).Where("username IN ?", usernames).Order("display_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
