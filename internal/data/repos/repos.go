package repos

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/moodlog-backend/internal/data/repos/mood"
	"github.com/yungbote/moodlog-backend/internal/data/repos/user"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type IdentityDirectory = user.Directory

type MoodEntryRepo = mood.MoodEntryRepo
type MoodListQuery = mood.ListQuery
type ColumnProfile = mood.ColumnProfile

// InsertProfiles is the mood entry column degradation order.
var InsertProfiles = mood.InsertProfiles

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewMoodEntryRepo(db *gorm.DB, baseLog *logger.Logger) MoodEntryRepo {
	return mood.NewMoodEntryRepo(db, baseLog)
}

// NewIdentityDirectory returns the repo-backed directory, behind the redis
// cache when rdb is non-nil.
func NewIdentityDirectory(repo UserRepo, rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) IdentityDirectory {
	dir := user.NewDirectory(repo)
	if rdb == nil {
		return dir
	}
	return user.NewCachedDirectory(dir, rdb, ttl, baseLog)
}
