package app

import (
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/moodlog-backend/internal/data/repos"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	MoodEntry repos.MoodEntryRepo
	Directory repos.IdentityDirectory
}

func wireRepos(db *gorm.DB, rdb *goredis.Client, log *logger.Logger, cfg Config) Repos {
	log.Info("Wiring repos...")
	user := repos.NewUserRepo(db, log)
	// A typed nil client must not reach the directory as a non-nil interface.
	var cache goredis.UniversalClient
	if rdb != nil {
		cache = rdb
	}
	return Repos{
		User:      user,
		MoodEntry: repos.NewMoodEntryRepo(db, log),
		Directory: repos.NewIdentityDirectory(user, cache, cfg.IdentityCacheTTL, log),
	}
}
