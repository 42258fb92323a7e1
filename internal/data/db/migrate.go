package db

import (
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrateAll brings the schema up to the current models. Deployments that
// skip it keep working on older mood_entries layouts through profile degradation.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.MoodEntry{},
	)
}
