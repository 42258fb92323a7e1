package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/moodlog-backend/internal/data/db"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func open(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writes.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// DB returns a fresh in-memory database migrated to the current models.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	conn := open(tb)
	if err := db.AutoMigrateAll(conn); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	return conn
}

// Legacy mood_entries layouts, oldest first.
const (
	LegacyMinimal = "minimal"
	LegacyNoImage = "no_image"
	LegacyNoDebug = "no_diagnostics"
)

// LegacyDB returns a database whose users table is current but whose
// mood_entries table predates the given optional columns.
func LegacyDB(tb testing.TB, layout string) *gorm.DB {
	tb.Helper()
	conn := open(tb)
	if err := conn.AutoMigrate(&types.User{}); err != nil {
		tb.Fatalf("automigrate users: %v", err)
	}
	cols := []string{
		"id TEXT PRIMARY KEY",
		"user_id TEXT NOT NULL",
		"mood_type TEXT NOT NULL",
		"note TEXT",
		"entry_date DATE NOT NULL",
		"created_at DATETIME DEFAULT CURRENT_TIMESTAMP",
	}
	switch layout {
	case LegacyMinimal:
	case LegacyNoImage:
		cols = append(cols, "mood_timestamp DATETIME")
	case LegacyNoDebug:
		cols = append(cols, "mood_timestamp DATETIME", "mood_image_url TEXT")
	default:
		tb.Fatalf("unknown legacy layout %q", layout)
	}
	ddl := "CREATE TABLE mood_entries (" + strings.Join(cols, ", ") + ")"
	if err := conn.Exec(ddl).Error; err != nil {
		tb.Fatalf("create legacy mood_entries: %v", err)
	}
	return conn
}
