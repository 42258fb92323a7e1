package mood

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/moodlog-backend/internal/data/db"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

const tableName = "mood_entries"

// ColumnProfile is a named set of columns an insert writes.
type ColumnProfile struct {
	Name    string
	Columns []string
}

var mandatoryColumns = []string{"id", "user_id", "mood_type", "note", "entry_date", "created_at"}

func withMandatory(extra ...string) []string {
	out := make([]string, 0, len(mandatoryColumns)+len(extra))
	out = append(out, mandatoryColumns...)
	return append(out, extra...)
}

var (
	ProfileFull          = ColumnProfile{Name: "full", Columns: withMandatory("mood_timestamp", "mood_image_url", "mood_image_model", "mood_image_prompt")}
	ProfileNoDiagnostics = ColumnProfile{Name: "no_diagnostics", Columns: withMandatory("mood_timestamp", "mood_image_url")}
	ProfileNoImage       = ColumnProfile{Name: "no_image", Columns: withMandatory("mood_timestamp")}
	ProfileMinimal       = ColumnProfile{Name: "minimal", Columns: withMandatory()}
)

// InsertProfiles is the degradation order: broadest first, one optional
// column group dropped per step, ending with the mandatory columns only.
var InsertProfiles = []ColumnProfile{ProfileFull, ProfileNoDiagnostics, ProfileNoImage, ProfileMinimal}

// ListQuery selects one identity's entries. Since/Until bound the timestamp
// (or the entry date when DateOnly is set); Limit <= 0 means unbounded.
type ListQuery struct {
	UserID    uuid.UUID
	Since     *time.Time
	Until     *time.Time
	Ascending bool
	Limit     int
	DateOnly  bool
}

type MoodEntryRepo interface {
	// Insert writes exactly the profile's columns of row as one statement.
	// A missing column surfaces as an error matching db.ErrUnknownColumn.
	Insert(dbc dbctx.Context, profile ColumnProfile, row *types.MoodEntry) error
	ListByUser(dbc dbctx.Context, q ListQuery) ([]*types.MoodEntry, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type moodEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodEntryRepo(db *gorm.DB, baseLog *logger.Logger) MoodEntryRepo {
	return &moodEntryRepo{db: db, log: baseLog.With("repo", "MoodEntryRepo")}
}

func (r *moodEntryRepo) Insert(dbc dbctx.Context, profile ColumnProfile, row *types.MoodEntry) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	all := rowValues(row)
	values := make(map[string]interface{}, len(profile.Columns))
	for _, col := range profile.Columns {
		values[col] = all[col]
	}
	err := dbc.DB(r.db).Table(tableName).Create(values).Error
	return db.ClassifyColumnError(err)
}

func rowValues(row *types.MoodEntry) map[string]interface{} {
	values := map[string]interface{}{
		"id":                row.ID,
		"user_id":           row.UserID,
		"mood_type":         string(row.MoodType),
		"note":              nil,
		"entry_date":        datatypes.Date(time.Time(row.EntryDate).UTC()),
		"created_at":        row.CreatedAt.UTC(),
		"mood_timestamp":    nil,
		"mood_image_url":    nil,
		"mood_image_model":  nil,
		"mood_image_prompt": nil,
	}
	if row.Note != nil {
		values["note"] = *row.Note
	}
	if row.MoodTimestamp != nil {
		values["mood_timestamp"] = row.MoodTimestamp.UTC()
	}
	if row.ImageURL != nil {
		values["mood_image_url"] = *row.ImageURL
	}
	if row.ImageModel != nil {
		values["mood_image_model"] = *row.ImageModel
	}
	if row.ImagePrompt != nil {
		values["mood_image_prompt"] = *row.ImagePrompt
	}
	return values
}

func (r *moodEntryRepo) ListByUser(dbc dbctx.Context, q ListQuery) ([]*types.MoodEntry, error) {
	var out []*types.MoodEntry
	if q.UserID == uuid.Nil {
		return out, nil
	}
	col := "mood_timestamp"
	if q.DateOnly {
		col = "entry_date"
	}
	tx := dbc.DB(r.db).Table(tableName).Where("user_id = ?", q.UserID)
	if q.Since != nil {
		tx = tx.Where(col+" >= ?", boundValue(*q.Since, q.DateOnly))
	}
	if q.Until != nil {
		tx = tx.Where(col+" <= ?", boundValue(*q.Until, q.DateOnly))
	}
	dir := "DESC"
	if q.Ascending {
		dir = "ASC"
	}
	// Several entries can share a day; created_at orders them when only the
	// date column exists.
	tx = tx.Order(strings.Join([]string{col, dir}, " ")).Order("created_at " + dir)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, db.ClassifyColumnError(err)
	}
	return out, nil
}

func boundValue(t time.Time, dateOnly bool) interface{} {
	if dateOnly {
		return datatypes.Date(t.UTC())
	}
	return t.UTC()
}

func (r *moodEntryRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if userID == uuid.Nil {
		return 0, nil
	}
	err := dbc.DB(r.db).Table(tableName).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
