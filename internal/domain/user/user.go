package user

import (
	"time"

	"github.com/google/uuid"
)

// User is one identity of the fixed roster shown on the login screen.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;column:username" json:"username" yaml:"username"`
	DisplayName string    `gorm:"not null;column:display_name" json:"display_name" yaml:"display_name"`
	Emoji       string    `gorm:"column:emoji" json:"emoji" yaml:"emoji"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"-"`
}

func (User) TableName() string { return "users" }
