package entities

import (
	"time"

	"gorm.io/gorm"
)

// User is a reader-application account. Identity comes from the external
// auth provider; we keep its subject id plus an API token for the store
// boundary. Every user-scoped row cascades on account removal.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ExternalID  string         `gorm:"uniqueIndex;size:36" json:"external_id"` // auth provider subject
	Email       string         `gorm:"uniqueIndex;size:255" json:"email"`
	DisplayName string         `gorm:"size:100" json:"display_name,omitempty"`
	IsAdmin     bool           `gorm:"default:false" json:"is_admin"`
	Token       string         `gorm:"uniqueIndex;size:64" json:"-"` // API token, hidden from JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Favorite marks a spread as favorited by a user.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;uniqueIndex:idx_fav_user_code" json:"user_id"`
	SpreadCode string    `gorm:"size:16;uniqueIndex:idx_fav_user_code" json:"spread_code"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReadMark records that a user has read a spread.
type ReadMark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;uniqueIndex:idx_read_user_code" json:"user_id"`
	SpreadCode string    `gorm:"size:16;uniqueIndex:idx_read_user_code" json:"spread_code"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ReadAt     time.Time `json:"read_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImageSelection is a user's primary-image override for a spread: which of
// the four slots that user sees as the default artwork.
type ImageSelection struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;uniqueIndex:idx_sel_user_code" json:"user_id"`
	SpreadCode string    `gorm:"size:16;uniqueIndex:idx_sel_user_code" json:"spread_code"`
	Slot       int       `gorm:"check:slot >= 1 AND slot <= 4" json:"slot"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LibraryEntry is a spread saved to a user's offline library.
type LibraryEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;uniqueIndex:idx_lib_user_code" json:"user_id"`
	SpreadCode string    `gorm:"size:16;uniqueIndex:idx_lib_user_code" json:"spread_code"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AddedAt    time.Time `json:"added_at"`
}

func (User) TableName() string {
	return "users"
}

func (Favorite) TableName() string {
	return "favorites"
}

func (ReadMark) TableName() string {
	return "read_marks"
}

func (ImageSelection) TableName() string {
	return "image_selections"
}

func (LibraryEntry) TableName() string {
	return "library_entries"
}
