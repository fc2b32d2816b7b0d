// Package library provides database operations for per-user offline
// library membership.
package library

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

// Repository handles all offline-library database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add puts a spread into the user's offline library. Re-adding is a no-op.
func (r *Repository) Add(userID uint, spreadCode string) error {
	var existing entities.LibraryEntry
	err := r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(&entities.LibraryEntry{
		UserID:     userID,
		SpreadCode: spreadCode,
		AddedAt:    time.Now(),
	}).Error
}

// Remove drops a spread from the user's offline library.
func (r *Repository) Remove(userID uint, spreadCode string) error {
	return r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Delete(&entities.LibraryEntry{}).Error
}

// Contains reports whether the spread is in the user's library.
func (r *Repository) Contains(userID uint, spreadCode string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.LibraryEntry{}).
		Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's library entries, most recently added first.
func (r *Repository) List(userID uint, limit, offset int) ([]entities.LibraryEntry, int64, error) {
	var total int64
	if err := r.db.Model(&entities.LibraryEntry{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Where("user_id = ?", userID).Order("added_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []entities.LibraryEntry
	err := query.Find(&entries).Error
	return entries, total, err
}

// Count returns the size of the user's library.
func (r *Repository) Count(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.LibraryEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
