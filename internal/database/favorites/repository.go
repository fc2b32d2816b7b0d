// Package favorites provides database operations for per-user spread
// favorites. Every query is scoped to the owning user; cross-user reads go
// through the access guard's admin path instead.
package favorites

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add marks a spread as favorite for the user. Adding an existing favorite
// is a no-op.
func (r *Repository) Add(userID uint, spreadCode string) error {
	var existing entities.Favorite
	err := r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(&entities.Favorite{
		UserID:     userID,
		SpreadCode: spreadCode,
	}).Error
}

// Remove deletes the user's favorite for a spread.
func (r *Repository) Remove(userID uint, spreadCode string) error {
	return r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Delete(&entities.Favorite{}).Error
}

// IsFavorite reports whether the user favorited the spread.
func (r *Repository) IsFavorite(userID uint, spreadCode string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's favorites with pagination, newest first.
func (r *Repository) List(userID uint, limit, offset int) ([]entities.Favorite, int64, error) {
	var total int64
	if err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var favorites []entities.Favorite
	err := query.Find(&favorites).Error
	return favorites, total, err
}

// Count returns the user's favorite count.
func (r *Repository) Count(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
