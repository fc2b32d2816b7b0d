// Package readmarks provides database operations for per-user read status.
package readmarks

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

// Repository handles all read-mark database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// MarkRead records that the user read the spread. Re-marking refreshes the
// read timestamp.
func (r *Repository) MarkRead(userID uint, spreadCode string) error {
	var existing entities.ReadMark
	err := r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&entities.ReadMark{
			UserID:     userID,
			SpreadCode: spreadCode,
			ReadAt:     time.Now(),
		}).Error
	}
	if err != nil {
		return err
	}

	existing.ReadAt = time.Now()
	return r.db.Save(&existing).Error
}

// MarkUnread removes the user's read mark for a spread.
func (r *Repository) MarkUnread(userID uint, spreadCode string) error {
	return r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Delete(&entities.ReadMark{}).Error
}

// IsRead reports whether the user has read the spread.
func (r *Repository) IsRead(userID uint, spreadCode string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.ReadMark{}).
		Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's read marks, most recent first.
func (r *Repository) List(userID uint, limit, offset int) ([]entities.ReadMark, int64, error) {
	var total int64
	if err := r.db.Model(&entities.ReadMark{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Where("user_id = ?", userID).Order("read_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var marks []entities.ReadMark
	err := query.Find(&marks).Error
	return marks, total, err
}

// Count returns how many spreads the user has read.
func (r *Repository) Count(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadMark{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
