// Package images provides database operations for per-user primary-image
// selection: which of a spread's four candidate slots the user sees as
// default artwork.
package images

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

var ErrInvalidSlot = errors.New("slot must be between 1 and 4")

// Repository handles all image-selection database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Select sets (or replaces) the user's primary-image slot for a spread.
func (r *Repository) Select(userID uint, spreadCode string, slot int) error {
	if slot < 1 || slot > 4 {
		return ErrInvalidSlot
	}

	var existing entities.ImageSelection
	err := r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&entities.ImageSelection{
			UserID:     userID,
			SpreadCode: spreadCode,
			Slot:       slot,
		}).Error
	}
	if err != nil {
		return err
	}

	existing.Slot = slot
	return r.db.Save(&existing).Error
}

// Clear removes the user's override, falling back to the spread default.
func (r *Repository) Clear(userID uint, spreadCode string) error {
	return r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).
		Delete(&entities.ImageSelection{}).Error
}

// Get returns the user's selected slot for a spread, or 0 when the user
// has no override.
func (r *Repository) Get(userID uint, spreadCode string) (int, error) {
	var selection entities.ImageSelection
	err := r.db.Where("user_id = ? AND spread_code = ?", userID, spreadCode).First(&selection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return selection.Slot, nil
}

// List returns all of the user's selections.
func (r *Repository) List(userID uint) ([]entities.ImageSelection, error) {
	var selections []entities.ImageSelection
	err := r.db.Where("user_id = ?", userID).Order("spread_code ASC").Find(&selections).Error
	return selections, err
}
