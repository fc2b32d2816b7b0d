// Package spreads provides database operations for spread content: the
// passage text, paraphrase and artwork fields mutated as generation stages
// complete, plus the completed-spreads read projection.
package spreads

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

var ErrSpreadNotFound = errors.New("spread not found")

// Repository handles all spread content database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByCode loads a spread with its stages and images.
func (r *Repository) GetByCode(code string) (*entities.Spread, error) {
	var spread entities.Spread
	err := r.db.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot ASC")
		}).
		Where("code = ?", code).First(&spread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpreadNotFound
		}
		return nil, err
	}
	return &spread, nil
}

// GetByID loads a spread with its stages and images.
func (r *Repository) GetByID(id uint) (*entities.Spread, error) {
	var spread entities.Spread
	err := r.db.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot ASC")
		}).
		First(&spread, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpreadNotFound
		}
		return nil, err
	}
	return &spread, nil
}

// ContentUpdate carries the fields a generation stage may write. Nil fields
// are left untouched; the store does not validate content beyond that --
// the worker validates before marking a stage done.
type ContentUpdate struct {
	PassageText    *string
	PassageContext *string
	KeyVerseText   *string
	KeyVerseRef    *string
	ModernText     *string
	Paraphrase     *string
	Mood           *entities.Mood
	ImagePrompt    *string
	ImageStyle     *string
}

// UpdateContent applies a field-by-field content update to a spread.
func (r *Repository) UpdateContent(spreadID uint, update ContentUpdate) error {
	values := map[string]interface{}{}
	if update.PassageText != nil {
		values["passage_text"] = *update.PassageText
	}
	if update.PassageContext != nil {
		values["passage_context"] = *update.PassageContext
	}
	if update.KeyVerseText != nil {
		values["key_verse_text"] = *update.KeyVerseText
	}
	if update.KeyVerseRef != nil {
		values["key_verse_ref"] = *update.KeyVerseRef
	}
	if update.ModernText != nil {
		values["modern_text"] = *update.ModernText
	}
	if update.Paraphrase != nil {
		values["paraphrase"] = *update.Paraphrase
	}
	if update.Mood != nil {
		values["mood"] = *update.Mood
	}
	if update.ImagePrompt != nil {
		values["image_prompt"] = *update.ImagePrompt
	}
	if update.ImageStyle != nil {
		values["image_style"] = *update.ImageStyle
	}
	if len(values) == 0 {
		return nil
	}

	result := r.db.Model(&entities.Spread{}).Where("id = ?", spreadID).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSpreadNotFound
	}
	return nil
}

// SetImage upserts a candidate image into one of the spread's four slots.
func (r *Repository) SetImage(spreadID uint, slot int, url string) error {
	if slot < 1 || slot > 4 {
		return errors.New("slot must be between 1 and 4")
	}

	var image entities.SpreadImage
	err := r.db.Where("spread_id = ? AND slot = ?", spreadID, slot).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		image = entities.SpreadImage{SpreadID: spreadID, Slot: slot, URL: url}
		return r.db.Create(&image).Error
	}
	if err != nil {
		return err
	}

	image.URL = url
	return r.db.Save(&image).Error
}

// SetPrimaryImage marks one slot as the spread-level default image,
// clearing the flag on the other slots.
func (r *Repository) SetPrimaryImage(spreadID uint, slot int) error {
	if slot < 1 || slot > 4 {
		return errors.New("slot must be between 1 and 4")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.SpreadImage{}).
			Where("spread_id = ?", spreadID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		result := tx.Model(&entities.SpreadImage{}).
			Where("spread_id = ? AND slot = ?", spreadID, slot).
			Update("is_primary", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("no image in slot")
		}
		return nil
	})
}

// ListCompleted returns spreads where all four stages are done, canonical
// order, with pagination. This is the publishable-content read contract.
func (r *Repository) ListCompleted(limit, offset int) ([]entities.Spread, int64, error) {
	base := r.db.Model(&entities.Spread{}).
		Where(`NOT EXISTS (
			SELECT 1 FROM spread_stages
			WHERE spread_stages.spread_id = spreads.id
			  AND spread_stages.state <> ?)`, entities.StageStateDone)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot ASC")
		}).
		Where(`NOT EXISTS (
			SELECT 1 FROM spread_stages
			WHERE spread_stages.spread_id = spreads.id
			  AND spread_stages.state <> ?)`, entities.StageStateDone).
		Order("book_order ASC, chapter ASC, verse_from ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var result []entities.Spread
	err := query.Find(&result).Error
	return result, total, err
}

// ListByBook returns every spread of one book in canonical order.
func (r *Repository) ListByBook(bookOrder int) ([]entities.Spread, error) {
	var result []entities.Spread
	err := r.db.Where("book_order = ?", bookOrder).
		Order("chapter ASC, verse_from ASC").
		Find(&result).Error
	return result, err
}

// Count returns the total number of catalogued spreads.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Spread{}).Count(&count).Error
	return count, err
}
