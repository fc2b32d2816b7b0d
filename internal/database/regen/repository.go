// Package regen tracks image-regeneration requests: one row per job for a
// (spread, slot) pair.
//
// The state machine is processing -> {ready, failed} and ready ->
// completed; completed and failed are terminal. Transitions are guarded
// conditional updates, so a stale caller gets ErrInvalidTransition rather
// than silently reviving a terminal row. The store deliberately does not
// deduplicate concurrent requests for the same (spread, slot); callers that
// want that guarantee check HasActive first.
package regen

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/database/images"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/entities"
)

var (
	ErrRequestNotFound   = errors.New("regeneration request not found")
	ErrInvalidTransition = errors.New("invalid regeneration status transition")
	ErrInvalidSlot       = errors.New("slot must be between 1 and 4")
	ErrNoCandidate       = errors.New("no candidate in chosen slot")
)

// Repository handles all regeneration request database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create opens a new regeneration request in processing state.
func (r *Repository) Create(spreadID uint, slot int, requestedBy uint) (*entities.RegenRequest, error) {
	if slot < 1 || slot > 4 {
		return nil, ErrInvalidSlot
	}

	request := &entities.RegenRequest{
		ID:          uuid.NewString(),
		SpreadID:    spreadID,
		Slot:        slot,
		Status:      entities.RegenStatusProcessing,
		RequestedBy: requestedBy,
	}
	if err := r.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create regeneration request: %w", err)
	}
	return request, nil
}

// Get loads a request by id.
func (r *Repository) Get(id string) (*entities.RegenRequest, error) {
	var request entities.RegenRequest
	err := r.db.Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// HasActive reports whether a non-terminal request exists for the
// (spread, slot) pair. The store never dedupes; this is the check clients
// run before Create when they want to avoid redundant concurrent jobs.
func (r *Repository) HasActive(spreadID uint, slot int) (bool, error) {
	var count int64
	err := r.db.Model(&entities.RegenRequest{}).
		Where("spread_id = ? AND slot = ? AND status IN ?", spreadID, slot,
			[]entities.RegenStatus{entities.RegenStatusProcessing, entities.RegenStatusReady}).
		Count(&count).Error
	return count > 0, err
}

// MarkReady stores the candidate URLs and moves processing -> ready.
func (r *Repository) MarkReady(id string, candidates []string) error {
	holder := entities.RegenRequest{}
	if err := holder.SetCandidates(candidates); err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}

	result := r.db.Model(&entities.RegenRequest{}).
		Where("id = ? AND status = ?", id, entities.RegenStatusProcessing).
		Updates(map[string]interface{}{
			"status":         entities.RegenStatusReady,
			"candidate_urls": holder.CandidateURLs,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CompleteSelection moves ready -> completed with the candidate slot the
// caller chose, and writes the artwork back in the same transaction: the
// chosen URL replaces the spread's regenerated slot, then either selectFor's
// primary-image override or, when selectFor is zero (the operator path), the
// spread-level default moves to that slot. Either everything lands or the
// request stays ready.
func (r *Repository) CompleteSelection(id string, chosenSlot int, selectFor uint) (string, error) {
	var chosenURL string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		request, url, err := complete(tx, id, chosenSlot)
		if err != nil {
			return err
		}
		chosenURL = url

		spreadRepo := spreads.NewRepository(tx)
		if err := spreadRepo.SetImage(request.SpreadID, request.Slot, url); err != nil {
			return err
		}
		if selectFor == 0 {
			return spreadRepo.SetPrimaryImage(request.SpreadID, request.Slot)
		}

		spread, err := spreadRepo.GetByID(request.SpreadID)
		if err != nil {
			return err
		}
		return images.NewRepository(tx).Select(selectFor, spread.Code, request.Slot)
	})
	if err != nil {
		return "", err
	}
	return chosenURL, nil
}

// complete is the guarded ready -> completed transition, run inside the
// CompleteSelection transaction.
func complete(tx *gorm.DB, id string, chosenSlot int) (*entities.RegenRequest, string, error) {
	var request entities.RegenRequest
	if err := tx.Where("id = ?", id).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRequestNotFound
		}
		return nil, "", err
	}

	candidates := request.Candidates()
	if chosenSlot < 1 || chosenSlot > len(candidates) {
		return nil, "", ErrNoCandidate
	}
	chosenURL := candidates[chosenSlot-1]

	now := time.Now()
	result := tx.Model(&entities.RegenRequest{}).
		Where("id = ? AND status = ?", id, entities.RegenStatusReady).
		Updates(map[string]interface{}{
			"status":       entities.RegenStatusCompleted,
			"chosen_slot":  chosenSlot,
			"completed_at": now,
		})
	if result.Error != nil {
		return nil, "", result.Error
	}
	if result.RowsAffected == 0 {
		return nil, "", ErrInvalidTransition
	}
	return &request, chosenURL, nil
}

// Fail moves processing -> failed, recording the worker's error. Failed
// requests are not retried; a retry is a new request.
func (r *Repository) Fail(id string, message string) error {
	now := time.Now()
	result := r.db.Model(&entities.RegenRequest{}).
		Where("id = ? AND status = ?", id, entities.RegenStatusProcessing).
		Updates(map[string]interface{}{
			"status":        entities.RegenStatusFailed,
			"error_message": message,
			"completed_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// ExpireStale fails processing requests older than cutoff. Run by the
// maintenance scheduler so abandoned jobs do not sit in processing forever.
func (r *Repository) ExpireStale(cutoff time.Time) (int64, error) {
	now := time.Now()
	result := r.db.Model(&entities.RegenRequest{}).
		Where("status = ? AND created_at < ?", entities.RegenStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":        entities.RegenStatusFailed,
			"error_message": "expired: no worker result",
			"completed_at":  now,
		})
	return result.RowsAffected, result.Error
}

// ListForSpread returns all requests for a spread, newest first.
func (r *Repository) ListForSpread(spreadID uint) ([]entities.RegenRequest, error) {
	var requests []entities.RegenRequest
	err := r.db.Where("spread_id = ?", spreadID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
