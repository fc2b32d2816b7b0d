// Package pipeline tracks per-spread generation stage state and selects
// work for generation workers.
//
// Stages advance pending -> done or pending -> error; a claim step
// (pending -> in_progress, lease-bounded) lets concurrent workers pick
// work without double-processing. The store records outcomes and retry
// counts only; whether to reset an errored stage is the caller's policy.
package pipeline

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

// DefaultBatchSize bounds the pending-work view so external worker
// concurrency stays bounded.
const DefaultBatchSize = 5

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrNotClaimable  = errors.New("stage is not claimable")
	ErrBadTransition = errors.New("illegal stage transition")
)

// WorkItem is one entry of the pending-work view: a spread together with
// the next stage awaiting generation.
type WorkItem struct {
	Spread    entities.Spread      `json:"spread"`
	Stage     entities.SpreadStage `json:"stage"`
	NextStage entities.StageName   `json:"next_stage"`
}

// ErrorItem is one entry of the triage view.
type ErrorItem struct {
	Spread entities.Spread      `json:"spread"`
	Stage  entities.SpreadStage `json:"stage"`
}

// Repository handles all pipeline stage database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NextWorkItems returns up to batch spreads whose next stage is ready for
// generation: the stage is pending and its predecessor (if any) is done.
// Results follow canonical order (testament/book, chapter, verse). A batch
// of zero or less falls back to DefaultBatchSize.
func (r *Repository) NextWorkItems(batch int) ([]WorkItem, error) {
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	var stages []entities.SpreadStage
	err := r.db.
		Joins("JOIN spreads ON spreads.id = spread_stages.spread_id").
		Where("spread_stages.state = ?", entities.StageStatePending).
		Where(`spread_stages.position = 0 OR EXISTS (
			SELECT 1 FROM spread_stages prev
			WHERE prev.spread_id = spread_stages.spread_id
			  AND prev.position = spread_stages.position - 1
			  AND prev.state = ?)`, entities.StageStateDone).
		Where(`NOT EXISTS (
			SELECT 1 FROM spread_stages earlier
			WHERE earlier.spread_id = spread_stages.spread_id
			  AND earlier.position < spread_stages.position
			  AND earlier.state <> ?)`, entities.StageStateDone).
		Order("spreads.book_order ASC, spreads.chapter ASC, spreads.verse_from ASC").
		Limit(batch).
		Find(&stages).Error
	if err != nil {
		return nil, err
	}

	items := make([]WorkItem, 0, len(stages))
	for _, stage := range stages {
		var spread entities.Spread
		if err := r.db.First(&spread, stage.SpreadID).Error; err != nil {
			return nil, err
		}
		items = append(items, WorkItem{Spread: spread, Stage: stage, NextStage: stage.Name})
	}
	return items, nil
}

// Claim transitions a stage from pending to in_progress for the given
// worker, holding a lease of ttl. Returns ErrNotClaimable when the stage
// was already claimed, advanced, or errored by the time of the update.
func (r *Repository) Claim(stageID uint, workerID string, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	result := r.db.Model(&entities.SpreadStage{}).
		Where("id = ? AND state = ?", stageID, entities.StageStatePending).
		Updates(map[string]interface{}{
			"state":            entities.StageStateInProgress,
			"claimed_by":       workerID,
			"claim_expires_at": expires,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotClaimable
	}
	return nil
}

// MarkDone advances a stage to done. Accepted from in_progress (the claimed
// path) and from pending, for external workers that do not claim.
func (r *Repository) MarkDone(stageID uint) error {
	result := r.db.Model(&entities.SpreadStage{}).
		Where("id = ? AND state IN ?", stageID,
			[]entities.StageState{entities.StageStatePending, entities.StageStateInProgress}).
		Updates(map[string]interface{}{
			"state":            entities.StageStateDone,
			"error_message":    "",
			"claimed_by":       "",
			"claim_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBadTransition
	}
	return nil
}

// MarkError records a stage failure: state becomes error, the message is
// stored and the retry counter incremented.
func (r *Repository) MarkError(stageID uint, message string) error {
	result := r.db.Model(&entities.SpreadStage{}).
		Where("id = ? AND state IN ?", stageID,
			[]entities.StageState{entities.StageStatePending, entities.StageStateInProgress}).
		Updates(map[string]interface{}{
			"state":            entities.StageStateError,
			"error_message":    message,
			"retry_count":      gorm.Expr("retry_count + 1"),
			"claimed_by":       "",
			"claim_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBadTransition
	}
	return nil
}

// ResetError moves an errored stage back to pending. The retry counter is
// kept; callers decide whether the count warrants another attempt.
func (r *Repository) ResetError(stageID uint) error {
	result := r.db.Model(&entities.SpreadStage{}).
		Where("id = ? AND state = ?", stageID, entities.StageStateError).
		Update("state", entities.StageStatePending)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBadTransition
	}
	return nil
}

// ReleaseExpiredClaims returns in_progress stages with a lapsed lease back
// to pending, so work abandoned by a crashed worker becomes claimable.
// Returns the number of released stages.
func (r *Repository) ReleaseExpiredClaims(now time.Time) (int64, error) {
	result := r.db.Model(&entities.SpreadStage{}).
		Where("state = ? AND claim_expires_at IS NOT NULL AND claim_expires_at < ?",
			entities.StageStateInProgress, now).
		Updates(map[string]interface{}{
			"state":            entities.StageStatePending,
			"claimed_by":       "",
			"claim_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}

// ErrorSet returns every (spread, stage) pair currently in error, canonical
// order, for operator triage.
func (r *Repository) ErrorSet() ([]ErrorItem, error) {
	var stages []entities.SpreadStage
	err := r.db.
		Joins("JOIN spreads ON spreads.id = spread_stages.spread_id").
		Where("spread_stages.state = ?", entities.StageStateError).
		Order("spreads.book_order ASC, spreads.chapter ASC, spreads.verse_from ASC, spread_stages.position ASC").
		Find(&stages).Error
	if err != nil {
		return nil, err
	}

	items := make([]ErrorItem, 0, len(stages))
	for _, stage := range stages {
		var spread entities.Spread
		if err := r.db.First(&spread, stage.SpreadID).Error; err != nil {
			return nil, err
		}
		items = append(items, ErrorItem{Spread: spread, Stage: stage})
	}
	return items, nil
}

// GetStage loads one stage row by spread code and stage name.
func (r *Repository) GetStage(spreadCode string, name entities.StageName) (*entities.SpreadStage, error) {
	var stage entities.SpreadStage
	err := r.db.
		Joins("JOIN spreads ON spreads.id = spread_stages.spread_id").
		Where("spreads.code = ? AND spread_stages.name = ?", spreadCode, name).
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// StagesForSpread returns the spread's stage rows in pipeline order.
func (r *Repository) StagesForSpread(spreadID uint) ([]entities.SpreadStage, error) {
	var stages []entities.SpreadStage
	err := r.db.Where("spread_id = ?", spreadID).Order("position ASC").Find(&stages).Error
	return stages, err
}

// Stats counts stages per state across the catalog.
func (r *Repository) Stats() (map[entities.StageState]int64, error) {
	type row struct {
		State entities.StageState
		Count int64
	}
	var rows []row
	err := r.db.Model(&entities.SpreadStage{}).
		Select("state, COUNT(*) as count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := make(map[entities.StageState]int64, len(rows))
	for _, item := range rows {
		stats[item.State] = item.Count
	}
	return stats, nil
}
