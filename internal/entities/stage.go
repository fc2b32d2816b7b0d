package entities

import (
	"time"
)

// StageName identifies one of the four sequential generation steps.
type StageName string

const (
	StageOutline   StageName = "outline"
	StageScripture StageName = "scripture"
	StageText      StageName = "text"
	StageImage     StageName = "image"
)

// StageOrder lists the stages in pipeline order. A stage may only advance
// once its predecessor is done.
func StageOrder() []StageName {
	return []StageName{StageOutline, StageScripture, StageText, StageImage}
}

// Position returns the zero-based pipeline position of the stage, or -1 for
// an unknown name.
func (s StageName) Position() int {
	for i, name := range StageOrder() {
		if s == name {
			return i
		}
	}
	return -1
}

// IsValid checks if a stage name is one of the four pipeline stages.
func (s StageName) IsValid() bool {
	return s.Position() >= 0
}

type StageState string

const (
	StageStatePending    StageState = "pending"
	StageStateInProgress StageState = "in_progress" // claimed by a worker, lease-bounded
	StageStateDone       StageState = "done"
	StageStateError      StageState = "error"
)

// SpreadStage is the tracked state of one generation stage for one spread.
// One row per (spread, stage); replaces the status-column-per-stage layout
// so the pipeline can grow without schema churn.
type SpreadStage struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	SpreadID uint      `gorm:"index;uniqueIndex:idx_spread_stage" json:"spread_id"`
	Name     StageName `gorm:"size:16;uniqueIndex:idx_spread_stage" json:"name"`
	Position int       `json:"position"` // 0-3, pipeline order

	State        StageState `gorm:"size:16;default:'pending';check:state IN ('pending','in_progress','done','error')" json:"state"`
	RetryCount   int        `gorm:"default:0" json:"retry_count"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`

	// Claim lease. Set on pending -> in_progress; cleared when the stage
	// advances or the lease lapses.
	ClaimedBy      string     `gorm:"size:64" json:"claimed_by,omitempty"`
	ClaimExpiresAt *time.Time `json:"claim_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SpreadStage) TableName() string {
	return "spread_stages"
}
