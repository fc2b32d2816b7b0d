package entities

import (
	"encoding/json"
	"time"
)

type RegenStatus string

const (
	RegenStatusProcessing RegenStatus = "processing"
	RegenStatusReady      RegenStatus = "ready"
	RegenStatusCompleted  RegenStatus = "completed"
	RegenStatusFailed     RegenStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from the status.
func (s RegenStatus) IsTerminal() bool {
	return s == RegenStatusCompleted || s == RegenStatusFailed
}

// RegenRequest tracks one in-flight image-regeneration job for a
// (spread, slot) pair. Requests are never retried in place: a retry is a
// new row. Transitions: processing -> {ready, failed}; ready -> completed.
type RegenRequest struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"` // uuid
	SpreadID uint   `gorm:"index" json:"spread_id"`
	Slot     int    `gorm:"check:slot >= 1 AND slot <= 4" json:"slot"`

	Status        RegenStatus `gorm:"size:16;default:'processing';check:status IN ('processing','ready','completed','failed')" json:"status"`
	CandidateURLs string      `gorm:"type:text" json:"-"` // JSON array, up to four temporary URLs
	ChosenSlot    int         `json:"chosen_slot,omitempty"`
	ErrorMessage  string      `gorm:"type:text" json:"error_message,omitempty"`

	RequestedBy uint `gorm:"index" json:"requested_by"` // user id; 0 for operator-triggered requests

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (RegenRequest) TableName() string {
	return "regen_requests"
}

// Candidates decodes the candidate URL list. An empty column decodes to nil.
func (r *RegenRequest) Candidates() []string {
	if r.CandidateURLs == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(r.CandidateURLs), &urls); err != nil {
		return nil
	}
	return urls
}

// SetCandidates encodes the candidate URL list, truncating to four entries.
func (r *RegenRequest) SetCandidates(urls []string) error {
	if len(urls) > 4 {
		urls = urls[:4]
	}
	encoded, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	r.CandidateURLs = string(encoded)
	return nil
}
