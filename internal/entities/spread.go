package entities

import (
	"time"
)

type Testament string

const (
	TestamentOld Testament = "old"
	TestamentNew Testament = "new"
)

// Mood classifies the emotional register of a spread, used to steer
// artwork generation.
type Mood string

const (
	MoodPeaceful   Mood = "peaceful"
	MoodHopeful    Mood = "hopeful"
	MoodReflective Mood = "reflective"
	MoodJoyful     Mood = "joyful"
	MoodSolemn     Mood = "solemn"
	MoodTriumphant Mood = "triumphant"
)

// ValidMoods returns all allowed mood categories.
func ValidMoods() []Mood {
	return []Mood{MoodPeaceful, MoodHopeful, MoodReflective, MoodJoyful, MoodSolemn, MoodTriumphant}
}

// IsValid checks if a mood is one of the six allowed categories.
func (m Mood) IsValid() bool {
	for _, valid := range ValidMoods() {
		if m == valid {
			return true
		}
	}
	return false
}

// Spread is one catalogued Bible passage-unit. A spread is created once at
// catalog-seeding time and mutated field-by-field as generation stages
// complete; it is never deleted in normal operation.
type Spread struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:16" json:"code"` // e.g. "GEN-001"
	Testament Testament `gorm:"size:8;check:testament IN ('old','new')" json:"testament"`
	Book      string    `gorm:"index;size:32" json:"book"`
	BookOrder int       `gorm:"index" json:"book_order"` // canonical position, 1-66
	Chapter   int       `json:"chapter"`
	VerseFrom int       `json:"verse_from"`
	Chapter2  int       `json:"chapter_end,omitempty"` // end of range; equals Chapter for single-chapter spreads
	VerseTo   int       `json:"verse_to"`

	// Passage text is held in two translations: the output translation shown
	// to readers and the internal translation used as generation context.
	PassageText    string `gorm:"type:text" json:"passage_text,omitempty"`
	PassageContext string `gorm:"type:text" json:"-"`
	KeyVerseText   string `gorm:"type:text" json:"key_verse_text,omitempty"`
	KeyVerseRef    string `gorm:"size:64" json:"key_verse_ref,omitempty"`
	ModernText     string `gorm:"type:text" json:"-"` // modern-English rendering, generation context only

	Paraphrase  string `gorm:"type:text" json:"paraphrase,omitempty"`
	Mood        Mood   `gorm:"size:16;check:mood IN ('','peaceful','hopeful','reflective','joyful','solemn','triumphant')" json:"mood,omitempty"`
	ImagePrompt string `gorm:"type:text" json:"image_prompt,omitempty"`
	ImageStyle  string `gorm:"size:128" json:"image_style,omitempty"`

	Stages []SpreadStage `gorm:"foreignKey:SpreadID;constraint:OnDelete:CASCADE" json:"stages,omitempty"`
	Images []SpreadImage `gorm:"foreignKey:SpreadID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SpreadImage is one candidate-image slot for a spread, slot 1-4.
// IsPrimary marks the spread-level default; per-user overrides live in
// ImageSelection.
type SpreadImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SpreadID  uint      `gorm:"index;uniqueIndex:idx_spread_slot" json:"spread_id"`
	Slot      int       `gorm:"uniqueIndex:idx_spread_slot;check:slot >= 1 AND slot <= 4" json:"slot"`
	URL       string    `gorm:"size:2048" json:"url"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Spread) TableName() string {
	return "spreads"
}

func (SpreadImage) TableName() string {
	return "spread_images"
}
