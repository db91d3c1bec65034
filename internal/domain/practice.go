package domain

import (
	"time"

	"github.com/google/uuid"
)

type Mood string

const (
	MoodCalm      Mood = "calm"
	MoodEnergized Mood = "energized"
	MoodFocused   Mood = "focused"
	MoodTired     Mood = "tired"
	MoodStressed  Mood = "stressed"
)

// PracticeSession is one completed cold exposure. It is immutable after
// insert; PersonalBest is decided once, against the owner's earlier sessions.
type PracticeSession struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Duration     int       `json:"duration" db:"duration_seconds"`
	Temperature  *float64  `json:"temperature,omitempty" db:"temperature"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	Mood         *Mood     `json:"mood,omitempty" db:"mood"`
	PauseCount   int       `json:"pause_count" db:"pause_count"`
	PersonalBest bool      `json:"personal_best" db:"personal_best"`
	CompletedAt  time.Time `json:"completed_at" db:"completed_at"`
}
