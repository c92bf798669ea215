package models

import (
	"math"
	"time"
)

// Version is one immutable snapshot of generated content belonging to exactly
// one Artifact. No field is ever mutated after creation; history listings omit
// Content.
type Version struct {
	ID              string    `json:"id" db:"id"`
	ArtifactID      string    `json:"artifact_id" db:"artifact_id"`
	Content         string    `json:"content,omitempty" db:"content"`
	Instruction     string    `json:"instruction" db:"instruction"`
	EditInstruction *string   `json:"edit_instruction,omitempty" db:"edit_instruction"`
	ContentType     string    `json:"content_type" db:"content_type"`
	VersionNumber   float64   `json:"version_number" db:"version_number"`
	IsInitial       bool      `json:"is_initial" db:"is_initial"`
	ParentVersionID *string   `json:"parent_version_id,omitempty" db:"parent_version_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// InitialVersionNumber is the version number of the first Version of any
// artifact, including forks (forks start a new lineage).
const InitialVersionNumber = 1.0

// NextVersionNumber computes the version number for a new Version derived
// from a parent. A minor edit advances by 0.1; a major edit rounds up to the
// next whole number, discarding fractional progress.
//
// Ten minor edits from 1.0 reach 1.9, and one more produces 2.0, which is
// visually identical to a major jump. That ambiguity is intentional.
func NextVersionNumber(parent float64, major bool) float64 {
	if major {
		return math.Floor(parent) + 1
	}
	return math.Round(parent*10+1) / 10
}
