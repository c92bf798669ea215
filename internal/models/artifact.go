package models

import (
	"time"
)

// Artifact represents one user-owned generated site: its current state,
// metadata, and aggregate counters. Version history lives in artifact_versions.
type Artifact struct {
	ID               string    `json:"id" db:"id"`
	OwnerID          string    `json:"owner_id" db:"owner_id"`
	DisplayName      string    `json:"display_name" db:"display_name"`
	Description      string    `json:"description" db:"description"`
	Tags             []string  `json:"tags" db:"-"` // Stored as JSON string in DB
	ContentType      string    `json:"content_type" db:"content_type"`
	Visibility       string    `json:"visibility" db:"visibility"`
	Thumbnail        string    `json:"thumbnail,omitempty" db:"thumbnail"`
	LatestVersionID  string    `json:"latest_version_id" db:"latest_version_id"`
	VersionCount     int       `json:"version_count" db:"version_count"`
	EditCount        int       `json:"edit_count" db:"edit_count"`
	ViewCount        int64     `json:"view_count" db:"view_count"`
	ForkCount        int64     `json:"fork_count" db:"fork_count"`
	IsFork           bool      `json:"is_fork" db:"is_fork"`
	OriginArtifactID string    `json:"origin_artifact_id,omitempty" db:"origin_artifact_id"`
	OriginOwnerID    string    `json:"origin_owner_id,omitempty" db:"origin_owner_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Visibility values
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// ValidVisibilities defines allowed artifact visibilities
var ValidVisibilities = map[string]bool{
	VisibilityPrivate: true,
	VisibilityPublic:  true,
}

// ValidContentTypes defines allowed content type hints for generation
var ValidContentTypes = map[string]bool{
	"landing":   true,
	"portfolio": true,
	"blog":      true,
	"ecommerce": true,
	"dashboard": true,
	"general":   true,
}

// ArtifactFilter narrows a listing. The API layer resolves defaults before
// building a filter: when neither OwnerID nor PublicOnly is supplied,
// PublicOnly is forced so private artifacts never leak through an unscoped list.
type ArtifactFilter struct {
	OwnerID     string
	PublicOnly  bool
	ContentType string
	Tags        []string
	Limit       int
}
