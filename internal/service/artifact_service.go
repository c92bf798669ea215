package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/cache"
	"github.com/site-generator-api/internal/models"
	"github.com/site-generator-api/internal/repository"
)

// artifactService is the concrete implementation of ArtifactService
type artifactService struct {
	artifacts repository.ArtifactRepository
	versions  repository.VersionRepository
	users     repository.UserRepository
	cache     *cache.ContentCache
	log       zerolog.Logger
}

// newArtifactService creates a new ArtifactService
func newArtifactService(repos *repository.Repositories, contentCache *cache.ContentCache, log zerolog.Logger) *artifactService {
	return &artifactService{
		artifacts: repos.Artifact,
		versions:  repos.Version,
		users:     repos.User,
		cache:     contentCache,
		log:       log.With().Str("service", "artifact").Logger(),
	}
}

// Create generates content for the instruction and persists a new artifact
// with its initial version. Nothing is written if validation or generation
// fails.
func (s *artifactService) Create(ctx context.Context, req *models.CreateArtifactRequest) (*models.ArtifactWithVersion, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return nil, &ValidationError{Field: "instruction", Message: "instruction is required"}
	}

	exists, err := s.users.Exists(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("checking owner: %w", err)
	}
	if !exists {
		return nil, &ValidationError{Field: "owner_id", Message: "owner does not resolve to a known user"}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "general"
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = "Untitled Site"
	}

	content, err := s.cache.GetOrGenerate(ctx, instruction, contentType)
	if err != nil {
		return nil, wrapGeneration(err)
	}

	now := time.Now()
	version := &models.Version{
		ID:            uuid.New().String(),
		ArtifactID:    uuid.New().String(),
		Content:       content,
		Instruction:   instruction,
		ContentType:   contentType,
		VersionNumber: models.InitialVersionNumber,
		IsInitial:     true,
		CreatedAt:     now,
	}
	artifact := &models.Artifact{
		ID:              version.ArtifactID,
		OwnerID:         req.OwnerID,
		DisplayName:     displayName,
		Description:     req.Description,
		Tags:            req.Tags,
		ContentType:     contentType,
		Visibility:      visibility,
		LatestVersionID: version.ID,
		VersionCount:    1,
		EditCount:       0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.artifacts.CreateWithVersion(ctx, artifact, version); err != nil {
		return nil, fmt.Errorf("persisting artifact: %w", err)
	}

	s.log.Info().
		Str("artifact_id", artifact.ID).
		Str("owner_id", artifact.OwnerID).
		Str("content_type", contentType).
		Msg("Artifact created")

	return &models.ArtifactWithVersion{Artifact: artifact, Version: version}, nil
}

// Edit appends a new version generated from the latest content plus the edit
// instruction, then repoints the artifact. Concurrent edits race on the
// latest pointer; the last writer wins and every version is retained.
func (s *artifactService) Edit(ctx context.Context, artifactID, requesterID string, req *models.EditArtifactRequest) (*models.ArtifactWithVersion, error) {
	editInstruction := strings.TrimSpace(req.EditInstruction)
	if editInstruction == "" {
		return nil, &ValidationError{Field: "edit_instruction", Message: "edit_instruction is required"}
	}

	artifact, err := s.artifacts.GetByID(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return nil, ErrNotFound
	}
	if !canModify(requesterID, artifact) {
		return nil, ErrAccessDenied
	}

	latest, err := s.versions.GetByID(ctx, artifact.LatestVersionID)
	if err != nil {
		return nil, fmt.Errorf("loading latest version: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("artifact %s latest version %s is missing", artifactID, artifact.LatestVersionID)
	}

	// The generator edits in context rather than starting over
	combined := buildEditInstruction(latest.Instruction, editInstruction, latest.Content)

	content, err := s.cache.GetOrGenerate(ctx, combined, latest.ContentType)
	if err != nil {
		return nil, wrapGeneration(err)
	}

	version := &models.Version{
		ID:              uuid.New().String(),
		ArtifactID:      artifact.ID,
		Content:         content,
		Instruction:     latest.Instruction,
		EditInstruction: &editInstruction,
		ContentType:     latest.ContentType,
		VersionNumber:   models.NextVersionNumber(latest.VersionNumber, req.IsMajorEdit),
		IsInitial:       false,
		ParentVersionID: &latest.ID,
		CreatedAt:       time.Now(),
	}

	if err := s.artifacts.AppendVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("appending version: %w", err)
	}

	updated, err := s.artifacts.GetByID(ctx, artifact.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading artifact: %w", err)
	}

	s.log.Info().
		Str("artifact_id", artifact.ID).
		Float64("version_number", version.VersionNumber).
		Bool("major", req.IsMajorEdit).
		Msg("Artifact edited")

	return &models.ArtifactWithVersion{Artifact: updated, Version: version}, nil
}

// UpdateMetadata mutates display metadata only; version history and counters
// are untouched
func (s *artifactService) UpdateMetadata(ctx context.Context, artifactID, requesterID string, req *models.UpdateMetadataRequest) (*models.Artifact, error) {
	artifact, err := s.artifacts.GetByID(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return nil, ErrNotFound
	}
	if !canModify(requesterID, artifact) {
		return nil, ErrAccessDenied
	}

	if req.Visibility != nil && !models.ValidVisibilities[*req.Visibility] {
		return nil, &ValidationError{Field: "visibility", Message: "visibility must be private or public"}
	}

	if err := s.artifacts.UpdateMetadata(ctx, artifactID, req); err != nil {
		return nil, fmt.Errorf("updating metadata: %w", err)
	}

	return s.artifacts.GetByID(ctx, artifactID)
}

// Delete removes the artifact and cascades to every version it owns
func (s *artifactService) Delete(ctx context.Context, artifactID, requesterID string) error {
	artifact, err := s.artifacts.GetByID(ctx, artifactID)
	if err != nil {
		return fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return ErrNotFound
	}
	if !canModify(requesterID, artifact) {
		return ErrAccessDenied
	}

	if err := s.artifacts.Delete(ctx, artifactID); err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}

	s.log.Info().
		Str("artifact_id", artifactID).
		Int("version_count", artifact.VersionCount).
		Msg("Artifact deleted")

	return nil
}

// Get returns the artifact with its latest version and counts the view.
// Private artifacts are invisible to non-owners.
func (s *artifactService) Get(ctx context.Context, artifactID, requesterID string, includeContent bool) (*models.ArtifactWithVersion, error) {
	artifact, err := s.artifacts.GetByID(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return nil, ErrNotFound
	}
	if !canView(requesterID, artifact) {
		return nil, ErrAccessDenied
	}

	version, err := s.versions.GetByID(ctx, artifact.LatestVersionID)
	if err != nil {
		return nil, fmt.Errorf("loading latest version: %w", err)
	}
	if version != nil && !includeContent {
		version.Content = ""
	}

	// View counting is monotonic and best-effort; a failed bump never fails
	// the read
	if err := s.artifacts.IncrementViewCount(ctx, artifactID); err != nil {
		s.log.Warn().Err(err).Str("artifact_id", artifactID).Msg("Failed to bump view count")
	} else {
		artifact.ViewCount++
	}

	return &models.ArtifactWithVersion{Artifact: artifact, Version: version}, nil
}

// GetVersion returns one historical version, subject to the owning artifact's
// visibility rule
func (s *artifactService) GetVersion(ctx context.Context, artifactID, versionID, requesterID string) (*models.Version, error) {
	artifact, err := s.artifacts.GetByID(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return nil, ErrNotFound
	}
	if !canView(requesterID, artifact) {
		return nil, ErrAccessDenied
	}

	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("loading version: %w", err)
	}
	if version == nil || version.ArtifactID != artifact.ID {
		return nil, ErrNotFound
	}
	return version, nil
}

// List returns artifacts matching the filter, newest updated first. Callers
// resolve the public-only default before building the filter.
func (s *artifactService) List(ctx context.Context, filter models.ArtifactFilter) ([]*models.Artifact, error) {
	if filter.OwnerID == "" && !filter.PublicOnly {
		// Unscoped listings never leak private artifacts
		filter.PublicOnly = true
	}
	return s.artifacts.List(ctx, filter)
}

// ListVersions returns the version history metadata, newest first, under the
// same visibility rule as Get
func (s *artifactService) ListVersions(ctx context.Context, artifactID, requesterID string) (*models.VersionHistory, error) {
	artifact, err := s.artifacts.GetByID(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return nil, ErrNotFound
	}
	if !canView(requesterID, artifact) {
		return nil, ErrAccessDenied
	}

	versions, err := s.versions.ListByArtifact(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	return &models.VersionHistory{Artifact: artifact, Versions: versions}, nil
}

// buildEditInstruction combines the lineage's original instruction, the
// requested change, and the current markup into one generation prompt
func buildEditInstruction(instruction, editInstruction, content string) string {
	var b strings.Builder
	b.WriteString("This website was generated from the following brief:\n")
	b.WriteString(instruction)
	b.WriteString("\n\nApply this change to it:\n")
	b.WriteString(editInstruction)
	b.WriteString("\n\nCurrent HTML:\n")
	b.WriteString(content)
	return b.String()
}
