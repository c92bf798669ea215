package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/models"
	"github.com/site-generator-api/internal/repository"
)

// forkService is the concrete implementation of ForkService
type forkService struct {
	artifacts repository.ArtifactRepository
	versions  repository.VersionRepository
	users     repository.UserRepository
	log       zerolog.Logger
}

// newForkService creates a new ForkService
func newForkService(repos *repository.Repositories, log zerolog.Logger) *forkService {
	return &forkService{
		artifacts: repos.Artifact,
		versions:  repos.Version,
		users:     repos.User,
		log:       log.With().Str("service", "fork").Logger(),
	}
}

// Fork copies a public artifact's latest version into a brand-new artifact
// owned by the requester, starting a fresh version lineage at 1.0. The source
// is untouched except for its fork counter. No generation call is made; the
// content is copied as-is.
//
// Private artifacts are never forkable, not even by their own owner through
// this path. There is no idempotency: every call yields a new fork.
func (s *forkService) Fork(ctx context.Context, sourceID, requesterID string, req *models.ForkRequest) (*models.ArtifactWithVersion, error) {
	source, err := s.artifacts.GetByID(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("loading source artifact: %w", err)
	}
	if source == nil {
		return nil, ErrNotFound
	}
	if source.Visibility != models.VisibilityPublic {
		return nil, ErrAccessDenied
	}

	exists, err := s.users.Exists(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("checking requester: %w", err)
	}
	if !exists {
		return nil, &ValidationError{Field: "requester_id", Message: "requester does not resolve to a known user"}
	}

	latest, err := s.versions.GetByID(ctx, source.LatestVersionID)
	if err != nil {
		return nil, fmt.Errorf("loading source version: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("source artifact %s latest version %s is missing", sourceID, source.LatestVersionID)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = "Fork of " + source.DisplayName
	}
	description := req.Description
	if description == "" {
		description = source.Description
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	now := time.Now()
	version := &models.Version{
		ID:            uuid.New().String(),
		ArtifactID:    uuid.New().String(),
		Content:       latest.Content,
		Instruction:   latest.Instruction,
		ContentType:   latest.ContentType,
		VersionNumber: models.InitialVersionNumber,
		IsInitial:     true,
		// Lineage crosses the artifact boundary: the fork's initial version
		// points at the source version it was copied from
		ParentVersionID: &latest.ID,
		CreatedAt:       now,
	}
	artifact := &models.Artifact{
		ID:               version.ArtifactID,
		OwnerID:          requesterID,
		DisplayName:      displayName,
		Description:      description,
		Tags:             source.Tags,
		ContentType:      source.ContentType,
		Visibility:       visibility,
		LatestVersionID:  version.ID,
		VersionCount:     1,
		IsFork:           true,
		OriginArtifactID: source.ID,
		OriginOwnerID:    source.OwnerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.artifacts.CreateWithVersion(ctx, artifact, version); err != nil {
		return nil, fmt.Errorf("persisting fork: %w", err)
	}

	if err := s.artifacts.IncrementForkCount(ctx, source.ID); err != nil {
		s.log.Warn().Err(err).Str("source_id", source.ID).Msg("Failed to bump fork count")
	}

	s.log.Info().
		Str("artifact_id", artifact.ID).
		Str("source_id", source.ID).
		Str("owner_id", requesterID).
		Msg("Artifact forked")

	return &models.ArtifactWithVersion{Artifact: artifact, Version: version}, nil
}
