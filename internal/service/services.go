package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/cache"
	"github.com/site-generator-api/internal/config"
	"github.com/site-generator-api/internal/models"
	"github.com/site-generator-api/internal/repository"
)

// ArtifactService defines the interface for artifact lifecycle operations
type ArtifactService interface {
	Create(ctx context.Context, req *models.CreateArtifactRequest) (*models.ArtifactWithVersion, error)
	Edit(ctx context.Context, artifactID, requesterID string, req *models.EditArtifactRequest) (*models.ArtifactWithVersion, error)
	UpdateMetadata(ctx context.Context, artifactID, requesterID string, req *models.UpdateMetadataRequest) (*models.Artifact, error)
	Delete(ctx context.Context, artifactID, requesterID string) error
	Get(ctx context.Context, artifactID, requesterID string, includeContent bool) (*models.ArtifactWithVersion, error)
	GetVersion(ctx context.Context, artifactID, versionID, requesterID string) (*models.Version, error)
	List(ctx context.Context, filter models.ArtifactFilter) ([]*models.Artifact, error)
	ListVersions(ctx context.Context, artifactID, requesterID string) (*models.VersionHistory, error)
}

// ForkService defines the interface for forking public artifacts
type ForkService interface {
	Fork(ctx context.Context, sourceID, requesterID string, req *models.ForkRequest) (*models.ArtifactWithVersion, error)
}

// VariationService defines the interface for exploratory variation batches
type VariationService interface {
	Generate(ctx context.Context, req *models.VariationRequest) (*models.VariationResult, error)
}

// Services holds all service interfaces
type Services struct {
	Artifact  ArtifactService
	Fork      ForkService
	Variation VariationService
}

// NewServices creates all services. The generation cache is injected rather
// than constructed here so tests and main control its TTL and backing
// generator.
func NewServices(repos *repository.Repositories, contentCache *cache.ContentCache, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Artifact:  newArtifactService(repos, contentCache, log),
		Fork:      newForkService(repos, log),
		Variation: newVariationService(contentCache, cfg.Generation.MaxVariations, log),
	}
}
