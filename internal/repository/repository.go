package repository

import (
	"context"

	"github.com/site-generator-api/internal/database"
	"github.com/site-generator-api/internal/models"
)

// UserRepository resolves owner identities. Account management is another
// service's job; Create exists for seeding and tests.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// ArtifactRepository defines the interface for artifact data operations.
// Operations that append a version and repoint the artifact's latest pointer
// are transactional so the two tables never diverge from the caller's view.
type ArtifactRepository interface {
	CreateWithVersion(ctx context.Context, artifact *models.Artifact, version *models.Version) error
	AppendVersion(ctx context.Context, version *models.Version) error
	GetByID(ctx context.Context, id string) (*models.Artifact, error)
	List(ctx context.Context, filter models.ArtifactFilter) ([]*models.Artifact, error)
	UpdateMetadata(ctx context.Context, id string, fields *models.UpdateMetadataRequest) error
	IncrementViewCount(ctx context.Context, id string) error
	IncrementForkCount(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// VersionRepository defines the read surface over version history. Versions
// are write-once; they are only ever inserted through ArtifactRepository
// transactions and only ever removed by a cascading artifact delete.
type VersionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Version, error)
	ListByArtifact(ctx context.Context, artifactID string) ([]*models.Version, error)
	CountByArtifact(ctx context.Context, artifactID string) (int, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Artifact ArtifactRepository
	Version  VersionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Artifact: NewArtifactRepo(db),
		Version:  NewVersionRepo(db),
	}
}
