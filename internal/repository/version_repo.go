package repository

import (
	"context"
	"database/sql"

	"github.com/site-generator-api/internal/database"
	"github.com/site-generator-api/internal/models"
)

// versionRepo is the concrete implementation of VersionRepository
type versionRepo struct {
	db *database.DB
}

// NewVersionRepo creates a new version repository
func NewVersionRepo(db *database.DB) VersionRepository {
	return &versionRepo{db: db}
}

// GetByID retrieves a version by ID, including its content
func (r *versionRepo) GetByID(ctx context.Context, id string) (*models.Version, error) {
	query := `
		SELECT id, artifact_id, content, instruction, edit_instruction,
			content_type, version_number, is_initial, parent_version_id, created_at
		FROM artifact_versions WHERE id = $1
	`

	var v models.Version
	var editInstruction, parentVersionID sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ArtifactID, &v.Content, &v.Instruction, &editInstruction,
		&v.ContentType, &v.VersionNumber, &v.IsInitial, &parentVersionID, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if editInstruction.Valid {
		v.EditInstruction = &editInstruction.String
	}
	if parentVersionID.Valid {
		v.ParentVersionID = &parentVersionID.String
	}
	return &v, nil
}

// ListByArtifact retrieves version metadata for an artifact, highest version
// number first. Content bodies are left out; use GetByID for a full snapshot.
func (r *versionRepo) ListByArtifact(ctx context.Context, artifactID string) ([]*models.Version, error) {
	query := `
		SELECT id, artifact_id, instruction, edit_instruction,
			content_type, version_number, is_initial, parent_version_id, created_at
		FROM artifact_versions
		WHERE artifact_id = $1
		ORDER BY version_number DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, artifactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*models.Version
	for rows.Next() {
		var v models.Version
		var editInstruction, parentVersionID sql.NullString

		err := rows.Scan(
			&v.ID, &v.ArtifactID, &v.Instruction, &editInstruction,
			&v.ContentType, &v.VersionNumber, &v.IsInitial, &parentVersionID, &v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if editInstruction.Valid {
			v.EditInstruction = &editInstruction.String
		}
		if parentVersionID.Valid {
			v.ParentVersionID = &parentVersionID.String
		}
		versions = append(versions, &v)
	}
	return versions, rows.Err()
}

// CountByArtifact returns the number of versions persisted for an artifact
func (r *versionRepo) CountByArtifact(ctx context.Context, artifactID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM artifact_versions WHERE artifact_id = $1", artifactID).Scan(&count)
	return count, err
}

// Count returns the total number of versions
func (r *versionRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifact_versions").Scan(&count)
	return count, err
}
