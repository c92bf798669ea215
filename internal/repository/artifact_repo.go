package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/site-generator-api/internal/database"
	"github.com/site-generator-api/internal/models"
)

const artifactColumns = `id, owner_id, display_name, description, tags, content_type, visibility,
	thumbnail, latest_version_id, version_count, edit_count, view_count, fork_count,
	is_fork, origin_artifact_id, origin_owner_id, created_at, updated_at`

// artifactRepo is the concrete implementation of ArtifactRepository
type artifactRepo struct {
	db *database.DB
}

// NewArtifactRepo creates a new artifact repository
func NewArtifactRepo(db *database.DB) ArtifactRepository {
	return &artifactRepo{db: db}
}

// CreateWithVersion inserts a new artifact together with its initial version
// in one transaction, so a created artifact always has a resolvable latest
// version.
func (r *artifactRepo) CreateWithVersion(ctx context.Context, artifact *models.Artifact, version *models.Version) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tagsJSON, _ := json.Marshal(artifact.Tags)
	if artifact.Tags == nil {
		tagsJSON = []byte("[]")
	}

	query := `
		INSERT INTO artifacts (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = tx.ExecContext(ctx, query,
		artifact.ID, artifact.OwnerID, artifact.DisplayName, artifact.Description,
		tagsJSON, artifact.ContentType, artifact.Visibility, artifact.Thumbnail,
		artifact.LatestVersionID, artifact.VersionCount, artifact.EditCount,
		artifact.ViewCount, artifact.ForkCount, artifact.IsFork,
		nullString(artifact.OriginArtifactID), nullString(artifact.OriginOwnerID),
		artifact.CreatedAt, artifact.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	return tx.Commit()
}

// AppendVersion inserts an edit version and repoints the owning artifact in
// one transaction. Counters are bumped in SQL so concurrent edits never lose
// updates; the last writer to commit wins the latest pointer and both
// versions are retained.
func (r *artifactRepo) AppendVersion(ctx context.Context, version *models.Version) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	query := `
		UPDATE artifacts
		SET latest_version_id = $1,
		    version_count = version_count + 1,
		    edit_count = edit_count + 1,
		    updated_at = $2
		WHERE id = $3
	`
	res, err := tx.ExecContext(ctx, query, version.ID, time.Now(), version.ArtifactID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// GetByID retrieves an artifact by ID
func (r *artifactRepo) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = $1`

	artifact, err := scanArtifact(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// List retrieves artifacts matching the filter, newest updated first
func (r *artifactRepo) List(ctx context.Context, filter models.ArtifactFilter) ([]*models.Artifact, error) {
	var conditions []string
	var args []interface{}

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.PublicOnly {
		args = append(args, models.VisibilityPublic)
		conditions = append(conditions, fmt.Sprintf("visibility = $%d", len(args)))
	}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		conditions = append(conditions, fmt.Sprintf("content_type = $%d", len(args)))
	}
	for _, tag := range filter.Tags {
		tagJSON, _ := json.Marshal([]string{tag})
		args = append(args, string(tagJSON))
		conditions = append(conditions, fmt.Sprintf("tags::jsonb @> $%d::jsonb", len(args)))
	}

	query := `SELECT ` + artifactColumns + ` FROM artifacts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// UpdateMetadata mutates metadata fields only; version history and counters
// other than updated_at are untouched
func (r *artifactRepo) UpdateMetadata(ctx context.Context, id string, fields *models.UpdateMetadataRequest) error {
	var sets []string
	var args []interface{}

	if fields.DisplayName != nil {
		args = append(args, *fields.DisplayName)
		sets = append(sets, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if fields.Description != nil {
		args = append(args, *fields.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if fields.Visibility != nil {
		args = append(args, *fields.Visibility)
		sets = append(sets, fmt.Sprintf("visibility = $%d", len(args)))
	}
	if fields.Tags != nil {
		tagsJSON, _ := json.Marshal(*fields.Tags)
		args = append(args, string(tagsJSON))
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	if fields.Thumbnail != nil {
		args = append(args, *fields.Thumbnail)
		sets = append(sets, fmt.Sprintf("thumbnail = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, time.Now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE artifacts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViewCount bumps view_count atomically in SQL
func (r *artifactRepo) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE artifacts SET view_count = view_count + 1 WHERE id = $1", id)
	return err
}

// IncrementForkCount bumps fork_count atomically in SQL
func (r *artifactRepo) IncrementForkCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE artifacts SET fork_count = fork_count + 1 WHERE id = $1", id)
	return err
}

// Delete removes an artifact and every version belonging to it in one
// transaction. Deleting an already-deleted artifact affects zero rows and
// reports success, so an interrupted cascade is safe to retry.
func (r *artifactRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM artifact_versions WHERE artifact_id = $1", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE id = $1", id); err != nil {
		return err
	}

	return tx.Commit()
}

// Count returns the total number of artifacts
func (r *artifactRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&count)
	return count, err
}

// insertVersion writes one immutable version row inside an open transaction
func insertVersion(ctx context.Context, tx *sql.Tx, v *models.Version) error {
	query := `
		INSERT INTO artifact_versions (id, artifact_id, content, instruction, edit_instruction,
			content_type, version_number, is_initial, parent_version_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query,
		v.ID, v.ArtifactID, v.Content, v.Instruction, v.EditInstruction,
		v.ContentType, v.VersionNumber, v.IsInitial, v.ParentVersionID, v.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (*models.Artifact, error) {
	var artifact models.Artifact
	var tagsJSON []byte
	var originArtifactID, originOwnerID sql.NullString

	err := row.Scan(
		&artifact.ID, &artifact.OwnerID, &artifact.DisplayName, &artifact.Description,
		&tagsJSON, &artifact.ContentType, &artifact.Visibility, &artifact.Thumbnail,
		&artifact.LatestVersionID, &artifact.VersionCount, &artifact.EditCount,
		&artifact.ViewCount, &artifact.ForkCount, &artifact.IsFork,
		&originArtifactID, &originOwnerID, &artifact.CreatedAt, &artifact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(tagsJSON, &artifact.Tags)
	if originArtifactID.Valid {
		artifact.OriginArtifactID = originArtifactID.String
	}
	if originOwnerID.Valid {
		artifact.OriginOwnerID = originOwnerID.String
	}

	return &artifact, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
