package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/site-generator-api/internal/models"
	"github.com/site-generator-api/internal/repository"
)

// MockStore backs the mock repositories with shared in-memory maps so that
// artifact transactions (insert version + repoint artifact) behave like the
// real two-table store.
type MockStore struct {
	mu        sync.Mutex
	Users     map[string]*models.User
	Artifacts map[string]*models.Artifact
	Versions  map[string]*models.Version

	// Error injection
	CreateErr error
	DeleteErr error
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Users:     make(map[string]*models.User),
		Artifacts: make(map[string]*models.Artifact),
		Versions:  make(map[string]*models.Version),
	}
}

// Repositories returns the aggregate backed by this store
func (s *MockStore) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     &MockUserRepository{store: s},
		Artifact: &MockArtifactRepository{store: s},
		Version:  &MockVersionRepository{store: s},
	}
}

// AddUser seeds a user
func (s *MockStore) AddUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[id] = &models.User{
		ID:        id,
		Email:     id + "@test.com",
		Name:      "Test User",
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// VersionCountFor counts stored versions for an artifact
func (s *MockStore) VersionCountFor(artifactID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, v := range s.Versions {
		if v.ArtifactID == artifactID {
			count++
		}
	}
	return count
}

func copyArtifact(a *models.Artifact) *models.Artifact {
	dup := *a
	dup.Tags = append([]string(nil), a.Tags...)
	return &dup
}

func copyVersion(v *models.Version) *models.Version {
	dup := *v
	return &dup
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	store *MockStore
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.store.Users[id], nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	_, exists := m.store.Users[id]
	return exists, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Users), nil
}

// MockArtifactRepository is a mock implementation of ArtifactRepository
type MockArtifactRepository struct {
	store *MockStore
}

func (m *MockArtifactRepository) CreateWithVersion(ctx context.Context, artifact *models.Artifact, version *models.Version) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if m.store.CreateErr != nil {
		return m.store.CreateErr
	}
	m.store.Artifacts[artifact.ID] = copyArtifact(artifact)
	m.store.Versions[version.ID] = copyVersion(version)
	return nil
}

func (m *MockArtifactRepository) AppendVersion(ctx context.Context, version *models.Version) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	artifact, ok := m.store.Artifacts[version.ArtifactID]
	if !ok {
		return sql.ErrNoRows
	}
	m.store.Versions[version.ID] = copyVersion(version)
	artifact.LatestVersionID = version.ID
	artifact.VersionCount++
	artifact.EditCount++
	artifact.UpdatedAt = time.Now()
	return nil
}

func (m *MockArtifactRepository) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	artifact, ok := m.store.Artifacts[id]
	if !ok {
		return nil, nil
	}
	return copyArtifact(artifact), nil
}

func (m *MockArtifactRepository) List(ctx context.Context, filter models.ArtifactFilter) ([]*models.Artifact, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var result []*models.Artifact
	for _, artifact := range m.store.Artifacts {
		if filter.OwnerID != "" && artifact.OwnerID != filter.OwnerID {
			continue
		}
		if filter.PublicOnly && artifact.Visibility != models.VisibilityPublic {
			continue
		}
		if filter.ContentType != "" && artifact.ContentType != filter.ContentType {
			continue
		}
		if !hasAllTags(artifact.Tags, filter.Tags) {
			continue
		}
		result = append(result, copyArtifact(artifact))
	}

	// Descending by updated_at, matching the SQL ordering
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].UpdatedAt.After(result[i].UpdatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MockArtifactRepository) UpdateMetadata(ctx context.Context, id string, fields *models.UpdateMetadataRequest) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	artifact, ok := m.store.Artifacts[id]
	if !ok {
		return sql.ErrNoRows
	}
	if fields.DisplayName != nil {
		artifact.DisplayName = *fields.DisplayName
	}
	if fields.Description != nil {
		artifact.Description = *fields.Description
	}
	if fields.Visibility != nil {
		artifact.Visibility = *fields.Visibility
	}
	if fields.Tags != nil {
		artifact.Tags = append([]string(nil), (*fields.Tags)...)
	}
	if fields.Thumbnail != nil {
		artifact.Thumbnail = *fields.Thumbnail
	}
	artifact.UpdatedAt = time.Now()
	return nil
}

func (m *MockArtifactRepository) IncrementViewCount(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if artifact, ok := m.store.Artifacts[id]; ok {
		artifact.ViewCount++
	}
	return nil
}

func (m *MockArtifactRepository) IncrementForkCount(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if artifact, ok := m.store.Artifacts[id]; ok {
		artifact.ForkCount++
	}
	return nil
}

func (m *MockArtifactRepository) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if m.store.DeleteErr != nil {
		return m.store.DeleteErr
	}
	for versionID, v := range m.store.Versions {
		if v.ArtifactID == id {
			delete(m.store.Versions, versionID)
		}
	}
	delete(m.store.Artifacts, id)
	return nil
}

func (m *MockArtifactRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Artifacts), nil
}

// MockVersionRepository is a mock implementation of VersionRepository
type MockVersionRepository struct {
	store *MockStore
}

func (m *MockVersionRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	version, ok := m.store.Versions[id]
	if !ok {
		return nil, nil
	}
	return copyVersion(version), nil
}

func (m *MockVersionRepository) ListByArtifact(ctx context.Context, artifactID string) ([]*models.Version, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var versions []*models.Version
	for _, v := range m.store.Versions {
		if v.ArtifactID == artifactID {
			dup := copyVersion(v)
			dup.Content = "" // history listings omit content
			versions = append(versions, dup)
		}
	}
	for i := 0; i < len(versions); i++ {
		for j := i + 1; j < len(versions); j++ {
			if versions[j].VersionNumber > versions[i].VersionNumber {
				versions[i], versions[j] = versions[j], versions[i]
			}
		}
	}
	return versions, nil
}

func (m *MockVersionRepository) CountByArtifact(ctx context.Context, artifactID string) (int, error) {
	return m.store.VersionCountFor(artifactID), nil
}

func (m *MockVersionRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Versions), nil
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
