package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/cache"
	"github.com/site-generator-api/internal/config"
	"github.com/site-generator-api/internal/generator"
	"github.com/site-generator-api/internal/mocks"
	"github.com/site-generator-api/internal/models"
	"github.com/site-generator-api/internal/service"
)

func newTestServices(t *testing.T) (*service.Services, *mocks.MockStore, *mocks.MockGenerator) {
	t.Helper()

	store := mocks.NewMockStore()
	gen := mocks.NewMockGenerator()
	contentCache := cache.New(gen, 128, time.Hour, zerolog.Nop())
	cfg := &config.Config{
		Generation: config.GenerationConfig{
			MaxVariations: 10,
			CacheTTL:      time.Hour,
			CacheSize:     128,
		},
	}

	return service.NewServices(store.Repositories(), contentCache, cfg, zerolog.Nop()), store, gen
}

func createArtifact(t *testing.T, svcs *service.Services, owner, instruction, visibility string) *models.ArtifactWithVersion {
	t.Helper()

	result, err := svcs.Artifact.Create(context.Background(), &models.CreateArtifactRequest{
		OwnerID:     owner,
		DisplayName: "Test Site",
		ContentType: "landing",
		Visibility:  visibility,
		Instruction: instruction,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return result
}

func TestArtifactService_Create(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")

	result := createArtifact(t, svcs, "owner-1", "a coffee shop landing page", models.VisibilityPrivate)

	artifact, version := result.Artifact, result.Version
	if artifact.OwnerID != "owner-1" {
		t.Errorf("Expected owner owner-1, got %s", artifact.OwnerID)
	}
	if artifact.VersionCount != 1 || artifact.EditCount != 0 {
		t.Errorf("Expected version_count=1 edit_count=0, got %d/%d", artifact.VersionCount, artifact.EditCount)
	}
	if artifact.LatestVersionID != version.ID {
		t.Error("latest_version_id should point at the initial version")
	}
	if version.ArtifactID != artifact.ID {
		t.Error("Version should belong to the created artifact")
	}
	if version.VersionNumber != 1.0 {
		t.Errorf("Expected initial version 1.0, got %v", version.VersionNumber)
	}
	if !version.IsInitial {
		t.Error("Initial version should have is_initial=true")
	}
	if version.ParentVersionID != nil {
		t.Error("Initial version should have no parent")
	}
	if version.Content == "" {
		t.Error("Generated content should not be empty")
	}
	if store.VersionCountFor(artifact.ID) != artifact.VersionCount {
		t.Errorf("Persisted version count %d does not match artifact counter %d",
			store.VersionCountFor(artifact.ID), artifact.VersionCount)
	}
}

func TestArtifactService_Create_UnknownOwner(t *testing.T) {
	svcs, store, gen := newTestServices(t)

	_, err := svcs.Artifact.Create(context.Background(), &models.CreateArtifactRequest{
		OwnerID:     "ghost",
		Instruction: "anything",
	})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Field != "owner_id" {
		t.Errorf("Expected owner_id violation, got %s", verr.Field)
	}
	if len(store.Artifacts) != 0 || len(store.Versions) != 0 {
		t.Error("Nothing should be persisted after a validation failure")
	}
	if gen.CallCount() != 0 {
		t.Error("Generator should not be called before validation passes")
	}
}

func TestArtifactService_Create_EmptyInstruction(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")

	_, err := svcs.Artifact.Create(context.Background(), &models.CreateArtifactRequest{
		OwnerID:     "owner-1",
		Instruction: "   ",
	})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(store.Artifacts) != 0 {
		t.Error("Nothing should be persisted")
	}
}

func TestArtifactService_Create_GeneratorFailure(t *testing.T) {
	svcs, store, gen := newTestServices(t)
	store.AddUser("owner-1")
	gen.Err = &generator.Error{Kind: generator.KindUnavailable, Message: "engine down"}

	_, err := svcs.Artifact.Create(context.Background(), &models.CreateArtifactRequest{
		OwnerID:     "owner-1",
		Instruction: "a blog",
	})

	var uerr *service.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if !uerr.Retryable() {
		t.Error("Unavailable should be retryable")
	}
	if len(store.Artifacts) != 0 || len(store.Versions) != 0 {
		t.Error("No partial history may be persisted when generation fails")
	}
}

func TestVersionNumbering_EditSequence(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	created := createArtifact(t, svcs, "owner-1", "portfolio for a photographer", models.VisibilityPrivate)
	id := created.Artifact.ID

	first, err := svcs.Artifact.Edit(ctx, id, "owner-1", &models.EditArtifactRequest{EditInstruction: "darker palette"})
	if err != nil {
		t.Fatalf("First edit failed: %v", err)
	}
	if first.Version.VersionNumber != 1.1 {
		t.Errorf("Expected 1.1 after first minor edit, got %v", first.Version.VersionNumber)
	}

	second, err := svcs.Artifact.Edit(ctx, id, "owner-1", &models.EditArtifactRequest{EditInstruction: "add a contact form"})
	if err != nil {
		t.Fatalf("Second edit failed: %v", err)
	}
	if second.Version.VersionNumber != 1.2 {
		t.Errorf("Expected 1.2 after second minor edit, got %v", second.Version.VersionNumber)
	}

	major, err := svcs.Artifact.Edit(ctx, id, "owner-1", &models.EditArtifactRequest{
		EditInstruction: "full redesign",
		IsMajorEdit:     true,
	})
	if err != nil {
		t.Fatalf("Major edit failed: %v", err)
	}
	if major.Version.VersionNumber != 2.0 {
		t.Errorf("Expected 2.0 after major edit from 1.2, got %v", major.Version.VersionNumber)
	}

	if major.Artifact.VersionCount != 4 {
		t.Errorf("Expected version_count=4, got %d", major.Artifact.VersionCount)
	}
	if major.Artifact.EditCount != 3 {
		t.Errorf("Expected edit_count=3, got %d", major.Artifact.EditCount)
	}
	if major.Artifact.LatestVersionID != major.Version.ID {
		t.Error("latest_version_id should point at the newest version")
	}
	if major.Version.ParentVersionID == nil || *major.Version.ParentVersionID != second.Version.ID {
		t.Error("Edit lineage should chain through the previous latest version")
	}

	// Exactly one version per artifact carries is_initial
	initials := 0
	for _, v := range store.Versions {
		if v.ArtifactID == id && v.IsInitial {
			initials++
		}
	}
	if initials != 1 {
		t.Errorf("Expected exactly one initial version, got %d", initials)
	}
}

func TestArtifactService_Edit_Errors(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	created := createArtifact(t, svcs, "owner-1", "landing page", models.VisibilityPrivate)

	_, err := svcs.Artifact.Edit(ctx, "00000000-0000-0000-0000-000000000000", "owner-1",
		&models.EditArtifactRequest{EditInstruction: "anything"})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing artifact, got %v", err)
	}

	_, err = svcs.Artifact.Edit(ctx, created.Artifact.ID, "intruder",
		&models.EditArtifactRequest{EditInstruction: "anything"})
	if !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for non-owner edit, got %v", err)
	}
	if store.VersionCountFor(created.Artifact.ID) != 1 {
		t.Error("Denied edit must not append a version")
	}
}

func TestArtifactService_Get_Visibility(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	private := createArtifact(t, svcs, "owner-1", "secret project", models.VisibilityPrivate)

	// Owner reads fine and the view is counted
	got, err := svcs.Artifact.Get(ctx, private.Artifact.ID, "owner-1", true)
	if err != nil {
		t.Fatalf("Owner get failed: %v", err)
	}
	if got.Artifact.ViewCount != 1 {
		t.Errorf("Expected view_count=1 after one get, got %d", got.Artifact.ViewCount)
	}
	if got.Version == nil || got.Version.Content == "" {
		t.Error("Get with include_content should return the latest content")
	}

	// Non-owner and anonymous are denied, not told it exists
	if _, err := svcs.Artifact.Get(ctx, private.Artifact.ID, "stranger", true); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for non-owner, got %v", err)
	}
	if _, err := svcs.Artifact.Get(ctx, private.Artifact.ID, "", true); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for anonymous, got %v", err)
	}

	// Denied reads must not count views
	reread, _ := svcs.Artifact.Get(ctx, private.Artifact.ID, "owner-1", false)
	if reread.Artifact.ViewCount != 2 {
		t.Errorf("Expected view_count=2, got %d", reread.Artifact.ViewCount)
	}
	if reread.Version.Content != "" {
		t.Error("Get without include_content should omit the content body")
	}

	if _, err := svcs.Artifact.Get(ctx, "11111111-1111-1111-1111-111111111111", "owner-1", true); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing artifact, got %v", err)
	}
}

func TestArtifactService_Delete_Cascade(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	created := createArtifact(t, svcs, "owner-1", "five version site", models.VisibilityPrivate)
	for i := 0; i < 4; i++ {
		if _, err := svcs.Artifact.Edit(ctx, created.Artifact.ID, "owner-1",
			&models.EditArtifactRequest{EditInstruction: "tweak " + strings.Repeat("x", i+1)}); err != nil {
			t.Fatalf("Edit %d failed: %v", i, err)
		}
	}
	if store.VersionCountFor(created.Artifact.ID) != 5 {
		t.Fatalf("Expected 5 versions before delete, got %d", store.VersionCountFor(created.Artifact.ID))
	}

	if err := svcs.Artifact.Delete(ctx, created.Artifact.ID, "stranger"); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for non-owner delete, got %v", err)
	}

	if err := svcs.Artifact.Delete(ctx, created.Artifact.ID, "owner-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.VersionCountFor(created.Artifact.ID) != 0 {
		t.Errorf("Expected 0 versions after delete, got %d", store.VersionCountFor(created.Artifact.ID))
	}
	if _, err := svcs.Artifact.Get(ctx, created.Artifact.ID, "owner-1", true); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestArtifactService_UpdateMetadata(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	created := createArtifact(t, svcs, "owner-1", "metadata test", models.VisibilityPrivate)

	name := "Renamed Site"
	visibility := models.VisibilityPublic
	updated, err := svcs.Artifact.UpdateMetadata(ctx, created.Artifact.ID, "owner-1", &models.UpdateMetadataRequest{
		DisplayName: &name,
		Visibility:  &visibility,
	})
	if err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}
	if updated.DisplayName != name || updated.Visibility != models.VisibilityPublic {
		t.Error("Metadata fields were not applied")
	}
	if updated.VersionCount != 1 || updated.EditCount != 0 {
		t.Error("Metadata update must not touch version counters")
	}

	if _, err := svcs.Artifact.UpdateMetadata(ctx, created.Artifact.ID, "stranger",
		&models.UpdateMetadataRequest{DisplayName: &name}); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestArtifactService_List_DefaultPublicOnly(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	store.AddUser("owner-2")
	ctx := context.Background()

	createArtifact(t, svcs, "owner-1", "public one", models.VisibilityPublic)
	createArtifact(t, svcs, "owner-1", "private one", models.VisibilityPrivate)
	createArtifact(t, svcs, "owner-2", "public two", models.VisibilityPublic)

	// Unscoped listing never leaks private artifacts
	artifacts, err := svcs.Artifact.List(ctx, models.ArtifactFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("Expected 2 public artifacts, got %d", len(artifacts))
	}
	for _, a := range artifacts {
		if a.Visibility != models.VisibilityPublic {
			t.Errorf("Private artifact %s leaked through unscoped list", a.ID)
		}
	}

	// Owner-scoped listing includes their private artifacts
	mine, err := svcs.Artifact.List(ctx, models.ArtifactFilter{OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("Expected 2 artifacts for owner-1, got %d", len(mine))
	}
}

func TestArtifactService_ListVersions(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	created := createArtifact(t, svcs, "owner-1", "history test", models.VisibilityPrivate)
	svcs.Artifact.Edit(ctx, created.Artifact.ID, "owner-1", &models.EditArtifactRequest{EditInstruction: "one"})
	svcs.Artifact.Edit(ctx, created.Artifact.ID, "owner-1", &models.EditArtifactRequest{EditInstruction: "two"})

	history, err := svcs.Artifact.ListVersions(ctx, created.Artifact.ID, "owner-1")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(history.Versions) != 3 {
		t.Fatalf("Expected 3 versions, got %d", len(history.Versions))
	}
	// Newest first, no content bodies
	if history.Versions[0].VersionNumber != 1.2 {
		t.Errorf("Expected newest version 1.2 first, got %v", history.Versions[0].VersionNumber)
	}
	for _, v := range history.Versions {
		if v.Content != "" {
			t.Error("Version history must omit content")
		}
	}

	if _, err := svcs.Artifact.ListVersions(ctx, created.Artifact.ID, "stranger"); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for non-owner history, got %v", err)
	}
}

func TestForkService_Fork(t *testing.T) {
	svcs, store, gen := newTestServices(t)
	store.AddUser("alice")
	store.AddUser("bob")
	ctx := context.Background()

	source := createArtifact(t, svcs, "alice", "a bakery site", models.VisibilityPublic)
	callsBefore := gen.CallCount()

	fork, err := svcs.Fork.Fork(ctx, source.Artifact.ID, "bob", &models.ForkRequest{})
	if err != nil {
		t.Fatalf("Fork failed: %v", err)
	}

	if fork.Artifact.OwnerID != "bob" {
		t.Errorf("Fork should be owned by the requester, got %s", fork.Artifact.OwnerID)
	}
	if !fork.Artifact.IsFork {
		t.Error("Fork should have is_fork=true")
	}
	if fork.Artifact.OriginArtifactID != source.Artifact.ID || fork.Artifact.OriginOwnerID != "alice" {
		t.Error("Fork origin pointers should reference the source")
	}
	if fork.Artifact.VersionCount != 1 {
		t.Errorf("Fork should start with version_count=1, got %d", fork.Artifact.VersionCount)
	}
	if fork.Artifact.Visibility != models.VisibilityPrivate {
		t.Error("Fork should default to private")
	}
	if fork.Artifact.DisplayName != "Fork of Test Site" {
		t.Errorf("Expected default fork name, got %q", fork.Artifact.DisplayName)
	}
	if fork.Version.VersionNumber != 1.0 {
		t.Errorf("Fork lineage should restart at 1.0, got %v", fork.Version.VersionNumber)
	}
	if !fork.Version.IsInitial {
		t.Error("Fork's first version should be initial")
	}
	if fork.Version.ParentVersionID == nil || *fork.Version.ParentVersionID != source.Version.ID {
		t.Error("Fork's version should point at the source's latest version")
	}
	if fork.Version.Content != source.Version.Content {
		t.Error("Fork should copy the source content as-is")
	}
	if gen.CallCount() != callsBefore {
		t.Error("Fork must not invoke the generator")
	}

	updatedSource, _ := svcs.Artifact.Get(ctx, source.Artifact.ID, "alice", false)
	if updatedSource.Artifact.ForkCount != 1 {
		t.Errorf("Source fork_count should be 1, got %d", updatedSource.Artifact.ForkCount)
	}
}

func TestForkService_ForkAfterMajorEdit_RestartsAtOne(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("alice")
	store.AddUser("bob")
	ctx := context.Background()

	source := createArtifact(t, svcs, "alice", "versioned source", models.VisibilityPublic)
	svcs.Artifact.Edit(ctx, source.Artifact.ID, "alice", &models.EditArtifactRequest{EditInstruction: "minor"})
	svcs.Artifact.Edit(ctx, source.Artifact.ID, "alice", &models.EditArtifactRequest{EditInstruction: "major", IsMajorEdit: true})

	fork, err := svcs.Fork.Fork(ctx, source.Artifact.ID, "bob", &models.ForkRequest{})
	if err != nil {
		t.Fatalf("Fork failed: %v", err)
	}
	if fork.Version.VersionNumber != 1.0 {
		t.Errorf("Fork of a 2.0 source should still start at 1.0, got %v", fork.Version.VersionNumber)
	}
}

func TestForkService_PrivateNeverForkable(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("alice")
	store.AddUser("bob")
	ctx := context.Background()

	private := createArtifact(t, svcs, "alice", "private source", models.VisibilityPrivate)

	// Not by a stranger, and not even by the owner through this path
	if _, err := svcs.Fork.Fork(ctx, private.Artifact.ID, "bob", &models.ForkRequest{}); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for stranger, got %v", err)
	}
	if _, err := svcs.Fork.Fork(ctx, private.Artifact.ID, "alice", &models.ForkRequest{}); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for owner, got %v", err)
	}

	if _, err := svcs.Fork.Fork(ctx, "22222222-2222-2222-2222-222222222222", "bob", &models.ForkRequest{}); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing source, got %v", err)
	}
}

func TestForkService_RepeatedForksAreIndependent(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("alice")
	store.AddUser("bob")
	ctx := context.Background()

	source := createArtifact(t, svcs, "alice", "fork me twice", models.VisibilityPublic)

	first, err := svcs.Fork.Fork(ctx, source.Artifact.ID, "bob", &models.ForkRequest{})
	if err != nil {
		t.Fatalf("First fork failed: %v", err)
	}
	second, err := svcs.Fork.Fork(ctx, source.Artifact.ID, "bob", &models.ForkRequest{})
	if err != nil {
		t.Fatalf("Second fork failed: %v", err)
	}
	if first.Artifact.ID == second.Artifact.ID {
		t.Error("Each fork call must create a new artifact")
	}

	updatedSource, _ := svcs.Artifact.Get(ctx, source.Artifact.ID, "alice", false)
	if updatedSource.Artifact.ForkCount != 2 {
		t.Errorf("Source fork_count should be 2, got %d", updatedSource.Artifact.ForkCount)
	}
}

func TestGenerationCache_CreateReusesWithinTTL(t *testing.T) {
	svcs, store, gen := newTestServices(t)
	store.AddUser("owner-1")

	createArtifact(t, svcs, "owner-1", "identical brief", models.VisibilityPrivate)
	createArtifact(t, svcs, "owner-1", "identical brief", models.VisibilityPrivate)

	if gen.CallCount() != 1 {
		t.Errorf("Two creates with the same instruction within TTL should hit the generator once, got %d", gen.CallCount())
	}

	// A different content type is a different cache key
	result, err := svcs.Artifact.Create(context.Background(), &models.CreateArtifactRequest{
		OwnerID:     "owner-1",
		ContentType: "blog",
		Instruction: "identical brief",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Version.ContentType != "blog" {
		t.Errorf("Expected blog content type, got %s", result.Version.ContentType)
	}
	if gen.CallCount() != 2 {
		t.Errorf("Different content type should miss the cache, got %d calls", gen.CallCount())
	}
}

func TestVariationService_Generate(t *testing.T) {
	svcs, store, gen := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	// A prior plain create with the same base instruction must not collide
	// with any variation's cache key
	createArtifact(t, svcs, "owner-1", "yoga studio site", models.VisibilityPrivate)

	result, err := svcs.Variation.Generate(ctx, &models.VariationRequest{
		Instruction: "yoga studio site",
		ContentType: "landing",
		Count:       3,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Requested != 3 || result.Returned != 3 {
		t.Fatalf("Expected 3/3 variations, got %d/%d", result.Returned, result.Requested)
	}
	seen := make(map[int]bool)
	for _, v := range result.Variations {
		if v.Content == "" {
			t.Error("Variation content should not be empty")
		}
		seen[v.VariationIndex] = true
	}
	for i := 1; i <= 3; i++ {
		if !seen[i] {
			t.Errorf("Missing variation_index %d", i)
		}
	}

	if gen.CallCount() != 4 {
		t.Errorf("Expected 4 distinct generator calls (1 create + 3 variations), got %d", gen.CallCount())
	}

	instructions := gen.RecordedInstructions()
	unique := make(map[string]bool)
	for _, in := range instructions {
		unique[in] = true
	}
	if len(unique) != len(instructions) {
		t.Error("Every generator call should carry a distinct instruction")
	}

	if len(store.Artifacts) != 1 || len(store.Versions) != 1 {
		t.Error("Variations must not persist artifacts or versions")
	}
}

func TestVariationService_ClampsCount(t *testing.T) {
	svcs, _, gen := newTestServices(t)

	result, err := svcs.Variation.Generate(context.Background(), &models.VariationRequest{
		Instruction: "too many drafts",
		Count:       50,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Requested != 10 || result.Returned != 10 {
		t.Errorf("Expected count clamped to 10, got %d/%d", result.Returned, result.Requested)
	}
	if gen.CallCount() != 10 {
		t.Errorf("Expected 10 generator calls, got %d", gen.CallCount())
	}
}

func TestVariationService_BestEffortPartialFailure(t *testing.T) {
	svcs, _, gen := newTestServices(t)
	gen.GenerateFunc = func(ctx context.Context, instruction, contentType string) (string, error) {
		if strings.Contains(instruction, "Variation 2 of 3") {
			return "", &generator.Error{Kind: generator.KindUnavailable, Message: "flaky"}
		}
		return "<html>" + instruction + "</html>", nil
	}

	result, err := svcs.Variation.Generate(context.Background(), &models.VariationRequest{
		Instruction: "flaky batch",
		Count:       3,
	})
	if err != nil {
		t.Fatalf("Best-effort batch should not fail outright: %v", err)
	}
	if result.Requested != 3 || result.Returned != 2 {
		t.Errorf("Expected 2 of 3 variations, got %d/%d", result.Returned, result.Requested)
	}
	for _, v := range result.Variations {
		if v.VariationIndex == 2 {
			t.Error("Failed variation should be dropped from the result")
		}
	}
}

func TestVariationService_AllFailed(t *testing.T) {
	svcs, _, gen := newTestServices(t)
	gen.Err = &generator.Error{Kind: generator.KindSafetyBlocked, Message: "refused"}

	_, err := svcs.Variation.Generate(context.Background(), &models.VariationRequest{
		Instruction: "blocked batch",
		Count:       3,
	})

	var uerr *service.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected UpstreamError when every variation fails, got %v", err)
	}
	if uerr.Retryable() {
		t.Error("SafetyBlocked should be terminal")
	}
}

func TestArtifactService_GetVersion(t *testing.T) {
	svcs, store, _ := newTestServices(t)
	store.AddUser("owner-1")
	ctx := context.Background()

	created := createArtifact(t, svcs, "owner-1", "version fetch", models.VisibilityPrivate)
	edited, _ := svcs.Artifact.Edit(ctx, created.Artifact.ID, "owner-1", &models.EditArtifactRequest{EditInstruction: "bump"})

	// Old versions stay retrievable after the latest pointer moves on
	old, err := svcs.Artifact.GetVersion(ctx, created.Artifact.ID, created.Version.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if old.VersionNumber != 1.0 || old.Content == "" {
		t.Error("Historical version should be intact with content")
	}
	if edited.Artifact.LatestVersionID == old.ID {
		t.Error("Old version should no longer be latest")
	}

	if _, err := svcs.Artifact.GetVersion(ctx, created.Artifact.ID, created.Version.ID, "stranger"); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for non-owner, got %v", err)
	}
	if _, err := svcs.Artifact.GetVersion(ctx, created.Artifact.ID, "33333333-3333-3333-3333-333333333333", "owner-1"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing version, got %v", err)
	}
}
