package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/models"
	"github.com/site-generator-api/internal/service"
	"github.com/site-generator-api/internal/validation"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// SiteHandler handles the website generator endpoints
type SiteHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSiteHandler creates a new SiteHandler
func NewSiteHandler(services *service.Services, log zerolog.Logger) *SiteHandler {
	return &SiteHandler{
		services: services,
		log:      log.With().Str("handler", "site").Logger(),
	}
}

// requesterID extracts the caller identity from the X-User-ID header. Empty
// means anonymous.
func requesterID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-User-ID"))
}

// CreateSite handles POST /v1/sites
func (h *SiteHandler) CreateSite(c *gin.Context) {
	requester := requesterID(c)
	if requester == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
		return
	}

	var req models.CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if verrs := validation.ValidateCreateArtifact(&req); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}
	req.OwnerID = requester

	result, err := h.services.Artifact.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListSites handles GET /v1/sites
func (h *SiteHandler) ListSites(c *gin.Context) {
	filter := models.ArtifactFilter{
		OwnerID:     c.Query("owner_id"),
		ContentType: c.Query("content_type"),
		Limit:       clampLimit(c.Query("limit")),
	}
	if c.Query("public_only") == "true" {
		filter.PublicOnly = true
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	if filter.ContentType != "" && !models.ValidContentTypes[filter.ContentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown content type"})
		return
	}

	// Listing someone else's artifacts only ever shows their public ones
	if filter.OwnerID != "" && filter.OwnerID != requesterID(c) {
		filter.PublicOnly = true
	}

	artifacts, err := h.services.Artifact.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, true)
		return
	}
	if artifacts == nil {
		artifacts = []*models.Artifact{}
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts, "count": len(artifacts)})
}

// GetSite handles GET /v1/sites/:id
func (h *SiteHandler) GetSite(c *gin.Context) {
	includeContent := c.DefaultQuery("include_content", "true") != "false"

	result, err := h.services.Artifact.Get(c.Request.Context(), c.Param("id"), requesterID(c), includeContent)
	if err != nil {
		h.respondError(c, err, true)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateSite handles PATCH /v1/sites/:id
func (h *SiteHandler) UpdateSite(c *gin.Context) {
	var req models.UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if verrs := validation.ValidateUpdateMetadata(&req); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}

	artifact, err := h.services.Artifact.UpdateMetadata(c.Request.Context(), c.Param("id"), requesterID(c), &req)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	c.JSON(http.StatusOK, artifact)
}

// DeleteSite handles DELETE /v1/sites/:id
func (h *SiteHandler) DeleteSite(c *gin.Context) {
	if err := h.services.Artifact.Delete(c.Request.Context(), c.Param("id"), requesterID(c)); err != nil {
		h.respondError(c, err, false)
		return
	}
	c.Status(http.StatusNoContent)
}

// EditSite handles POST /v1/sites/:id/edits
func (h *SiteHandler) EditSite(c *gin.Context) {
	var req models.EditArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if verrs := validation.ValidateEditArtifact(&req); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}

	result, err := h.services.Artifact.Edit(c.Request.Context(), c.Param("id"), requesterID(c), &req)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListVersions handles GET /v1/sites/:id/versions
func (h *SiteHandler) ListVersions(c *gin.Context) {
	history, err := h.services.Artifact.ListVersions(c.Request.Context(), c.Param("id"), requesterID(c))
	if err != nil {
		h.respondError(c, err, true)
		return
	}
	if history.Versions == nil {
		history.Versions = []*models.Version{}
	}

	c.JSON(http.StatusOK, history)
}

// GetVersion handles GET /v1/sites/:id/versions/:version_id
func (h *SiteHandler) GetVersion(c *gin.Context) {
	version, err := h.services.Artifact.GetVersion(c.Request.Context(),
		c.Param("id"), c.Param("version_id"), requesterID(c))
	if err != nil {
		h.respondError(c, err, true)
		return
	}

	c.JSON(http.StatusOK, version)
}

// ForkSite handles POST /v1/sites/:id/fork
func (h *SiteHandler) ForkSite(c *gin.Context) {
	requester := requesterID(c)
	if requester == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
		return
	}

	var req models.ForkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if verrs := validation.ValidateFork(&req); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}

	result, err := h.services.Fork.Fork(c.Request.Context(), c.Param("id"), requester, &req)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GenerateVariations handles POST /v1/variations
func (h *SiteHandler) GenerateVariations(c *gin.Context) {
	var req models.VariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if verrs := validation.ValidateVariations(&req); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}

	result, err := h.services.Variation.Generate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	c.JSON(http.StatusOK, result)
}

func clampLimit(raw string) int {
	limit := defaultListLimit
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}
