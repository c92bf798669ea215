package service

import (
	"github.com/site-generator-api/internal/models"
)

// canModify reports whether the requester owns the artifact. Every mutating
// operation goes through this single check.
func canModify(requesterID string, artifact *models.Artifact) bool {
	return requesterID != "" && requesterID == artifact.OwnerID
}

// canView reports whether the requester may read the artifact: public
// artifacts are readable by anyone including anonymous callers, private ones
// only by their owner.
func canView(requesterID string, artifact *models.Artifact) bool {
	if artifact.Visibility == models.VisibilityPublic {
		return true
	}
	return canModify(requesterID, artifact)
}
