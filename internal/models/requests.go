package models

// CreateArtifactRequest is the payload for creating a new artifact. OwnerID is
// taken from the authenticated caller, never from the request body.
type CreateArtifactRequest struct {
	OwnerID     string   `json:"-"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ContentType string   `json:"content_type"`
	Visibility  string   `json:"visibility"`
	Instruction string   `json:"instruction"`
}

// EditArtifactRequest appends a new version to an existing artifact.
type EditArtifactRequest struct {
	EditInstruction string `json:"edit_instruction"`
	IsMajorEdit     bool   `json:"is_major_edit"`
}

// UpdateMetadataRequest mutates artifact metadata only; nil fields are left
// untouched. Version history and counters are never affected.
type UpdateMetadataRequest struct {
	DisplayName *string   `json:"display_name"`
	Description *string   `json:"description"`
	Visibility  *string   `json:"visibility"`
	Tags        *[]string `json:"tags"`
	Thumbnail   *string   `json:"thumbnail"`
}

// ForkRequest optionally overrides metadata on the forked copy.
type ForkRequest struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// VariationRequest asks for N independent drafts of one instruction.
type VariationRequest struct {
	Instruction string `json:"instruction"`
	ContentType string `json:"content_type"`
	Count       int    `json:"count"`
}

// Variation is one generated draft. Nothing is persisted for a variation;
// keeping one means calling create with its content's instruction.
type Variation struct {
	VariationIndex int    `json:"variation_index"`
	Content        string `json:"content"`
}

// VariationResult reports the batch outcome. Returned may be lower than
// Requested when individual generations fail (best-effort policy).
type VariationResult struct {
	Requested  int         `json:"requested"`
	Returned   int         `json:"returned"`
	Variations []Variation `json:"variations"`
}

// ArtifactWithVersion pairs an artifact with one of its versions, usually the
// latest.
type ArtifactWithVersion struct {
	Artifact *Artifact `json:"artifact"`
	Version  *Version  `json:"version"`
}

// VersionHistory is an artifact summary plus its version metadata, newest
// first, without content bodies.
type VersionHistory struct {
	Artifact *Artifact  `json:"artifact"`
	Versions []*Version `json:"versions"`
}
