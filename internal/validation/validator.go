package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/site-generator-api/internal/models"
)

const (
	maxDisplayNameLen = 120
	maxDescriptionLen = 2000
	maxInstructionLen = 8000
	maxTags           = 10
	maxTagLen         = 40
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateCreateArtifact checks a create request before it reaches the
// service layer
func ValidateCreateArtifact(req *models.CreateArtifactRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Instruction) == "" {
		errors = append(errors, ValidationError{Field: "instruction", Message: "instruction is required"})
	} else if len(req.Instruction) > maxInstructionLen {
		errors = append(errors, ValidationError{Field: "instruction", Message: fmt.Sprintf("instruction exceeds %d characters", maxInstructionLen)})
	}

	if req.ContentType != "" && !models.ValidContentTypes[req.ContentType] {
		errors = append(errors, ValidationError{Field: "content_type", Message: "unknown content type", Value: req.ContentType})
	}
	if req.Visibility != "" && !models.ValidVisibilities[req.Visibility] {
		errors = append(errors, ValidationError{Field: "visibility", Message: "visibility must be private or public", Value: req.Visibility})
	}
	if len(req.DisplayName) > maxDisplayNameLen {
		errors = append(errors, ValidationError{Field: "display_name", Message: fmt.Sprintf("display_name exceeds %d characters", maxDisplayNameLen)})
	}
	if len(req.Description) > maxDescriptionLen {
		errors = append(errors, ValidationError{Field: "description", Message: fmt.Sprintf("description exceeds %d characters", maxDescriptionLen)})
	}

	errors = append(errors, validateTags(req.Tags)...)
	return errors
}

// ValidateEditArtifact checks an edit request
func ValidateEditArtifact(req *models.EditArtifactRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.EditInstruction) == "" {
		errors = append(errors, ValidationError{Field: "edit_instruction", Message: "edit_instruction is required"})
	} else if len(req.EditInstruction) > maxInstructionLen {
		errors = append(errors, ValidationError{Field: "edit_instruction", Message: fmt.Sprintf("edit_instruction exceeds %d characters", maxInstructionLen)})
	}

	return errors
}

// ValidateUpdateMetadata checks a metadata update request
func ValidateUpdateMetadata(req *models.UpdateMetadataRequest) []ValidationError {
	var errors []ValidationError

	if req.Visibility != nil && !models.ValidVisibilities[*req.Visibility] {
		errors = append(errors, ValidationError{Field: "visibility", Message: "visibility must be private or public", Value: *req.Visibility})
	}
	if req.DisplayName != nil {
		if strings.TrimSpace(*req.DisplayName) == "" {
			errors = append(errors, ValidationError{Field: "display_name", Message: "display_name cannot be blank"})
		} else if len(*req.DisplayName) > maxDisplayNameLen {
			errors = append(errors, ValidationError{Field: "display_name", Message: fmt.Sprintf("display_name exceeds %d characters", maxDisplayNameLen)})
		}
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		errors = append(errors, ValidationError{Field: "description", Message: fmt.Sprintf("description exceeds %d characters", maxDescriptionLen)})
	}
	if req.Tags != nil {
		errors = append(errors, validateTags(*req.Tags)...)
	}

	return errors
}

// ValidateFork checks fork overrides
func ValidateFork(req *models.ForkRequest) []ValidationError {
	var errors []ValidationError

	if req.Visibility != "" && !models.ValidVisibilities[req.Visibility] {
		errors = append(errors, ValidationError{Field: "visibility", Message: "visibility must be private or public", Value: req.Visibility})
	}
	if len(req.DisplayName) > maxDisplayNameLen {
		errors = append(errors, ValidationError{Field: "display_name", Message: fmt.Sprintf("display_name exceeds %d characters", maxDisplayNameLen)})
	}

	return errors
}

// ValidateVariations checks a variation batch request. Count is clamped by
// the service, not rejected here, so only its sign is checked.
func ValidateVariations(req *models.VariationRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Instruction) == "" {
		errors = append(errors, ValidationError{Field: "instruction", Message: "instruction is required"})
	} else if len(req.Instruction) > maxInstructionLen {
		errors = append(errors, ValidationError{Field: "instruction", Message: fmt.Sprintf("instruction exceeds %d characters", maxInstructionLen)})
	}
	if req.ContentType != "" && !models.ValidContentTypes[req.ContentType] {
		errors = append(errors, ValidationError{Field: "content_type", Message: "unknown content type", Value: req.ContentType})
	}
	if req.Count < 0 {
		errors = append(errors, ValidationError{Field: "count", Message: "count cannot be negative", Value: req.Count})
	}

	return errors
}

func validateTags(tags []string) []ValidationError {
	var errors []ValidationError

	if len(tags) > maxTags {
		errors = append(errors, ValidationError{Field: "tags", Message: fmt.Sprintf("at most %d tags allowed", maxTags)})
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{Field: "tags", Message: "tags cannot be blank"})
			break
		}
		if len(tag) > maxTagLen {
			errors = append(errors, ValidationError{Field: "tags", Message: fmt.Sprintf("tag exceeds %d characters", maxTagLen), Value: tag})
			break
		}
	}

	return errors
}

// IsValidID reports whether id parses as a UUID
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
