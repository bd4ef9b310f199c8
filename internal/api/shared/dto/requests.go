package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	apierrors "github.com/feral-file/ff-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-registry/internal/domain"
)

// RegisterEntryRequest is the body of POST /api/v1/registry/entries
type RegisterEntryRequest struct {
	URL         string          `json:"url"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       string          `json:"owner,omitempty"` // defaults to the payer
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	ProbeData   json.RawMessage `json:"probeData,omitempty"`
}

// Validate validates the request body
func (r *RegisterEntryRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return apierrors.NewValidationError("url is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return apierrors.NewValidationError("name is required")
	}
	if r.Owner != "" {
		if _, err := domain.ParseAddress(r.Owner); err != nil {
			return apierrors.NewValidationError(fmt.Sprintf("invalid owner: %s", r.Owner))
		}
	}
	if len(r.Tags) > domain.MAX_TAGS {
		return apierrors.NewValidationError(fmt.Sprintf("maximum %d tags allowed", domain.MAX_TAGS))
	}
	return nil
}

// UpdateEntryRequest is the body of PATCH /api/v1/registry/entries/:owner/:id.
// Absent fields are left unchanged.
type UpdateEntryRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	ProbeData   json.RawMessage `json:"probeData,omitempty"`
}

// Validate validates the request body
func (r *UpdateEntryRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.Category == nil && r.Tags == nil && len(r.ProbeData) == 0 {
		return apierrors.NewValidationError("at least one field must be provided")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return apierrors.NewValidationError("name must not be empty")
	}
	return nil
}

// Apply copies the provided fields onto the entry
func (r *UpdateEntryRequest) Apply(entry *domain.RegistryEntry) {
	if r.Name != nil {
		entry.Name = *r.Name
	}
	if r.Description != nil {
		entry.Description = *r.Description
	}
	if r.Category != nil {
		entry.Category = *r.Category
	}
	if r.Tags != nil {
		entry.Tags = *r.Tags
	}
	if len(r.ProbeData) > 0 {
		entry.ProbeData = r.ProbeData
	}
}

// SignedRequest carries a proof of ownership.
// A signature with a challengeId answers a challenge; a signature with a
// timestamp signs the action message directly.
type SignedRequest struct {
	Signature   string `json:"signature,omitempty"`
	ChallengeID string `json:"challengeId,omitempty"`
	Timestamp   uint64 `json:"timestamp,omitempty"`
}

// HasChallengeResponse reports whether the request answers a challenge
func (r *SignedRequest) HasChallengeResponse() bool {
	return r.Signature != "" && r.ChallengeID != ""
}

// HasTimestampedSignature reports whether the request signs the action message directly
func (r *SignedRequest) HasTimestampedSignature() bool {
	return r.Signature != "" && r.ChallengeID == "" && r.Timestamp > 0
}

// ListMyEntriesRequest is the body of POST /api/v1/registry/owners/:owner/entries
type ListMyEntriesRequest struct {
	SignedRequest
}

// DeleteEntryRequest is the optional body of DELETE /api/v1/registry/entries/:owner/:id
type DeleteEntryRequest struct {
	SignedRequest
}

// TransferEntryRequest is the body of POST /api/v1/registry/entries/:owner/:id/transfer
type TransferEntryRequest struct {
	NewOwner string `json:"newOwner"`
	SignedRequest
}

// Validate validates the request body
func (r *TransferEntryRequest) Validate() error {
	if r.NewOwner == "" {
		return apierrors.NewValidationError("newOwner is required")
	}
	if _, err := domain.ParseAddress(r.NewOwner); err != nil {
		return apierrors.NewValidationError(fmt.Sprintf("invalid newOwner: %s", r.NewOwner))
	}
	return nil
}

// ListEntriesQuery holds query parameters for GET /api/v1/registry/entries
type ListEntriesQuery struct {
	Category string `form:"category"`
	Status   string `form:"status"`
	Limit    int    `form:"limit,default=20"`
	Offset   int    `form:"offset,default=0"`
}

// Validate validates and clamps the query
func (q *ListEntriesQuery) Validate() error {
	if q.Status != "" && !domain.Status(q.Status).Valid() {
		return apierrors.NewValidationError(fmt.Sprintf("invalid status: %s", q.Status))
	}
	if q.Limit <= 0 {
		q.Limit = domain.DEFAULT_LIST_LIMIT
	}
	if q.Limit > domain.MAX_LIST_LIMIT {
		q.Limit = domain.MAX_LIST_LIMIT
	}
	if q.Offset < 0 {
		return apierrors.NewValidationError("offset must not be negative")
	}
	return nil
}
