package dto

import (
	apierrors "github.com/feral-file/ff-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/domain"
)

// ListEntriesResponse is one page of registry entries
type ListEntriesResponse struct {
	Entries []*domain.RegistryEntry `json:"entries"`
	Total   int                     `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

// OwnerEntriesResponse lists every entry of one owner
type OwnerEntriesResponse struct {
	Owner   string                  `json:"owner"`
	Entries []*domain.RegistryEntry `json:"entries"`
}

// ChallengeRequiredResponse is returned with 401 when a destructive request carries no signature
type ChallengeRequiredResponse struct {
	Error     *apierrors.APIError     `json:"error"`
	Challenge *auth.ChallengeResponse `json:"challenge"`
}

// DeleteEntryResponse confirms a deletion
type DeleteEntryResponse struct {
	Owner   string `json:"owner"`
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
