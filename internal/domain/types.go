package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle status of a registry entry
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusVerified   Status = "verified"
	StatusRejected   Status = "rejected"
)

// AllStatuses lists every status bucket of the status index
var AllStatuses = []Status{StatusUnverified, StatusVerified, StatusRejected}

// Valid checks if a status is one of the known statuses
func (s Status) Valid() bool {
	return s == StatusUnverified ||
		s == StatusVerified ||
		s == StatusRejected
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// RegistryEntry is a listed third-party service owned by an address.
// The ID is content-addressed: EntryID(URL).
type RegistryEntry struct {
	ID           string          `json:"id"`
	URL          string          `json:"url"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Owner        string          `json:"owner"`
	Status       Status          `json:"status"`
	Category     string          `json:"category,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	ProbeData    json.RawMessage `json:"probeData,omitempty"`
	RegisteredAt time.Time       `json:"registeredAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	RegisteredBy string          `json:"registeredBy"`
}

// Validate checks the structural invariants of an entry
func (e *RegistryEntry) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: entry is required", ErrInvalidInput)
	}
	if e.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if e.ID != EntryID(e.URL) {
		return fmt.Errorf("%w: id %q does not match url", ErrInvalidInput, e.ID)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(e.Name) > MAX_NAME_LENGTH {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, MAX_NAME_LENGTH)
	}
	if len(e.Description) > MAX_DESCRIPTION_LENGTH {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MAX_DESCRIPTION_LENGTH)
	}
	if _, err := ParseAddress(e.Owner); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, e.Status)
	}
	if strings.Contains(e.Category, COMPOSITE_KEY_SEPARATOR) {
		return fmt.Errorf("%w: category must not contain %q", ErrInvalidInput, COMPOSITE_KEY_SEPARATOR)
	}
	if len(e.Tags) > MAX_TAGS {
		return fmt.Errorf("%w: at most %d tags are allowed", ErrInvalidInput, MAX_TAGS)
	}
	if len(e.ProbeData) > 0 && !json.Valid(e.ProbeData) {
		return fmt.Errorf("%w: probe data is not valid JSON", ErrInvalidInput)
	}
	return nil
}

// CompositeKey returns the "owner:urlHash" key used by the status and category indexes
func (e *RegistryEntry) CompositeKey() string {
	return CompositeKey(e.Owner, e.ID)
}

// Projection returns the index projection of the entry
func (e *RegistryEntry) Projection() RegistryIndexEntry {
	return RegistryIndexEntry{
		Owner:    e.Owner,
		URLHash:  e.ID,
		Status:   e.Status,
		Name:     e.Name,
		Category: e.Category,
	}
}

// RegistryIndexEntry is the denormalized summary of an entry kept in the all-index
type RegistryIndexEntry struct {
	Owner    string `json:"owner"`
	URLHash  string `json:"urlHash"`
	Status   Status `json:"status"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Validate checks the structural invariants of an index projection
func (p *RegistryIndexEntry) Validate() error {
	if p.Owner == "" || len(p.URLHash) != ENTRY_ID_LENGTH {
		return fmt.Errorf("%w: malformed index projection %q/%q", ErrInvalidInput, p.Owner, p.URLHash)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q in index projection", ErrInvalidInput, p.Status)
	}
	return nil
}

// Matches reports whether the projection refers to the given owner and id
func (p *RegistryIndexEntry) Matches(owner, id string) bool {
	return p.Owner == owner && p.URLHash == id
}

// URLLookup is the value stored under the url-lookup key
type URLLookup struct {
	Owner string `json:"owner"`
}

// Challenge is a one-time nonce a caller must sign before a destructive operation
type Challenge struct {
	ID        string    `json:"challengeId"`
	Nonce     string    `json:"nonce"`
	Owner     string    `json:"owner"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the challenge is expired at the given time
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// CompositeKey builds the "owner:urlHash" key
func CompositeKey(owner, id string) string {
	return owner + COMPOSITE_KEY_SEPARATOR + id
}

// ParseCompositeKey splits an "owner:urlHash" key.
// Addresses never contain the separator so the last one delimits the id.
func ParseCompositeKey(key string) (owner string, id string, err error) {
	i := strings.LastIndex(key, COMPOSITE_KEY_SEPARATOR)
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("%w: malformed composite key %q", ErrInvalidInput, key)
	}
	return key[:i], key[i+1:], nil
}
