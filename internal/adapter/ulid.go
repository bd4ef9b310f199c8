package adapter

import "github.com/oklog/ulid/v2"

// ULID defines an interface for sortable unique id generation to enable mocking
//
//go:generate mockgen -source=ulid.go -destination=../mocks/ulid.go -package=mocks -mock_names=ULID=MockULID
type ULID interface {
	// Make returns a new ULID string using the current time and monotonic entropy
	Make() string
}

// RealULID implements ULID using oklog/ulid
type RealULID struct{}

// NewULID creates a new real ULID generator
func NewULID() ULID {
	return &RealULID{}
}

func (u *RealULID) Make() string {
	return ulid.Make().String()
}
