package adapter

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Random defines an interface for cryptographic randomness to enable mocking
//
//go:generate mockgen -source=random.go -destination=../mocks/random.go -package=mocks -mock_names=Random=MockRandom,UUID=MockUUID
type Random interface {
	// Read fills b with cryptographically secure random bytes
	Read(b []byte) (int, error)
}

// RealRandom implements Random using crypto/rand
type RealRandom struct{}

// NewRandom creates a new real random source
func NewRandom() Random {
	return &RealRandom{}
}

func (r *RealRandom) Read(b []byte) (int, error) {
	return rand.Read(b)
}

// UUID defines an interface for UUID generation to enable mocking
type UUID interface {
	// NewString returns a new random (v4) UUID string
	NewString() string
}

// RealUUID implements UUID using google/uuid
type RealUUID struct{}

// NewUUID creates a new real UUID generator
func NewUUID() UUID {
	return &RealUUID{}
}

func (u *RealUUID) NewString() string {
	return uuid.NewString()
}
