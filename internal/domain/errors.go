package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the registry and the authenticator
// wraps exactly one of these so callers can map them with errors.Is.
var (
	// ErrNotFound is returned when an entry, URL or challenge is absent
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized is returned when ownership could not be proven
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidInput is returned for malformed addresses, empty required fields and similar
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageFailure is returned when the key-value backend fails a read or write
	ErrStorageFailure = errors.New("storage failure")
)

var (
	// ErrEntryNotFound is returned when a registry entry does not exist
	ErrEntryNotFound = fmt.Errorf("registry entry %w", ErrNotFound)

	// ErrEntryExists is returned when a URL is already registered by another owner
	ErrEntryExists = fmt.Errorf("%w: url already registered", ErrInvalidInput)

	// ErrSelfTransfer is returned when the new owner is the current owner
	ErrSelfTransfer = fmt.Errorf("%w: cannot transfer an entry to its current owner", ErrInvalidInput)

	// ErrChallengeNotFound is returned when a challenge is missing, expired or already consumed
	ErrChallengeNotFound = fmt.Errorf("%w: challenge not found or expired", ErrNotAuthorized)

	// ErrChallengeOwnerMismatch is returned when a challenge was issued for a different owner
	ErrChallengeOwnerMismatch = fmt.Errorf("%w: challenge was issued for a different owner", ErrNotAuthorized)

	// ErrTimestampOutOfRange is returned when a signed timestamp is stale or too far in the future
	ErrTimestampOutOfRange = fmt.Errorf("%w: timestamp out of range", ErrNotAuthorized)

	// ErrSignatureInvalid is returned when signature recovery fails or the signer is not the owner
	ErrSignatureInvalid = fmt.Errorf("%w: invalid signature", ErrNotAuthorized)

	// ErrMissingCredential is returned when neither a signature nor a payment credential was provided
	ErrMissingCredential = fmt.Errorf("%w: missing credential", ErrNotAuthorized)
)
