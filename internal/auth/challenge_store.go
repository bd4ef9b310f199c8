package auth

import (
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/domain"
)

// ChallengeStore holds issued challenges in process memory.
// Challenges do not survive a restart. Expired challenges are swept when a new one is
// inserted; there is no background timer.
//
//go:generate mockgen -source=challenge_store.go -destination=../mocks/challenge_store.go -package=mocks -mock_names=ChallengeStore=MockChallengeStore
type ChallengeStore interface {
	// Put stores a challenge under its id and sweeps expired ones
	Put(challenge domain.Challenge)

	// Take removes the challenge and returns it if it exists and has not expired.
	// The challenge is removed in either case.
	Take(id string) (domain.Challenge, bool)

	// Len returns the number of stored challenges, expired ones included
	Len() int
}

type challengeStore struct {
	// expiry is checked against the injected clock, so go-cache never expires items itself
	items *cache.Cache
	clock adapter.Clock
	// mu makes Take a single get-and-delete step
	mu sync.Mutex
}

// NewChallengeStore creates an empty challenge store
func NewChallengeStore(clock adapter.Clock) ChallengeStore {
	return &challengeStore{
		items: cache.New(cache.NoExpiration, 0),
		clock: clock,
	}
}

func (s *challengeStore) Put(challenge domain.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for id, item := range s.items.Items() {
		if c, ok := item.Object.(domain.Challenge); !ok || c.Expired(now) {
			s.items.Delete(id)
		}
	}

	s.items.Set(challenge.ID, challenge, cache.NoExpiration)
}

func (s *challengeStore) Take(id string) (domain.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, found := s.items.Get(id)
	if !found {
		return domain.Challenge{}, false
	}
	s.items.Delete(id)

	challenge, ok := item.(domain.Challenge)
	if !ok || challenge.Expired(s.clock.Now()) {
		return domain.Challenge{}, false
	}
	return challenge, true
}

func (s *challengeStore) Len() int {
	return s.items.ItemCount()
}
