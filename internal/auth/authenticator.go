package auth

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/clarity"
	"github.com/feral-file/ff-registry/internal/domain"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/metrics"
)

const nonceLength = 32

// Authenticator proves that a caller controls the key behind an owner address.
// A nil error means the proof holds.
//
//go:generate mockgen -source=authenticator.go -destination=../mocks/authenticator.go -package=mocks -mock_names=Authenticator=MockAuthenticator
type Authenticator interface {
	// Domain returns the signing domain of this deployment
	Domain() Domain

	// IssueChallenge mints a one-time nonce bound to owner
	IssueChallenge(ctx context.Context, owner string) (*ChallengeResponse, error)

	// VerifyTimestamped checks the freshness of timestamp and the signature over message
	VerifyTimestamped(ctx context.Context, d Domain, message clarity.Tuple, signature, expectedOwner string, timestamp uint64) error

	// VerifyChallenge consumes the challenge and checks the signature over its
	// challenge-response message. The challenge is consumed whatever the outcome.
	VerifyChallenge(ctx context.Context, challengeID, signature, expectedOwner string) error
}

// ChallengeResponse is returned to a caller that must sign a challenge
type ChallengeResponse struct {
	ChallengeID string            `json:"challengeId"`
	Domain      clarity.JSONValue `json:"domain"`
	Message     clarity.JSONValue `json:"message"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

// Config holds the authenticator windows
type Config struct {
	Domain          Domain
	ChallengeTTL    time.Duration
	TimestampMaxAge time.Duration
	TimestampSkew   time.Duration
}

type authenticator struct {
	cfg        Config
	challenges ChallengeStore
	clock      adapter.Clock
	random     adapter.Random
	uuid       adapter.UUID
	metrics    *metrics.Metrics
}

// NewAuthenticator creates an authenticator. Zero windows take the default values.
func NewAuthenticator(
	cfg Config,
	challenges ChallengeStore,
	clock adapter.Clock,
	random adapter.Random,
	uuid adapter.UUID,
	m *metrics.Metrics,
) Authenticator {
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = domain.DEFAULT_CHALLENGE_TTL
	}
	if cfg.TimestampMaxAge <= 0 {
		cfg.TimestampMaxAge = domain.DEFAULT_TIMESTAMP_MAX_AGE
	}
	if cfg.TimestampSkew <= 0 {
		cfg.TimestampSkew = domain.DEFAULT_TIMESTAMP_MAX_SKEW
	}
	return &authenticator{
		cfg:        cfg,
		challenges: challenges,
		clock:      clock,
		random:     random,
		uuid:       uuid,
		metrics:    m,
	}
}

func (a *authenticator) Domain() Domain {
	return a.cfg.Domain
}

// IssueChallenge stores a random nonce for owner and returns the message to sign
func (a *authenticator) IssueChallenge(ctx context.Context, owner string) (*ChallengeResponse, error) {
	owner, err := domain.NormalizeAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	nonce := make([]byte, nonceLength)
	if _, err := a.random.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := a.clock.Now().UTC()
	challenge := domain.Challenge{
		ID:        a.uuid.NewString(),
		Nonce:     hex.EncodeToString(nonce),
		Owner:     owner,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.cfg.ChallengeTTL),
	}

	message, err := challengeMessage(challenge)
	if err != nil {
		return nil, err
	}

	a.challenges.Put(challenge)
	a.metrics.IncrementChallengeIssued()
	logger.DebugCtx(ctx, "Challenge issued",
		zap.String("challenge_id", challenge.ID),
		zap.String("owner", owner),
		zap.Time("expires_at", challenge.ExpiresAt))

	return &ChallengeResponse{
		ChallengeID: challenge.ID,
		Domain:      clarity.ToJSON(a.cfg.Domain.Tuple()),
		Message:     clarity.ToJSON(message),
		ExpiresAt:   challenge.ExpiresAt,
	}, nil
}

// VerifyTimestamped rejects stale and future timestamps before touching the signature.
// The timestamp must be the one carried by the signed message.
func (a *authenticator) VerifyTimestamped(ctx context.Context, d Domain, message clarity.Tuple, signature, expectedOwner string, timestamp uint64) (err error) {
	defer func() { a.observe(ctx, "timestamp", expectedOwner, err) }()

	signed, ok := messageTimestamp(message)
	if !ok {
		return fmt.Errorf("%w: message carries no timestamp", domain.ErrTimestampOutOfRange)
	}
	if signed != timestamp {
		return fmt.Errorf("%w: message timestamp %d does not match %d", domain.ErrTimestampOutOfRange, signed, timestamp)
	}
	if err := a.checkTimestamp(timestamp); err != nil {
		return err
	}
	return verify(d, message, signature, expectedOwner)
}

// VerifyChallenge takes the challenge out of the store before any other check
func (a *authenticator) VerifyChallenge(ctx context.Context, challengeID, signature, expectedOwner string) (err error) {
	defer func() { a.observe(ctx, "challenge", expectedOwner, err) }()

	challenge, ok := a.challenges.Take(challengeID)
	if !ok {
		return domain.ErrChallengeNotFound
	}
	if !domain.SameIdentity(challenge.Owner, expectedOwner) {
		return fmt.Errorf("%w: issued for %s", domain.ErrChallengeOwnerMismatch, challenge.Owner)
	}

	message, err := challengeMessage(challenge)
	if err != nil {
		return err
	}
	return verify(a.cfg.Domain, message, signature, expectedOwner)
}

func (a *authenticator) checkTimestamp(timestamp uint64) error {
	now := a.clock.Now().UnixMilli()
	if timestamp > uint64(now+a.cfg.TimestampSkew.Milliseconds()) {
		return fmt.Errorf("%w: %d is in the future", domain.ErrTimestampOutOfRange, timestamp)
	}
	if oldest := now - a.cfg.TimestampMaxAge.Milliseconds(); oldest > 0 && timestamp < uint64(oldest) {
		return fmt.Errorf("%w: %d is older than %s", domain.ErrTimestampOutOfRange, timestamp, a.cfg.TimestampMaxAge)
	}
	return nil
}

func (a *authenticator) observe(ctx context.Context, flow, owner string, err error) {
	a.metrics.ObserveAuth(flow, err)
	if err != nil {
		logger.WarnCtx(ctx, "Ownership verification failed",
			zap.String("flow", flow),
			zap.String("owner", owner),
			zap.Error(err))
	}
}

func messageTimestamp(message clarity.Tuple) (uint64, bool) {
	v, ok := message["timestamp"].(clarity.UInt)
	if !ok || v.V == nil || !v.V.IsUint64() {
		return 0, false
	}
	return v.V.Uint64(), true
}

func challengeMessage(c domain.Challenge) (clarity.Tuple, error) {
	return BuildMessage(ActionChallengeResponse, MessageParams{
		Owner:     c.Owner,
		Nonce:     c.Nonce,
		Timestamp: uint64(c.IssuedAt.UnixMilli()),
	})
}

func verify(d Domain, message clarity.Tuple, signature, expectedOwner string) error {
	if signature == "" {
		return domain.ErrMissingCredential
	}
	digest, err := clarity.StructuredDataHash(d.Tuple(), message)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return VerifySignature(digest, signature, expectedOwner)
}
