package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/cli"
	"github.com/feral-file/ff-registry/internal/clarity"
	"github.com/feral-file/ff-registry/internal/mocks"
)

const (
	key1         = "0x0000000000000000000000000000000000000000000000000000000000000001"
	addr1        = "SP1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTS1X0BPM"
	addr1Testnet = "ST1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTSQDA7QF"
	addr2        = "SP3AZN3BSQYJ5VWMNG92N88Z4G9498VYSKG43P6K"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t *testing.T) *mocks.MockClock {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()
	return clock
}

func run(t *testing.T, clock adapter.Clock, stdin []byte, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand(&out, clock)
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.Bytes(), err
}

func TestAddressCommand(t *testing.T) {
	out, err := run(t, fixedClock(t), nil, "address", "--key", key1)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, addr1, got["mainnet"])
	assert.Equal(t, addr1Testnet, got["testnet"])
}

func TestAddressCommandReadsKeyFromEnv(t *testing.T) {
	t.Setenv("FF_REGISTRY_PRIVATE_KEY", key1)
	out, err := run(t, fixedClock(t), nil, "address")
	require.NoError(t, err)
	assert.Contains(t, string(out), addr1)
}

func TestCommandsRequireKey(t *testing.T) {
	t.Setenv("FF_REGISTRY_PRIVATE_KEY", "")
	_, err := run(t, fixedClock(t), nil, "address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private key is required")
}

func TestSignCommand(t *testing.T) {
	clock := fixedClock(t)
	out, err := run(t, clock, nil,
		"sign", "--key", key1,
		"--action", "transfer-ownership",
		"--url", "https://api.example.com/x402",
		"--new-owner", addr2)
	require.NoError(t, err)

	var got struct {
		Signer    string `json:"signer"`
		Signature string `json:"signature"`
		Timestamp uint64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, addr1, got.Signer)
	assert.Equal(t, uint64(now.UnixMilli()), got.Timestamp)

	d, err := auth.NewDomain("ff-registry", "1.0.0", auth.NetworkMainnet)
	require.NoError(t, err)
	msg, err := auth.BuildMessage(auth.ActionTransferOwnership, auth.MessageParams{
		URL:       "https://api.example.com/x402",
		Owner:     addr1,
		NewOwner:  addr2,
		Timestamp: got.Timestamp,
	})
	require.NoError(t, err)
	digest, err := clarity.StructuredDataHash(d.Tuple(), msg)
	require.NoError(t, err)
	assert.NoError(t, auth.VerifySignature(digest, got.Signature, addr1))
}

func TestSignCommandRejectsInvalidInput(t *testing.T) {
	clock := fixedClock(t)

	_, err := run(t, clock, nil, "sign", "--key", key1, "--action", "delete-endpoint")
	assert.Error(t, err, "url is required")

	_, err = run(t, clock, nil, "sign", "--key", key1, "--action", "challenge-response")
	assert.Error(t, err)

	_, err = run(t, clock, nil, "sign", "--key", key1, "--action", "list-my-endpoints", "--network", "devnet")
	assert.Error(t, err)

	_, err = run(t, clock, nil, "sign", "--key", key1)
	assert.Error(t, err, "action is required")
}

func TestChallengeCommand(t *testing.T) {
	clock := fixedClock(t)
	d, err := auth.NewDomain("ff-registry", "1.0.0", auth.NetworkTestnet)
	require.NoError(t, err)
	authenticator := auth.NewAuthenticator(auth.Config{Domain: d}, auth.NewChallengeStore(clock), clock, adapter.NewRandom(), adapter.NewUUID(), nil)

	ctx := context.Background()
	challenge, err := authenticator.IssueChallenge(ctx, addr1)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]any{
		"error":     map[string]string{"code": "challenge_required"},
		"challenge": challenge,
	})
	require.NoError(t, err)

	out, err := run(t, clock, body, "challenge", "--key", key1)
	require.NoError(t, err)

	var got struct {
		ChallengeID string `json:"challengeId"`
		Signature   string `json:"signature"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, challenge.ChallengeID, got.ChallengeID)
	assert.NoError(t, authenticator.VerifyChallenge(ctx, got.ChallengeID, got.Signature, addr1))
}

func TestChallengeCommandRejectsGarbage(t *testing.T) {
	_, err := run(t, fixedClock(t), []byte(`{"foo":1}`), "challenge", "--key", key1)
	assert.Error(t, err)

	_, err = run(t, fixedClock(t), []byte(`not json`), "challenge", "--key", key1)
	assert.Error(t, err)
}
