package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/domain"
)

func TestBuildMessage(t *testing.T) {
	params := auth.MessageParams{
		URL:       "https://api.example.com/x402",
		Owner:     addr1,
		NewOwner:  addr2,
		Nonce:     "ab12",
		Timestamp: 1767225600000,
	}

	tests := []struct {
		action auth.Action
		fields []string
	}{
		{action: auth.ActionDeleteEndpoint, fields: []string{"action", "owner", "timestamp", "url"}},
		{action: auth.ActionListMyEndpoints, fields: []string{"action", "owner", "timestamp"}},
		{action: auth.ActionTransferOwnership, fields: []string{"action", "new-owner", "owner", "timestamp", "url"}},
		{action: auth.ActionChallengeResponse, fields: []string{"action", "nonce", "owner", "timestamp"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			msg, err := auth.BuildMessage(tt.action, params)
			require.NoError(t, err)
			assert.Equal(t, tt.fields, msg.Keys())
		})
	}
}

func TestBuildMessage_DistinctPerAction(t *testing.T) {
	params := auth.MessageParams{URL: "https://api.example.com/x402", Owner: addr1, NewOwner: addr2, Nonce: "n", Timestamp: 1}

	seen := map[string]auth.Action{}
	for _, action := range auth.AllActions {
		msg, err := auth.BuildMessage(action, params)
		require.NoError(t, err)
		encoded, err := msg.Serialize()
		require.NoError(t, err)
		prev, dup := seen[string(encoded)]
		assert.False(t, dup, "%s encodes like %s", action, prev)
		seen[string(encoded)] = action
	}
}

func TestBuildMessage_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		action auth.Action
		params auth.MessageParams
	}{
		{name: "unknown action", action: "rename-endpoint", params: auth.MessageParams{Owner: addr1}},
		{name: "missing owner", action: auth.ActionListMyEndpoints},
		{name: "malformed owner", action: auth.ActionListMyEndpoints, params: auth.MessageParams{Owner: "0x1234"}},
		{name: "delete without url", action: auth.ActionDeleteEndpoint, params: auth.MessageParams{Owner: addr1}},
		{name: "transfer without new owner", action: auth.ActionTransferOwnership, params: auth.MessageParams{Owner: addr1, URL: "https://a.example"}},
		{name: "challenge without nonce", action: auth.ActionChallengeResponse, params: auth.MessageParams{Owner: addr1}},
		{name: "non-ascii url", action: auth.ActionDeleteEndpoint, params: auth.MessageParams{Owner: addr1, URL: "https://bücher.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.BuildMessage(tt.action, tt.params)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestNewDomain(t *testing.T) {
	mainnet, err := auth.NewDomain("ff-registry", "1.0.0", auth.NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, auth.ChainIDMainnet, mainnet.ChainID)

	testnet, err := auth.NewDomain("ff-registry", "1.0.0", auth.NetworkTestnet)
	require.NoError(t, err)
	assert.Equal(t, uint64(2147483648), testnet.ChainID)

	assert.Equal(t, []string{"chain-id", "name", "version"}, mainnet.Tuple().Keys())

	_, err = auth.NewDomain("ff-registry", "1.0.0", "devnet")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = auth.NewDomain("", "1.0.0", auth.NetworkMainnet)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
