package auth_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/domain"
)

func TestHash160(t *testing.T) {
	pub, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(auth.Hash160(pub)))
}

func TestSigner_Address(t *testing.T) {
	signer, err := auth.NewSigner(key1)
	require.NoError(t, err)
	assert.Equal(t, addr1, signer.Address(auth.NetworkMainnet))
	assert.Equal(t, addr1Testnet, signer.Address(auth.NetworkTestnet))

	compressed, err := auth.NewSigner("0x" + key2 + "01")
	require.NoError(t, err)
	assert.Equal(t, addr2, compressed.Address(auth.NetworkMainnet))

	_, err = auth.NewSigner("zz")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVerifySignature(t *testing.T) {
	signer, err := auth.NewSigner(key1)
	require.NoError(t, err)
	d, err := auth.NewDomain("ff-registry", "1.0.0", auth.NetworkMainnet)
	require.NoError(t, err)
	msg, err := auth.BuildMessage(auth.ActionListMyEndpoints, auth.MessageParams{Owner: addr1, Timestamp: 1767225600000})
	require.NoError(t, err)

	sig, err := signer.Sign(d, msg)
	require.NoError(t, err)
	require.Len(t, sig, 130)

	digest := digestOf(t, d, msg)

	withV := func(v byte) string {
		raw, err := hex.DecodeString(sig)
		require.NoError(t, err)
		raw[64] = v
		return hex.EncodeToString(raw)
	}
	raw, err := hex.DecodeString(sig)
	require.NoError(t, err)
	recovery := raw[64]

	tests := []struct {
		name      string
		signature string
		owner     string
		wantErr   error
	}{
		{name: "valid", signature: sig, owner: addr1},
		{name: "0x prefix", signature: "0x" + sig, owner: addr1},
		{name: "upper-case hex", signature: "0X" + hexUpper(sig), owner: addr1},
		{name: "v as 27/28", signature: withV(recovery + 27), owner: addr1},
		{name: "testnet owner", signature: sig, owner: addr1Testnet},
		{name: "wrong owner", signature: sig, owner: addr2, wantErr: domain.ErrSignatureInvalid},
		{name: "flipped recovery id", signature: withV(1 - recovery), owner: addr1, wantErr: domain.ErrSignatureInvalid},
		{name: "bad recovery id", signature: withV(2), owner: addr1, wantErr: domain.ErrSignatureInvalid},
		{name: "truncated", signature: sig[:128], owner: addr1, wantErr: domain.ErrSignatureInvalid},
		{name: "not hex", signature: "xyz", owner: addr1, wantErr: domain.ErrSignatureInvalid},
		{name: "zero r and s", signature: hex.EncodeToString(make([]byte, 65)), owner: addr1, wantErr: domain.ErrSignatureInvalid},
		{name: "malformed owner", signature: sig, owner: "SPX", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.VerifySignature(digest, tt.signature, tt.owner)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("other digest", func(t *testing.T) {
		other := sha256.Sum256([]byte("something else"))
		assert.ErrorIs(t, auth.VerifySignature(other[:], sig, addr1), domain.ErrSignatureInvalid)
	})
}

func TestRecoverAddresses(t *testing.T) {
	signer, err := auth.NewSigner(key2)
	require.NoError(t, err)
	d, err := auth.NewDomain("ff-registry", "1.0.0", auth.NetworkTestnet)
	require.NoError(t, err)
	msg, err := auth.BuildMessage(auth.ActionDeleteEndpoint, auth.MessageParams{Owner: addr2, URL: "https://api.example.com/x402", Timestamp: 1})
	require.NoError(t, err)
	sig, err := signer.Sign(d, msg)
	require.NoError(t, err)

	mainnet, testnet, err := auth.RecoverAddresses(digestOf(t, d, msg), sig)
	require.NoError(t, err)
	assert.Equal(t, addr2, mainnet.String())
	assert.Equal(t, signer.Address(auth.NetworkTestnet), testnet.String())
	assert.Equal(t, mainnet.IdentityHash(), testnet.IdentityHash())
}

func digestOf(t *testing.T, d auth.Domain, msg interface{ Serialize() ([]byte, error) }) []byte {
	t.Helper()
	encodedDomain, err := d.Tuple().Serialize()
	require.NoError(t, err)
	encodedMsg, err := msg.Serialize()
	require.NoError(t, err)

	dh := sha256.Sum256(encodedDomain)
	mh := sha256.Sum256(encodedMsg)
	buf := append([]byte("SIP018"), dh[:]...)
	buf = append(buf, mh[:]...)
	digest := sha256.Sum256(buf)
	return digest[:]
}

func hexUpper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
