package auth

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/feral-file/ff-registry/internal/clarity"
	"github.com/feral-file/ff-registry/internal/domain"
)

// Signer produces structured-data signatures with a secp256k1 private key.
// It is the client half of the protocol, used by the signing CLI and in tests.
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner parses a hex private key. The 33-byte form with a trailing 01
// compression flag is accepted.
func NewSigner(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if len(hexKey) == 66 && strings.HasSuffix(hexKey, "01") {
		hexKey = hexKey[:64]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", domain.ErrInvalidInput, err)
	}
	return &Signer{key: key}, nil
}

// Address returns the signer's single-sig address on the network
func (s *Signer) Address(network Network) string {
	addr, _ := domain.AddressFromHash(network.AddressVersion(), Hash160(crypto.CompressPubkey(&s.key.PublicKey)))
	return addr.String()
}

// Sign returns the hex r||s||v signature over the structured-data hash of message
func (s *Signer) Sign(d Domain, message clarity.Tuple) (string, error) {
	digest, err := clarity.StructuredDataHash(d.Tuple(), message)
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	return common.Bytes2Hex(sig), nil
}
