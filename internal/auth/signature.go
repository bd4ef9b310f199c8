package auth

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // hash160 is defined over RIPEMD-160

	"github.com/feral-file/ff-registry/internal/domain"
)

const signatureLength = 65

// DecodeSignature parses a hex r||s||v signature (optional 0x prefix) and returns it in
// the [R || S || V] form with V normalized to 0 or 1
func DecodeSignature(signature string) ([]byte, error) {
	signature = strings.TrimSpace(signature)
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(strings.ToLower(signature))
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not hex: %v", domain.ErrSignatureInvalid, err)
	}
	if len(sig) != signatureLength {
		return nil, fmt.Errorf("%w: signature must be %d bytes, got %d", domain.ErrSignatureInvalid, signatureLength, len(sig))
	}

	switch v := sig[64]; v {
	case 0, 1:
	case 27, 28:
		sig[64] = v - 27
	default:
		return nil, fmt.Errorf("%w: unsupported recovery id %d", domain.ErrSignatureInvalid, v)
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, false) {
		return nil, fmt.Errorf("%w: signature values out of range", domain.ErrSignatureInvalid)
	}
	return sig, nil
}

// RecoverAddresses recovers the signing key from a digest and returns the signer's
// address on both networks
func RecoverAddresses(digest []byte, signature string) (mainnet domain.Address, testnet domain.Address, err error) {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return domain.Address{}, domain.Address{}, err
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return domain.Address{}, domain.Address{}, fmt.Errorf("%w: public key recovery failed: %v", domain.ErrSignatureInvalid, err)
	}

	h := Hash160(crypto.CompressPubkey(pub))
	mainnet, err = domain.AddressFromHash(domain.AddressVersionMainnetSingleSig, h)
	if err != nil {
		return domain.Address{}, domain.Address{}, err
	}
	testnet, err = domain.AddressFromHash(domain.AddressVersionTestnetSingleSig, h)
	if err != nil {
		return domain.Address{}, domain.Address{}, err
	}
	return mainnet, testnet, nil
}

// VerifySignature checks that the signature over digest was produced by the key behind
// expectedOwner. Either network form of the recovered key is accepted.
func VerifySignature(digest []byte, signature string, expectedOwner string) error {
	expected, err := domain.ParseAddress(expectedOwner)
	if err != nil {
		return err
	}

	mainnet, testnet, err := RecoverAddresses(digest, signature)
	if err != nil {
		return err
	}

	for _, candidate := range []domain.Address{mainnet, testnet} {
		if candidate.IdentityHash() == expected.IdentityHash() {
			return nil
		}
	}
	return fmt.Errorf("%w: signer %s is not %s", domain.ErrSignatureInvalid, mainnet, expectedOwner)
}

// Hash160 returns RIPEMD160(SHA256(data))
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}
