package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Address versions of the c32check address scheme
const (
	AddressVersionMainnetSingleSig byte = 22 // SP...
	AddressVersionMainnetMultiSig  byte = 20 // SM...
	AddressVersionTestnetSingleSig byte = 26 // ST...
	AddressVersionTestnetMultiSig  byte = 21 // SN...
)

const (
	c32Alphabet      = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	hash160Length    = 20
	checksumLength   = 4
	addressPrefix    = 'S'
	minAddressLength = 28
	maxAddressLength = 42
)

var c32Normalizer = strings.NewReplacer("O", "0", "L", "1", "I", "1")

// Address is a parsed c32check address: a network version byte and the hash160 identity
type Address struct {
	Version byte
	Hash160 [hash160Length]byte
}

// ParseAddress validates and normalizes an address string
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) < minAddressLength || len(s) > maxAddressLength {
		return Address{}, fmt.Errorf("%w: malformed address %q", ErrInvalidInput, s)
	}

	s = c32Normalizer.Replace(strings.ToUpper(s))
	if s[0] != addressPrefix {
		return Address{}, fmt.Errorf("%w: address %q must start with %q", ErrInvalidInput, s, addressPrefix)
	}

	version := strings.IndexByte(c32Alphabet, s[1])
	if version < 0 {
		return Address{}, fmt.Errorf("%w: address %q has an invalid version character", ErrInvalidInput, s)
	}

	payload, err := c32Decode(s[2:])
	if err != nil {
		return Address{}, fmt.Errorf("%w: address %q: %v", ErrInvalidInput, s, err)
	}
	if len(payload) != hash160Length+checksumLength {
		return Address{}, fmt.Errorf("%w: address %q has an invalid length", ErrInvalidInput, s)
	}

	data := payload[:hash160Length]
	checksum := payload[hash160Length:]
	if !bytes.Equal(checksum, c32Checksum(byte(version), data)) {
		return Address{}, fmt.Errorf("%w: address %q has an invalid checksum", ErrInvalidInput, s)
	}

	addr := Address{Version: byte(version)}
	copy(addr.Hash160[:], data)
	if !addr.KnownVersion() {
		return Address{}, fmt.Errorf("%w: address %q has an unsupported version %d", ErrInvalidInput, s, version)
	}

	return addr, nil
}

// AddressFromHash builds an address from a version byte and a hash160
func AddressFromHash(version byte, hash160 []byte) (Address, error) {
	if len(hash160) != hash160Length {
		return Address{}, fmt.Errorf("%w: hash160 must be %d bytes", ErrInvalidInput, hash160Length)
	}
	addr := Address{Version: version}
	copy(addr.Hash160[:], hash160)
	return addr, nil
}

// String returns the canonical c32check encoding of the address
func (a Address) String() string {
	payload := make([]byte, 0, hash160Length+checksumLength)
	payload = append(payload, a.Hash160[:]...)
	payload = append(payload, c32Checksum(a.Version, a.Hash160[:])...)
	return string(addressPrefix) + string(c32Alphabet[a.Version&0x1f]) + c32Encode(payload)
}

// IdentityHash returns the network-independent identity of the address (hex hash160)
func (a Address) IdentityHash() string {
	return hex.EncodeToString(a.Hash160[:])
}

// Mainnet reports whether the address belongs to the mainnet network
func (a Address) Mainnet() bool {
	return a.Version == AddressVersionMainnetSingleSig || a.Version == AddressVersionMainnetMultiSig
}

// OtherNetwork returns the same identity expressed on the other network,
// keeping single-sig and multi-sig apart
func (a Address) OtherNetwork() Address {
	switch a.Version {
	case AddressVersionMainnetSingleSig:
		a.Version = AddressVersionTestnetSingleSig
	case AddressVersionTestnetSingleSig:
		a.Version = AddressVersionMainnetSingleSig
	case AddressVersionMainnetMultiSig:
		a.Version = AddressVersionTestnetMultiSig
	case AddressVersionTestnetMultiSig:
		a.Version = AddressVersionMainnetMultiSig
	}
	return a
}

// KnownVersion reports whether the version byte is one of the supported versions
func (a Address) KnownVersion() bool {
	switch a.Version {
	case AddressVersionMainnetSingleSig,
		AddressVersionMainnetMultiSig,
		AddressVersionTestnetSingleSig,
		AddressVersionTestnetMultiSig:
		return true
	}
	return false
}

// NormalizeAddress parses an address and returns its canonical string form
func NormalizeAddress(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// IdentityHashOf parses an address and returns its identity hash
func IdentityHashOf(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.IdentityHash(), nil
}

// SameIdentity reports whether two address strings refer to the same key,
// regardless of the network version they are expressed in.
// Unparseable addresses are never equal.
func SameIdentity(a, b string) bool {
	ha, err := IdentityHashOf(a)
	if err != nil {
		return false
	}
	hb, err := IdentityHashOf(b)
	if err != nil {
		return false
	}
	return ha == hb
}

func c32Checksum(version byte, data []byte) []byte {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, version)
	buf = append(buf, data...)
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// c32Encode encodes bytes with the crockford-style c32 alphabet,
// preserving leading zero bytes as leading '0' characters
func c32Encode(input []byte) string {
	result := make([]byte, 0, len(input)*8/5+2)
	carry := 0
	carryBits := 0

	for i := len(input) - 1; i >= 0; i-- {
		current := int(input[i])
		lowBitsToTake := 5 - carryBits
		lowBits := current & ((1 << lowBitsToTake) - 1)
		result = append(result, c32Alphabet[(lowBits<<carryBits)+carry])
		carryBits = 8 + carryBits - 5
		carry = current >> (8 - carryBits)

		if carryBits >= 5 {
			result = append(result, c32Alphabet[carry&0x1f])
			carryBits -= 5
			carry >>= 5
		}
	}
	if carryBits > 0 {
		result = append(result, c32Alphabet[carry])
	}

	// drop leading zeros of the encoding (result is little-endian here)
	for len(result) > 0 && result[len(result)-1] == c32Alphabet[0] {
		result = result[:len(result)-1]
	}
	// re-add one zero per leading zero byte of the input
	for _, b := range input {
		if b != 0 {
			break
		}
		result = append(result, c32Alphabet[0])
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return string(result)
}

// c32Decode is the inverse of c32Encode
func c32Decode(input string) ([]byte, error) {
	digits := make([]int, len(input))
	for i := 0; i < len(input); i++ {
		d := strings.IndexByte(c32Alphabet, input[len(input)-1-i])
		if d < 0 {
			return nil, fmt.Errorf("invalid c32 character %q", input[len(input)-1-i])
		}
		digits[i] = d
	}

	result := make([]byte, 0, len(input)*5/8+1)
	carry := 0
	carryBits := 0
	for _, d := range digits {
		carry += d << carryBits
		carryBits += 5
		if carryBits >= 8 {
			result = append(result, byte(carry&0xff))
			carryBits -= 8
			carry >>= 8
		}
	}
	if carryBits > 0 {
		result = append(result, byte(carry))
	}

	for len(result) > 0 && result[len(result)-1] == 0 {
		result = result[:len(result)-1]
	}
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] != 0 {
			break
		}
		result = append(result, 0)
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}
