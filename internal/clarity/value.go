// Package clarity implements the typed-value serialization used for structured-data signing.
// Values are encoded with the consensus byte format so that a client library and the server
// hash identical bytes for the same logical tuple.
package clarity

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/feral-file/ff-registry/internal/domain"
)

// Type prefixes of the consensus encoding
const (
	typeInt               byte = 0x00
	typeUInt              byte = 0x01
	typeBuffer            byte = 0x02
	typeBoolTrue          byte = 0x03
	typeBoolFalse         byte = 0x04
	typeStandardPrincipal byte = 0x05
	typeTuple             byte = 0x0c
	typeStringASCII       byte = 0x0d
	typeStringUTF8        byte = 0x0e
)

const maxTupleKeyLength = 128

// Value is a typed value that can be serialized for signing
type Value interface {
	// Serialize returns the consensus encoding of the value
	Serialize() ([]byte, error)

	// TypeName returns the type name used in the JSON representation
	TypeName() string
}

// UInt is an unsigned 128-bit integer
type UInt struct {
	V *big.Int
}

// NewUInt creates a UInt from a uint64
func NewUInt(v uint64) UInt {
	return UInt{V: new(big.Int).SetUint64(v)}
}

func (u UInt) Serialize() ([]byte, error) {
	if u.V == nil || u.V.Sign() < 0 || u.V.BitLen() > 128 {
		return nil, fmt.Errorf("%w: uint out of range", domain.ErrInvalidInput)
	}
	out := make([]byte, 17)
	out[0] = typeUInt
	u.V.FillBytes(out[1:])
	return out, nil
}

func (u UInt) TypeName() string { return "uint" }

// Bool is a boolean value
type Bool bool

func (b Bool) Serialize() ([]byte, error) {
	if b {
		return []byte{typeBoolTrue}, nil
	}
	return []byte{typeBoolFalse}, nil
}

func (b Bool) TypeName() string { return "bool" }

// Buffer is an opaque byte buffer
type Buffer []byte

func (b Buffer) Serialize() ([]byte, error) {
	return withLength(typeBuffer, b), nil
}

func (b Buffer) TypeName() string { return "buffer" }

// StringASCII is an ASCII string
type StringASCII string

func (s StringASCII) Serialize() ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7e || (s[i] < 0x20 && s[i] != '\t' && s[i] != '\n' && s[i] != '\r') {
			return nil, fmt.Errorf("%w: string-ascii contains a non-printable character at %d", domain.ErrInvalidInput, i)
		}
	}
	return withLength(typeStringASCII, []byte(s)), nil
}

func (s StringASCII) TypeName() string { return "string-ascii" }

// StringUTF8 is a UTF-8 string
type StringUTF8 string

func (s StringUTF8) Serialize() ([]byte, error) {
	return withLength(typeStringUTF8, []byte(s)), nil
}

func (s StringUTF8) TypeName() string { return "string-utf8" }

// StandardPrincipal is a principal identified by an address
type StandardPrincipal struct {
	Address domain.Address
}

// NewPrincipal parses an address string into a standard principal
func NewPrincipal(address string) (StandardPrincipal, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return StandardPrincipal{}, err
	}
	return StandardPrincipal{Address: addr}, nil
}

func (p StandardPrincipal) Serialize() ([]byte, error) {
	out := make([]byte, 0, 22)
	out = append(out, typeStandardPrincipal, p.Address.Version)
	out = append(out, p.Address.Hash160[:]...)
	return out, nil
}

func (p StandardPrincipal) TypeName() string { return "principal" }

// Tuple is a named collection of values; fields are serialized in key order
type Tuple map[string]Value

func (t Tuple) Serialize() ([]byte, error) {
	keys := t.Keys()

	out := make([]byte, 5, 64)
	out[0] = typeTuple
	binary.BigEndian.PutUint32(out[1:], uint32(len(keys))) //nolint:gosec,G115

	for _, k := range keys {
		if len(k) == 0 || len(k) > maxTupleKeyLength {
			return nil, fmt.Errorf("%w: invalid tuple key %q", domain.ErrInvalidInput, k)
		}
		v := t[k]
		if v == nil {
			return nil, fmt.Errorf("%w: tuple field %q has no value", domain.ErrInvalidInput, k)
		}
		encoded, err := v.Serialize()
		if err != nil {
			return nil, fmt.Errorf("tuple field %q: %w", k, err)
		}
		out = append(out, byte(len(k)))
		out = append(out, k...)
		out = append(out, encoded...)
	}

	return out, nil
}

func (t Tuple) TypeName() string { return "tuple" }

// Keys returns the tuple keys in serialization order
func (t Tuple) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func withLength(prefix byte, data []byte) []byte {
	out := make([]byte, 5+len(data))
	out[0] = prefix
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data))) //nolint:gosec,G115
	copy(out[5:], data)
	return out
}
