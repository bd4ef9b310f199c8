package clarity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StructuredDataPrefix is prepended to the domain and message hashes ("SIP018")
var StructuredDataPrefix = []byte{0x53, 0x49, 0x50, 0x30, 0x31, 0x38}

// StructuredDataHash returns the digest a structured-data signature is produced over:
// sha256(prefix || sha256(domain) || sha256(message))
func StructuredDataHash(domain, message Value) ([]byte, error) {
	domainBytes, err := domain.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize domain: %w", err)
	}
	messageBytes, err := message.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	domainHash := sha256.Sum256(domainBytes)
	messageHash := sha256.Sum256(messageBytes)

	buf := make([]byte, 0, len(StructuredDataPrefix)+2*sha256.Size)
	buf = append(buf, StructuredDataPrefix...)
	buf = append(buf, domainHash[:]...)
	buf = append(buf, messageHash[:]...)

	digest := sha256.Sum256(buf)
	return digest[:], nil
}

// JSONValue is the JSON representation of a typed value returned to clients so they can
// rebuild the exact tuple to sign
type JSONValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ToJSON converts a value to its JSON representation
func ToJSON(v Value) JSONValue {
	switch t := v.(type) {
	case UInt:
		return JSONValue{Type: t.TypeName(), Value: t.V.String()}
	case Bool:
		return JSONValue{Type: t.TypeName(), Value: bool(t)}
	case Buffer:
		return JSONValue{Type: t.TypeName(), Value: "0x" + hex.EncodeToString(t)}
	case StringASCII:
		return JSONValue{Type: t.TypeName(), Value: string(t)}
	case StringUTF8:
		return JSONValue{Type: t.TypeName(), Value: string(t)}
	case StandardPrincipal:
		return JSONValue{Type: t.TypeName(), Value: t.Address.String()}
	case Tuple:
		fields := make(map[string]JSONValue, len(t))
		for k, fv := range t {
			fields[k] = ToJSON(fv)
		}
		return JSONValue{Type: t.TypeName(), Value: fields}
	default:
		return JSONValue{Type: v.TypeName()}
	}
}
