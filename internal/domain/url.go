package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// CanonicalizeURL normalizes a service URL so that equivalent spellings map to the same entry id.
// Scheme and host are lower-cased, default ports and fragments are dropped and a trailing slash is trimmed.
func CanonicalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: malformed url: %v", ErrInvalidInput, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: url scheme must be http or https", ErrInvalidInput)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: url host is required", ErrInvalidInput)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: url must not contain credentials", ErrInvalidInput)
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		// IPv6 literal
		host = "[" + host + "]"
	}

	canonical := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     strings.TrimRight(u.EscapedPath(), "/"),
		RawQuery: u.RawQuery,
	}
	// EscapedPath is already escaped
	canonical.RawPath = canonical.Path
	if p, err := url.PathUnescape(canonical.Path); err == nil {
		canonical.Path = p
	}

	return canonical.String(), nil
}

// EntryID returns the content-addressed id of a canonical URL:
// the first 16 hex characters of its SHA-256 digest
func EntryID(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])[:ENTRY_ID_LENGTH]
}

// HostOf returns the lower-cased host name of a URL, or "" if it cannot be parsed
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
