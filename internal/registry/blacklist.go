package registry

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/domain"
)

// BlacklistRegistry defines the interface for blacklist operations
//
//go:generate mockgen -source=blacklist.go -destination=../mocks/blacklist.go -package=mocks -mock_names=BlacklistRegistry=MockBlacklistRegistry
type BlacklistRegistry interface {
	// IsHostBlacklisted checks if the host of a URL, or one of its parent domains, is blacklisted
	IsHostBlacklisted(rawURL string) bool

	// IsOwnerBlacklisted checks if an owner address is blacklisted, in either network form
	IsOwnerBlacklisted(owner string) bool
}

// BlacklistData represents the structure of the blacklist.json file
type BlacklistData struct {
	Hosts  []string `json:"hosts"`
	Owners []string `json:"owners"`
}

// BlacklistRegistryLoader loads a blacklist from a JSON file
type BlacklistRegistryLoader interface {
	Load(filePath string) (BlacklistRegistry, error)
}

type blacklistRegistryLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewBlacklistRegistryLoader creates a new blacklist loader
func NewBlacklistRegistryLoader(fs adapter.FileSystem, json adapter.JSON) BlacklistRegistryLoader {
	return &blacklistRegistryLoader{fs: fs, json: json}
}

// blacklistRegistry is the internal implementation of BlacklistRegistry interface
type blacklistRegistry struct {
	// Fast lookup maps
	hosts  map[string]bool
	owners map[string]bool // identity hash -> true
}

// Load loads the blacklist registry from a JSON file
func (l *blacklistRegistryLoader) Load(filePath string) (BlacklistRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist file: %w", err)
	}

	var blacklistData BlacklistData
	if err := l.json.Unmarshal(data, &blacklistData); err != nil {
		return nil, fmt.Errorf("failed to parse blacklist JSON: %w", err)
	}

	bl := &blacklistRegistry{
		hosts:  make(map[string]bool, len(blacklistData.Hosts)),
		owners: make(map[string]bool, len(blacklistData.Owners)),
	}

	for _, host := range blacklistData.Hosts {
		host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
		if host != "" {
			bl.hosts[host] = true
		}
	}

	for _, owner := range blacklistData.Owners {
		hash, err := domain.IdentityHashOf(owner)
		if err != nil {
			return nil, fmt.Errorf("invalid blacklisted owner %q: %w", owner, err)
		}
		bl.owners[hash] = true
	}

	return bl, nil
}

// IsHostBlacklisted checks the URL host and each of its parent domains
func (b *blacklistRegistry) IsHostBlacklisted(rawURL string) bool {
	if b == nil || len(b.hosts) == 0 {
		return false
	}

	host := domain.HostOf(rawURL)
	for host != "" {
		if b.hosts[host] {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return false
}

// IsOwnerBlacklisted compares identity hashes so both network forms of an address match
func (b *blacklistRegistry) IsOwnerBlacklisted(owner string) bool {
	if b == nil || len(b.owners) == 0 {
		return false
	}
	hash, err := domain.IdentityHashOf(owner)
	if err != nil {
		return false
	}
	return b.owners[hash]
}
