package registry_test

import (
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/mocks"
	"github.com/feral-file/ff-registry/internal/registry"
)

const (
	blockedMainnet = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
	blockedTestnet = "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ"
)

// loadBlacklist serves content as blacklist.json through a mocked file system
func loadBlacklist(t *testing.T, content string) (registry.BlacklistRegistry, error) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fs := mocks.NewMockFileSystem(ctrl)
	fs.EXPECT().ReadFile("blacklist.json").Return([]byte(content), nil)
	return registry.NewBlacklistRegistryLoader(fs, adapter.NewJSON()).Load("blacklist.json")
}

func TestBlacklist_Hosts(t *testing.T) {
	bl, err := loadBlacklist(t, `{"hosts": ["spam.example", " Bad.Example.COM. ", ""]}`)
	require.NoError(t, err)

	for rawURL, blocked := range map[string]bool{
		"https://spam.example/api":        true,
		"https://api.spam.example/x402":   true,
		"https://BAD.example.com:8443/x":  true,
		"http://deep.sub.bad.example.com": true,
		"https://notspam.example/api":     false,
		"https://example.com/api":         false,
		"https://spam.example.org/":       false,
		"::not a url":                     false,
	} {
		assert.Equal(t, blocked, bl.IsHostBlacklisted(rawURL), rawURL)
	}
	assert.False(t, bl.IsOwnerBlacklisted(blockedMainnet))
}

func TestBlacklist_OwnersMatchEitherNetwork(t *testing.T) {
	bl, err := loadBlacklist(t, `{"owners": ["`+blockedTestnet+`"]}`)
	require.NoError(t, err)

	assert.True(t, bl.IsOwnerBlacklisted(blockedTestnet))
	assert.True(t, bl.IsOwnerBlacklisted(blockedMainnet))
	assert.False(t, bl.IsOwnerBlacklisted("SP000000000000000000002Q6VF78"))
	assert.False(t, bl.IsOwnerBlacklisted("garbage"))
	assert.False(t, bl.IsHostBlacklisted("https://spam.example/api"))
}

func TestBlacklist_Empty(t *testing.T) {
	bl, err := loadBlacklist(t, `{}`)
	require.NoError(t, err)
	assert.False(t, bl.IsHostBlacklisted("https://spam.example/api"))
	assert.False(t, bl.IsOwnerBlacklisted(blockedMainnet))
}

func TestBlacklistLoader_Errors(t *testing.T) {
	t.Run("unreadable file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := mocks.NewMockFileSystem(ctrl)
		fs.EXPECT().ReadFile("blacklist.json").Return(nil, assert.AnError)

		bl, err := registry.NewBlacklistRegistryLoader(fs, adapter.NewJSON()).Load("blacklist.json")
		assert.ErrorContains(t, err, "failed to read blacklist file")
		assert.Nil(t, bl)
	})

	t.Run("decoder failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := mocks.NewMockFileSystem(ctrl)
		decoder := mocks.NewMockJSON(ctrl)
		fs.EXPECT().ReadFile("blacklist.json").Return([]byte(`{"hosts":[]}`), nil)
		decoder.EXPECT().Unmarshal([]byte(`{"hosts":[]}`), gomock.Any()).Return(assert.AnError)

		_, err := registry.NewBlacklistRegistryLoader(fs, decoder).Load("blacklist.json")
		assert.ErrorContains(t, err, "failed to parse blacklist JSON")
	})

	for name, content := range map[string]string{
		"malformed json":   `invalid json`,
		"wrong shape":      `{"hosts": "spam.example"}`,
		"ethereum address": `{"owners": ["0x1234"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			bl, err := loadBlacklist(t, content)
			assert.Error(t, err)
			assert.Nil(t, bl)
		})
	}
}

func TestBlacklist_DecodesWithStdlibShape(t *testing.T) {
	data, err := json.Marshal(registry.BlacklistData{Hosts: []string{"spam.example"}, Owners: []string{blockedMainnet}})
	require.NoError(t, err)

	bl, err := loadBlacklist(t, string(data))
	require.NoError(t, err)
	assert.True(t, bl.IsHostBlacklisted("https://spam.example"))
	assert.True(t, bl.IsOwnerBlacklisted(blockedTestnet))
}
