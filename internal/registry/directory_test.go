package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/domain"
	"github.com/feral-file/ff-registry/internal/mocks"
	"github.com/feral-file/ff-registry/internal/registry"
	"github.com/feral-file/ff-registry/internal/store"
)

// Addresses of the secp256k1 private keys 1 and 2
const (
	addr1        = "SP1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTS1X0BPM"
	addr1Testnet = "ST1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTSQDA7QF"
	addr2        = "SP3AZN3BSQYJ5VWMNG92N88Z4G9498VYSKG43P6K"
	addr2Testnet = "ST3AZN3BSQYJ5VWMNG92N88Z4G9498VYSHDZD9EK"
	exampleURL   = "https://api.example.com/x402"
)

type fixture struct {
	dir registry.Directory
	kv  store.KVStore
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, store.NewMemoryStore())
}

func newFixtureWithStore(t *testing.T, kv store.KVStore) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		kv:  kv,
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return f.now }).AnyTimes()

	f.dir = registry.NewDirectory(kv, adapter.NewJSON(), adapter.NewJCS(), clock, adapter.NewULID(), nil, registry.Config{WorkerPoolSize: 4})
	t.Cleanup(f.dir.Close)
	return f
}

func (f *fixture) tick(d time.Duration) {
	f.now = f.now.Add(d)
}

func newEntry(rawURL, owner string) *domain.RegistryEntry {
	canonical, err := domain.CanonicalizeURL(rawURL)
	if err != nil {
		panic(err)
	}
	return &domain.RegistryEntry{
		ID:           domain.EntryID(canonical),
		URL:          canonical,
		Name:         "Example API",
		Description:  "Paid weather data",
		Owner:        owner,
		Status:       domain.StatusUnverified,
		RegisteredAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		RegisteredBy: owner,
	}
}

// snapshot returns every index and lookup key with its value
func snapshot(t *testing.T, kv store.KVStore) map[string]string {
	t.Helper()
	ctx := context.Background()
	out := map[string]string{}
	for _, prefix := range []string{"registry:index:", "registry:lookup:"} {
		kvs, err := kv.GetAllKeyValuesByPrefix(ctx, prefix)
		require.NoError(t, err)
		for k, v := range kvs {
			out[k] = v
		}
	}
	return out
}

func readList(t *testing.T, kv store.KVStore, key string) []string {
	t.Helper()
	value, err := kv.GetKeyValue(context.Background(), key)
	require.NoError(t, err)
	if value == "" {
		return nil
	}
	var list []string
	require.NoError(t, json.Unmarshal([]byte(value), &list))
	return list
}

func readAllIndex(t *testing.T, kv store.KVStore) []domain.RegistryIndexEntry {
	t.Helper()
	value, err := kv.GetKeyValue(context.Background(), "registry:index:all")
	require.NoError(t, err)
	if value == "" {
		return nil
	}
	var all []domain.RegistryIndexEntry
	require.NoError(t, json.Unmarshal([]byte(value), &all))
	return all
}

func TestSave_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	entry.Category = "data"
	entry.Tags = []string{"weather", "paid"}
	entry.ProbeData = json.RawMessage(`{"status": 402, "accepts": ["exact"]}`)
	require.NoError(t, f.dir.Save(ctx, entry))

	got, err := f.dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
	assert.JSONEq(t, `{"accepts":["exact"],"status":402}`, string(got.ProbeData))
	assert.Equal(t, `{"accepts":["exact"],"status":402}`, string(got.ProbeData), "probe data is stored canonically")
}

func TestSave_Normalizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, strings.ToLower(addr1))
	entry.RegisteredBy = ""
	entry.Tags = []string{}
	entry.RegisteredAt = time.Time{}
	entry.UpdatedAt = time.Time{}
	require.NoError(t, f.dir.Save(ctx, entry))

	assert.Equal(t, addr1, entry.Owner)
	assert.Equal(t, addr1, entry.RegisteredBy)
	assert.Nil(t, entry.Tags)
	assert.Equal(t, f.now, entry.UpdatedAt)
	assert.Equal(t, f.now, entry.RegisteredAt)

	got, err := f.dir.GetByOwnerAndID(ctx, strings.ToLower(addr1), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestSave_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(e *domain.RegistryEntry)
	}{
		{name: "nil entry"},
		{name: "bad owner", mutate: func(e *domain.RegistryEntry) { e.Owner = "0xdeadbeef" }},
		{name: "bad registeredBy", mutate: func(e *domain.RegistryEntry) { e.RegisteredBy = "nope" }},
		{name: "id mismatch", mutate: func(e *domain.RegistryEntry) { e.ID = "ffffffffffffffff" }},
		{name: "empty name", mutate: func(e *domain.RegistryEntry) { e.Name = "" }},
		{name: "unknown status", mutate: func(e *domain.RegistryEntry) { e.Status = "pending" }},
		{name: "probe data not json", mutate: func(e *domain.RegistryEntry) { e.ProbeData = json.RawMessage(`{oops`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry *domain.RegistryEntry
			if tt.mutate != nil {
				entry = newEntry(exampleURL, addr1)
				tt.mutate(entry)
			}
			err := f.dir.Save(ctx, entry)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	assert.Empty(t, snapshot(t, f.kv), "rejected saves write nothing")
}

func TestSave_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	entry.Category = "data"
	require.NoError(t, f.dir.Save(ctx, entry))
	before := snapshot(t, f.kv)

	again := newEntry(exampleURL, addr1)
	again.Category = "data"
	require.NoError(t, f.dir.Save(ctx, again))
	assert.Equal(t, before, snapshot(t, f.kv))

	assert.Len(t, readAllIndex(t, f.kv), 1)
	assert.Equal(t, []string{addr1 + ":" + entry.ID}, readList(t, f.kv, "registry:index:status:unverified"))
	assert.Equal(t, []string{addr1 + ":" + entry.ID}, readList(t, f.kv, "registry:index:category:data"))
}

func TestSave_URLOwnedByAnotherOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dir.Save(ctx, newEntry(exampleURL, addr1)))

	err := f.dir.Save(ctx, newEntry(exampleURL, addr2))
	assert.ErrorIs(t, err, domain.ErrEntryExists)
	assert.Contains(t, err.Error(), addr1)

	// the losing save wrote nothing
	_, err = f.dir.GetByOwnerAndID(ctx, addr2, newEntry(exampleURL, addr2).ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSave_SameKeyOtherNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dir.Save(ctx, newEntry(exampleURL, addr1)))

	again := newEntry(exampleURL, addr1Testnet)
	again.Category = "data"
	require.NoError(t, f.dir.Save(ctx, again))
	assert.Equal(t, addr1, again.Owner, "the stored owner form is kept")

	entries, err := f.dir.ListByOwner(ctx, addr1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data", entries[0].Category)

	all := readAllIndex(t, f.kv)
	require.Len(t, all, 1)
	assert.Equal(t, addr1, all[0].Owner)
	assert.Equal(t, []string{addr1 + ":" + again.ID}, readList(t, f.kv, "registry:index:category:data"))
}

func TestGetByOwnerAndID_EitherNetworkForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))

	got, err := f.dir.GetByOwnerAndID(ctx, addr1Testnet, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, addr1, got.Owner)

	updated, err := f.dir.UpdateStatus(ctx, addr1Testnet, entry.ID, domain.StatusVerified)
	require.NoError(t, err)
	assert.Equal(t, addr1, updated.Owner)
	assert.Equal(t, []string{entry.CompositeKey()}, readList(t, f.kv, "registry:index:status:verified"))

	require.NoError(t, f.dir.Delete(ctx, addr1Testnet, entry.ID))
	_, err = f.dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	_, err = f.dir.GetByURL(ctx, exampleURL)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Empty(t, readAllIndex(t, f.kv))
	assert.Empty(t, readList(t, f.kv, "registry:index:status:verified"))
}

func TestSave_StaleLookupIsReplaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr2)
	require.NoError(t, f.kv.SetKeyValue(ctx, "registry:lookup:url:"+entry.ID, `{"owner":"`+addr1+`"}`))

	require.NoError(t, f.dir.Save(ctx, entry))

	got, err := f.dir.GetByURL(ctx, exampleURL)
	require.NoError(t, err)
	assert.Equal(t, addr2, got.Owner)
}

func TestSave_CategoryChangePrunesOldBucket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	entry.Category = "data"
	require.NoError(t, f.dir.Save(ctx, entry))

	entry.Category = "ai"
	require.NoError(t, f.dir.Save(ctx, entry))

	assert.Empty(t, readList(t, f.kv, "registry:index:category:data"))
	assert.Equal(t, []string{entry.CompositeKey()}, readList(t, f.kv, "registry:index:category:ai"))

	entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{Category: "data"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)

	entry.Category = ""
	require.NoError(t, f.dir.Save(ctx, entry))
	assert.Empty(t, readList(t, f.kv, "registry:index:category:ai"))
}

func TestGetByURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))

	for _, u := range []string{exampleURL, "HTTPS://API.EXAMPLE.COM:443/x402/", "https://api.example.com/x402#docs"} {
		got, err := f.dir.GetByURL(ctx, u)
		require.NoError(t, err, u)
		assert.Equal(t, entry.ID, got.ID)
	}

	_, err := f.dir.GetByURL(ctx, "https://api.example.com/other")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	_, err = f.dir.GetByURL(ctx, "ftp://api.example.com/x402")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// lookup present but primary record missing
	require.NoError(t, f.kv.DeleteKeyValue(ctx, "registry:owner:"+addr1+":"+entry.ID))
	_, err = f.dir.GetByURL(ctx, exampleURL)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByOwnerAndID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.GetByOwnerAndID(ctx, "not-an-address", "cc5fe46e6e5ea3fe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.dir.GetByOwnerAndID(ctx, addr1, "cc5fe46e6e5ea3fe")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	// a record that fails validation is reported as a storage failure
	require.NoError(t, f.kv.SetKeyValue(ctx, "registry:owner:"+addr1+":cc5fe46e6e5ea3fe", `{"id":"cc5fe46e6e5ea3fe"}`))
	_, err = f.dir.GetByOwnerAndID(ctx, addr1, "cc5fe46e6e5ea3fe")
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var saved []*domain.RegistryEntry
	for i, path := range []string{"a", "b", "c", "d", "e"} {
		e := newEntry("https://api.example.com/"+path, addr1)
		if i%2 == 0 {
			e.Category = "data"
		}
		require.NoError(t, f.dir.Save(ctx, e))
		saved = append(saved, e)
	}
	_, err := f.dir.UpdateStatus(ctx, addr1, saved[1].ID, domain.StatusRejected)
	require.NoError(t, err)
	_, err = f.dir.UpdateStatus(ctx, addr1, saved[2].ID, domain.StatusVerified)
	require.NoError(t, err)

	t.Run("everything", func(t *testing.T) {
		entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, entries, 5)
		for i := range saved {
			assert.Equal(t, saved[i].ID, entries[i].ID, "index order is kept")
		}
	})

	t.Run("rejected hidden, total matches", func(t *testing.T) {
		entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{ExcludeRejected: true})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Len(t, entries, 4)
		for _, e := range entries {
			assert.NotEqual(t, domain.StatusRejected, e.Status)
		}
	})

	t.Run("explicit status wins over exclude", func(t *testing.T) {
		entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{Status: domain.StatusRejected, ExcludeRejected: true})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, entries, 1)
		assert.Equal(t, saved[1].ID, entries[0].ID)
	})

	t.Run("category", func(t *testing.T) {
		entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{Category: "data"})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, entries, 3)
	})

	t.Run("pagination", func(t *testing.T) {
		entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, entries, 2)
		assert.Equal(t, saved[2].ID, entries[0].ID)
		assert.Equal(t, saved[3].ID, entries[1].ID)

		entries, total, err = f.dir.ListAll(ctx, registry.ListFilter{Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, entries)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, _, err := f.dir.ListAll(ctx, registry.ListFilter{Status: "pending"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("stale reference is skipped", func(t *testing.T) {
		require.NoError(t, f.kv.DeleteKeyValue(ctx, "registry:owner:"+addr1+":"+saved[4].ID))
		entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, entries, 4)
	})
}

func TestListAll_LimitIsClamped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < domain.MAX_LIST_LIMIT+5; i++ {
		require.NoError(t, f.dir.Save(ctx, newEntry("https://api.example.com/"+strings.Repeat("x", i+1), addr1)))
	}

	entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.MAX_LIST_LIMIT+5, total)
	assert.Len(t, entries, domain.MAX_LIST_LIMIT)

	entries, _, err = f.dir.ListAll(ctx, registry.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, domain.DEFAULT_LIST_LIMIT)
}

func TestListByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := newEntry("https://api.example.com/a", addr1)
	second := newEntry("https://api.example.com/b", addr1)
	second.RegisteredAt = first.RegisteredAt.Add(time.Minute)
	other := newEntry("https://api.example.com/c", addr2)
	require.NoError(t, f.dir.Save(ctx, second))
	require.NoError(t, f.dir.Save(ctx, first))
	require.NoError(t, f.dir.Save(ctx, other))
	_, err := f.dir.UpdateStatus(ctx, addr1, second.ID, domain.StatusRejected)
	require.NoError(t, err)

	entries, err := f.dir.ListByOwner(ctx, addr1)
	require.NoError(t, err)
	require.Len(t, entries, 2, "rejected entries are still listed for their owner")
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)

	entries, err = f.dir.ListByOwner(ctx, addr1Testnet)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "the testnet form names the same key")

	entries, err = f.dir.ListByOwner(ctx, addr2Testnet)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, other.ID, entries[0].ID)

	_, err = f.dir.ListByOwner(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))
	key := entry.CompositeKey()

	f.tick(time.Hour)
	updated, err := f.dir.UpdateStatus(ctx, addr1, entry.ID, domain.StatusVerified)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, updated.Status)
	assert.Equal(t, f.now, updated.UpdatedAt)
	assert.Equal(t, entry.RegisteredAt, updated.RegisteredAt)

	assert.Empty(t, readList(t, f.kv, "registry:index:status:unverified"))
	assert.Equal(t, []string{key}, readList(t, f.kv, "registry:index:status:verified"))

	all := readAllIndex(t, f.kv)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusVerified, all[0].Status)

	_, err = f.dir.UpdateStatus(ctx, addr1, entry.ID, "pending")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.dir.UpdateStatus(ctx, addr2, entry.ID, domain.StatusRejected)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestTransferOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	entry.Category = "data"
	require.NoError(t, f.dir.Save(ctx, entry))

	f.tick(time.Minute)
	moved, err := f.dir.TransferOwner(ctx, entry, addr2)
	require.NoError(t, err)
	assert.Equal(t, addr2, moved.Owner)
	assert.Equal(t, addr1, moved.RegisteredBy)
	assert.Equal(t, f.now, moved.UpdatedAt)
	assert.Equal(t, addr1, entry.Owner, "the input entry is not modified")

	_, err = f.dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	got, err := f.dir.GetByURL(ctx, exampleURL)
	require.NoError(t, err)
	assert.Equal(t, moved, got)

	newKey := addr2 + ":" + entry.ID
	assert.Equal(t, []string{newKey}, readList(t, f.kv, "registry:index:status:unverified"))
	assert.Equal(t, []string{newKey}, readList(t, f.kv, "registry:index:category:data"))
	all := readAllIndex(t, f.kv)
	require.Len(t, all, 1)
	assert.Equal(t, addr2, all[0].Owner)
}

func TestTransferOwner_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))

	_, err := f.dir.TransferOwner(ctx, entry, addr1)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)

	_, err = f.dir.TransferOwner(ctx, entry, addr1Testnet)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer, "the testnet form is the same identity")

	_, err = f.dir.TransferOwner(ctx, entry, "0xabc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.dir.TransferOwner(ctx, nil, addr2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing := newEntry("https://api.example.com/missing", addr1)
	_, err = f.dir.TransferOwner(ctx, missing, addr2)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	entry.Category = "data"
	require.NoError(t, f.dir.Save(ctx, entry))
	keep := newEntry("https://api.example.com/keep", addr1)
	require.NoError(t, f.dir.Save(ctx, keep))

	require.NoError(t, f.dir.Delete(ctx, addr1, entry.ID))

	_, err := f.dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	_, err = f.dir.GetByURL(ctx, exampleURL)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	assert.Equal(t, []string{keep.CompositeKey()}, readList(t, f.kv, "registry:index:status:unverified"))
	assert.Empty(t, readList(t, f.kv, "registry:index:category:data"))
	all := readAllIndex(t, f.kv)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].URLHash)

	err = f.dir.Delete(ctx, addr1, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestDelete_PrunesEveryStatusBucket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))
	// a stale reference left behind by an interrupted update
	require.NoError(t, f.kv.SetKeyValue(ctx, "registry:index:status:verified", `["`+entry.CompositeKey()+`"]`))

	require.NoError(t, f.dir.Delete(ctx, addr1, entry.ID))
	for _, status := range domain.AllStatuses {
		assert.Empty(t, readList(t, f.kv, "registry:index:status:"+string(status)), status)
	}
}

func TestDelete_KeepsLookupOfAnotherOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))
	require.NoError(t, f.kv.SetKeyValue(ctx, "registry:lookup:url:"+entry.ID, `{"owner":"`+addr2+`"}`))

	require.NoError(t, f.dir.Delete(ctx, addr1, entry.ID))

	value, err := f.kv.GetKeyValue(ctx, "registry:lookup:url:"+entry.ID)
	require.NoError(t, err)
	assert.Contains(t, value, addr2)
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	require.NoError(t, f.dir.Save(ctx, entry))

	entries, total, err := f.dir.ListAll(ctx, registry.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusUnverified, entries[0].Status)

	_, err = f.dir.UpdateStatus(ctx, addr1, entry.ID, domain.StatusVerified)
	require.NoError(t, err)

	verified, err := f.dir.ListByStatus(ctx, domain.StatusVerified)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, entry.ID, verified[0].ID)

	unverified, err := f.dir.ListByStatus(ctx, domain.StatusUnverified)
	require.NoError(t, err)
	assert.Empty(t, unverified)

	current, err := f.dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	require.NoError(t, err)
	_, err = f.dir.TransferOwner(ctx, current, addr2)
	require.NoError(t, err)

	_, err = f.dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	moved, err := f.dir.GetByOwnerAndID(ctx, addr2, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, addr2, moved.Owner)
	assert.Equal(t, domain.StatusVerified, moved.Status)
}

func TestListByStatus_Invalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.dir.ListByStatus(context.Background(), "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKVStore(ctrl)
	f := newFixtureWithStore(t, kv)
	ctx := context.Background()

	backendErr := errors.New("connection refused")
	kv.EXPECT().GetKeyValue(gomock.Any(), gomock.Any()).Return("", backendErr).AnyTimes()
	kv.EXPECT().GetAllKeyValuesByPrefix(gomock.Any(), gomock.Any()).Return(nil, backendErr).AnyTimes()

	err := f.dir.Save(ctx, newEntry(exampleURL, addr1))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)

	_, err = f.dir.GetByOwnerAndID(ctx, addr1, "cc5fe46e6e5ea3fe")
	assert.ErrorIs(t, err, domain.ErrStorageFailure)

	_, _, err = f.dir.ListAll(ctx, registry.ListFilter{})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)

	_, err = f.dir.ListByOwner(ctx, addr1)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)

	_, err = f.dir.Reconcile(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestSave_WriteFailureAbortsRemainingSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKVStore(ctrl)
	f := newFixtureWithStore(t, kv)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	gomock.InOrder(
		kv.EXPECT().GetKeyValue(gomock.Any(), "registry:lookup:url:"+entry.ID).Return("", nil),
		kv.EXPECT().GetKeyValue(gomock.Any(), "registry:owner:"+addr1+":"+entry.ID).Return("", nil),
		kv.EXPECT().SetKeyValue(gomock.Any(), "registry:owner:"+addr1+":"+entry.ID, gomock.Any()).Return(nil),
		kv.EXPECT().SetKeyValue(gomock.Any(), "registry:lookup:url:"+entry.ID, gomock.Any()).Return(errors.New("disk full")),
	)

	err := f.dir.Save(ctx, entry)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.NotContains(t, err.Error(), "registry:index")
}

func TestDirectory_InjectedAdapters(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	canonicalizer := mocks.NewMockJCS(ctrl)
	ids := mocks.NewMockULID(ctrl)

	dir := registry.NewDirectory(store.NewMemoryStore(), adapter.NewJSON(), canonicalizer, clock, ids, nil, registry.Config{WorkerPoolSize: 2})
	t.Cleanup(dir.Close)
	ctx := context.Background()

	entry := newEntry(exampleURL, addr1)
	entry.ProbeData = json.RawMessage(`{"b":1,"a":2}`)
	canonicalizer.EXPECT().Transform([]byte(`{"b":1,"a":2}`)).Return(nil, errors.New("duplicate key"))
	err := dir.Save(ctx, entry)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	entry.ProbeData = json.RawMessage(`{"b":1,"a":2}`)
	canonicalizer.EXPECT().Transform(gomock.Any()).Return([]byte(`{"a":2,"b":1}`), nil)
	require.NoError(t, dir.Save(ctx, entry))

	got, err := dir.GetByOwnerAndID(ctx, addr1, entry.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":1}`, string(got.ProbeData))

	ids.EXPECT().Make().Return("01JRECONCILE")
	report, err := dir.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01JRECONCILE", report.RunID)
}
