package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/domain"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/metrics"
	"github.com/feral-file/ff-registry/internal/store"
)

// Directory owns registry entry CRUD and the secondary indexes kept over the key-value store.
//
// Every mutation is a sequence of single-key writes. A failure aborts the remaining
// steps and earlier writes are not rolled back; Reconcile rebuilds the indexes from
// the primary records.
//
//go:generate mockgen -source=directory.go -destination=../mocks/directory.go -package=mocks -mock_names=Directory=MockDirectory
type Directory interface {
	// Save writes the primary record, the url-lookup and all indexes for the entry.
	// The entry is normalized in place (canonical owner, UTC timestamps, canonical probe data).
	// When the url is already held by the same key in its other network form, the entry
	// takes over the stored owner form.
	Save(ctx context.Context, entry *domain.RegistryEntry) error

	// GetByOwnerAndID reads one entry by its primary key. The owner may be given in either network form.
	GetByOwnerAndID(ctx context.Context, owner, id string) (*domain.RegistryEntry, error)

	// GetByURL resolves an entry through the url-lookup
	GetByURL(ctx context.Context, rawURL string) (*domain.RegistryEntry, error)

	// ListAll pages through the all-index. Total is the filtered count before pagination.
	ListAll(ctx context.Context, filter ListFilter) ([]*domain.RegistryEntry, int, error)

	// ListByOwner returns every entry stored under the owner identity in either network form, regardless of status
	ListByOwner(ctx context.Context, owner string) ([]*domain.RegistryEntry, error)

	// ListByStatus resolves one status bucket to full entries
	ListByStatus(ctx context.Context, status domain.Status) ([]*domain.RegistryEntry, error)

	// UpdateStatus changes the status of an entry and re-indexes it
	UpdateStatus(ctx context.Context, owner, id string, status domain.Status) (*domain.RegistryEntry, error)

	// TransferOwner moves an entry to a new owner
	TransferOwner(ctx context.Context, entry *domain.RegistryEntry, newOwner string) (*domain.RegistryEntry, error)

	// Delete removes the primary record and prunes every index
	Delete(ctx context.Context, owner, id string) error

	// Reconcile rebuilds every index and url-lookup from the primary records
	Reconcile(ctx context.Context) (*ReconcileReport, error)

	// Close stops the resolution worker pool
	Close()
}

// ListFilter narrows ListAll
type ListFilter struct {
	Category string
	// Status restricts the listing to one status; empty means any
	Status domain.Status
	// ExcludeRejected hides rejected entries when Status is empty
	ExcludeRejected bool
	Limit           int
	Offset          int
}

// Config holds directory configuration
type Config struct {
	// WorkerPoolSize bounds the number of concurrent primary record reads when
	// resolving index references
	WorkerPoolSize int
}

type entryRef struct {
	owner string
	id    string
}

type directory struct {
	kv      store.KVStore
	json    adapter.JSON
	jcs     adapter.JCS
	clock   adapter.Clock
	ulid    adapter.ULID
	metrics *metrics.Metrics
	pool    pond.ResultPool[*domain.RegistryEntry]

	// mu serializes index read-modify-write cycles issued by this process.
	// Writers in other processes are not coordinated.
	mu sync.Mutex
}

// NewDirectory creates a new directory over the key-value store
func NewDirectory(
	kv store.KVStore,
	json adapter.JSON,
	jcs adapter.JCS,
	clock adapter.Clock,
	ulid adapter.ULID,
	m *metrics.Metrics,
	cfg Config,
) Directory {
	size := cfg.WorkerPoolSize
	if size <= 0 {
		size = 8
	}
	return &directory{
		kv:      kv,
		json:    json,
		jcs:     jcs,
		clock:   clock,
		ulid:    ulid,
		metrics: m,
		pool:    pond.NewResultPool[*domain.RegistryEntry](size),
	}
}

func (d *directory) Close() {
	d.pool.StopAndWait()
}

// Save writes the entry and brings every index in line with it
func (d *directory) Save(ctx context.Context, entry *domain.RegistryEntry) (err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("save", start, err) }()

	if err := d.normalize(entry); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.save(ctx, entry)
}

func (d *directory) save(ctx context.Context, entry *domain.RegistryEntry) error {
	// (1) a url belongs to at most one live owner
	lookup, err := d.readLookup(ctx, entry.ID)
	if err != nil {
		return err
	}
	if lookup != nil && lookup.Owner != entry.Owner && domain.SameIdentity(lookup.Owner, entry.Owner) {
		entry.Owner = lookup.Owner
	}
	if lookup != nil && lookup.Owner != entry.Owner {
		_, err := d.readEntry(ctx, lookup.Owner, entry.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: registered by %s", domain.ErrEntryExists, lookup.Owner)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		logger.WarnCtx(ctx, "Replacing url-lookup that points at a missing record",
			zap.String("id", entry.ID),
			zap.String("stale_owner", lookup.Owner))
	}

	// (2) the previous version decides which category bucket to prune
	var previousCategory string
	previous, err := d.readEntry(ctx, entry.Owner, entry.ID)
	switch {
	case err == nil:
		previousCategory = previous.Category
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	// (3) primary record and url-lookup
	if err := d.writeJSON(ctx, ownerKey(entry.Owner, entry.ID), entry); err != nil {
		return err
	}
	if lookup == nil || lookup.Owner != entry.Owner {
		if err := d.writeJSON(ctx, lookupKey(entry.ID), domain.URLLookup{Owner: entry.Owner}); err != nil {
			return err
		}
	}

	// (4) all-index: find or append the projection
	all, err := d.readAllIndex(ctx)
	if err != nil {
		return err
	}
	projection := entry.Projection()
	updated := make([]domain.RegistryIndexEntry, 0, len(all)+1)
	found := false
	changed := false
	for _, p := range all {
		if !p.Matches(entry.Owner, entry.ID) {
			updated = append(updated, p)
			continue
		}
		if found {
			// duplicate projection
			changed = true
			continue
		}
		found = true
		if p != projection {
			changed = true
		}
		updated = append(updated, projection)
	}
	if !found {
		updated = append(updated, projection)
		changed = true
	}
	if changed {
		if err := d.writeJSON(ctx, domain.KEY_INDEX_ALL, updated); err != nil {
			return err
		}
	}

	// (5) status: prune every other bucket, then add to the current one
	compositeKey := entry.CompositeKey()
	for _, status := range domain.AllStatuses {
		if status == entry.Status {
			continue
		}
		if err := d.removeFromList(ctx, statusKey(status), compositeKey); err != nil {
			return err
		}
	}
	if err := d.addToList(ctx, statusKey(entry.Status), compositeKey); err != nil {
		return err
	}

	// (6) category: prune the previous bucket when the category changed
	if previousCategory != "" && previousCategory != entry.Category {
		if err := d.removeFromList(ctx, categoryKey(previousCategory), compositeKey); err != nil {
			return err
		}
	}
	if entry.Category != "" {
		if err := d.addToList(ctx, categoryKey(entry.Category), compositeKey); err != nil {
			return err
		}
	}

	return nil
}

// GetByOwnerAndID reads one entry by its primary key
func (d *directory) GetByOwnerAndID(ctx context.Context, owner, id string) (_ *domain.RegistryEntry, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("get", start, err) }()

	owner, err = domain.NormalizeAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	return d.readOwned(ctx, owner, id)
}

// GetByURL resolves the entry registered for a URL: url-lookup first, then the primary record
func (d *directory) GetByURL(ctx context.Context, rawURL string) (_ *domain.RegistryEntry, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("get_by_url", start, err) }()

	canonical, err := domain.CanonicalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	id := domain.EntryID(canonical)

	lookup, err := d.readLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if lookup == nil {
		return nil, domain.ErrEntryNotFound
	}
	return d.readEntry(ctx, lookup.Owner, id)
}

// ListAll filters the all-index in memory, slices the page and resolves it
func (d *directory) ListAll(ctx context.Context, filter ListFilter) (_ []*domain.RegistryEntry, _ int, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("list_all", start, err) }()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DEFAULT_LIST_LIMIT
	}
	if limit > domain.MAX_LIST_LIMIT {
		limit = domain.MAX_LIST_LIMIT
	}
	offset := max(filter.Offset, 0)

	all, err := d.readAllIndex(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]entryRef, 0, len(all))
	for _, p := range all {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Status == "" && filter.ExcludeRejected && p.Status == domain.StatusRejected {
			continue
		}
		matched = append(matched, entryRef{owner: p.Owner, id: p.URLHash})
	}

	total := len(matched)
	if offset >= total {
		return []*domain.RegistryEntry{}, total, nil
	}
	end := min(offset+limit, total)

	entries, err := d.resolve(ctx, matched[offset:end])
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListByOwner prefix-scans the owner's key range
func (d *directory) ListByOwner(ctx context.Context, owner string) (_ []*domain.RegistryEntry, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("list_by_owner", start, err) }()

	owner, err = domain.NormalizeAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	forms, err := ownerForms(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	var entries []*domain.RegistryEntry
	for _, form := range forms {
		kvs, err := d.kv.GetAllKeyValuesByPrefix(ctx, ownerPrefix(form))
		if err != nil {
			return nil, storageError("list owner records", err)
		}
		for key, value := range kvs {
			entry, err := d.decodeEntry(key, value)
			if err != nil {
				logger.WarnCtx(ctx, "Skipping corrupt primary record", zap.String("key", key), zap.Error(err))
				continue
			}
			// the record must sit under its own owner's key range
			if entry.Owner != form {
				continue
			}
			entries = append(entries, entry)
		}
	}
	if entries == nil {
		entries = []*domain.RegistryEntry{}
	}

	sortEntries(entries)
	return entries, nil
}

// ListByStatus resolves one status bucket
func (d *directory) ListByStatus(ctx context.Context, status domain.Status) (_ []*domain.RegistryEntry, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("list_by_status", start, err) }()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	keys, err := d.readList(ctx, statusKey(status))
	if err != nil {
		return nil, err
	}

	refs := make([]entryRef, 0, len(keys))
	for _, key := range keys {
		owner, id, err := domain.ParseCompositeKey(key)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping malformed status index reference",
				zap.String("status", string(status)),
				zap.String("reference", key))
			continue
		}
		refs = append(refs, entryRef{owner: owner, id: id})
	}

	return d.resolve(ctx, refs)
}

// UpdateStatus reads the entry, changes its status and saves it again
func (d *directory) UpdateStatus(ctx context.Context, owner, id string, status domain.Status) (_ *domain.RegistryEntry, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("update_status", start, err) }()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	owner, err = domain.NormalizeAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, err := d.readOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	entry.Status = status
	entry.UpdatedAt = d.clock.Now().UTC()
	if err := d.save(ctx, entry); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Registry entry status updated",
		zap.String("owner", entry.Owner),
		zap.String("id", id),
		zap.String("status", string(status)))
	return entry, nil
}

// TransferOwner deletes the entry under its current owner and saves a copy under the new owner.
// A failure between the two phases leaves the entry under neither owner until Reconcile runs.
func (d *directory) TransferOwner(ctx context.Context, entry *domain.RegistryEntry, newOwner string) (_ *domain.RegistryEntry, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("transfer", start, err) }()

	if entry == nil {
		return nil, fmt.Errorf("%w: entry is required", domain.ErrInvalidInput)
	}
	newOwner, err = domain.NormalizeAddress(newOwner)
	if err != nil {
		return nil, fmt.Errorf("new owner: %w", err)
	}
	oldOwner, err := domain.NormalizeAddress(entry.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if domain.SameIdentity(oldOwner, newOwner) {
		return nil, domain.ErrSelfTransfer
	}

	transferred := *entry
	transferred.Owner = newOwner
	transferred.Tags = slices.Clone(entry.Tags)
	transferred.ProbeData = slices.Clone(entry.ProbeData)
	transferred.UpdatedAt = d.clock.Now().UTC()
	if err := d.normalize(&transferred); err != nil {
		return nil, err
	}
	if err := transferred.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.delete(ctx, oldOwner, entry.ID); err != nil {
		return nil, err
	}
	if err := d.save(ctx, &transferred); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("transfer left entry without owner: %w", err),
			zap.String("id", entry.ID),
			zap.String("old_owner", oldOwner),
			zap.String("new_owner", newOwner))
		return nil, err
	}

	logger.InfoCtx(ctx, "Registry entry transferred",
		zap.String("id", entry.ID),
		zap.String("old_owner", oldOwner),
		zap.String("new_owner", newOwner))
	return &transferred, nil
}

// Delete removes the primary record and prunes every index
func (d *directory) Delete(ctx context.Context, owner, id string) (err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("delete", start, err) }()

	owner, err = domain.NormalizeAddress(owner)
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.delete(ctx, owner, id)
}

func (d *directory) delete(ctx context.Context, owner, id string) error {
	entry, err := d.readOwned(ctx, owner, id)
	if err != nil {
		return err
	}
	// keys below use the stored owner form
	owner = entry.Owner

	if err := d.kv.DeleteKeyValue(ctx, ownerKey(owner, id)); err != nil {
		return storageError("delete primary record", err)
	}

	// the lookup may already point at another owner
	lookup, err := d.readLookup(ctx, id)
	if err != nil {
		return err
	}
	if lookup != nil && lookup.Owner == owner {
		if err := d.kv.DeleteKeyValue(ctx, lookupKey(id)); err != nil {
			return storageError("delete url-lookup", err)
		}
	}

	all, err := d.readAllIndex(ctx)
	if err != nil {
		return err
	}
	pruned := make([]domain.RegistryIndexEntry, 0, len(all))
	for _, p := range all {
		if !p.Matches(owner, id) {
			pruned = append(pruned, p)
		}
	}
	if len(pruned) != len(all) {
		if err := d.writeJSON(ctx, domain.KEY_INDEX_ALL, pruned); err != nil {
			return err
		}
	}

	compositeKey := domain.CompositeKey(owner, id)
	for _, status := range domain.AllStatuses {
		if err := d.removeFromList(ctx, statusKey(status), compositeKey); err != nil {
			return err
		}
	}
	if entry.Category != "" {
		if err := d.removeFromList(ctx, categoryKey(entry.Category), compositeKey); err != nil {
			return err
		}
	}

	logger.InfoCtx(ctx, "Registry entry deleted", zap.String("owner", owner), zap.String("id", id))
	return nil
}

// normalize brings an entry into its stored form
func (d *directory) normalize(entry *domain.RegistryEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is required", domain.ErrInvalidInput)
	}

	owner, err := domain.NormalizeAddress(entry.Owner)
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	entry.Owner = owner

	if entry.RegisteredBy == "" {
		entry.RegisteredBy = owner
	} else {
		registeredBy, err := domain.NormalizeAddress(entry.RegisteredBy)
		if err != nil {
			return fmt.Errorf("registeredBy: %w", err)
		}
		entry.RegisteredBy = registeredBy
	}

	if len(entry.Tags) == 0 {
		entry.Tags = nil
	}

	if len(entry.ProbeData) == 0 {
		entry.ProbeData = nil
	} else {
		canonical, err := d.jcs.Transform(entry.ProbeData)
		if err != nil {
			return fmt.Errorf("%w: probe data: %v", domain.ErrInvalidInput, err)
		}
		entry.ProbeData = canonical
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = d.clock.Now()
	}
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	if entry.RegisteredAt.IsZero() {
		entry.RegisteredAt = entry.UpdatedAt
	}
	entry.RegisteredAt = entry.RegisteredAt.UTC()

	return nil
}

// resolve reads the primary record of every reference on the worker pool, preserving order.
// References that no longer resolve are skipped.
func (d *directory) resolve(ctx context.Context, refs []entryRef) ([]*domain.RegistryEntry, error) {
	if len(refs) == 0 {
		return []*domain.RegistryEntry{}, nil
	}

	group := d.pool.NewGroupContext(ctx)
	for _, ref := range refs {
		group.SubmitErr(func() (*domain.RegistryEntry, error) {
			entry, err := d.readEntry(ctx, ref.owner, ref.id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					d.metrics.IncrementStaleReference()
					logger.WarnCtx(ctx, "Skipping stale index reference",
						zap.String("owner", ref.owner),
						zap.String("id", ref.id))
					return nil, nil
				}
				return nil, err
			}
			return entry, nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.RegistryEntry, 0, len(results))
	for _, entry := range results {
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// readOwned reads the entry stored under either network form of owner
func (d *directory) readOwned(ctx context.Context, owner, id string) (*domain.RegistryEntry, error) {
	forms, err := ownerForms(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	for _, form := range forms {
		entry, err := d.readEntry(ctx, form, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return entry, err
	}
	return nil, domain.ErrEntryNotFound
}

func (d *directory) readEntry(ctx context.Context, owner, id string) (*domain.RegistryEntry, error) {
	if owner == "" || id == "" {
		return nil, domain.ErrEntryNotFound
	}

	key := ownerKey(owner, id)
	value, err := d.kv.GetKeyValue(ctx, key)
	if err != nil {
		return nil, storageError("read primary record", err)
	}
	if value == "" {
		return nil, domain.ErrEntryNotFound
	}

	entry, err := d.decodeEntry(key, value)
	if err != nil {
		return nil, err
	}
	if entry.Owner != owner || entry.ID != id {
		return nil, fmt.Errorf("%w: record %s belongs to %s", domain.ErrStorageFailure, key, entry.CompositeKey())
	}
	return entry, nil
}

// decodeEntry parses and validates a stored primary record
func (d *directory) decodeEntry(key, value string) (*domain.RegistryEntry, error) {
	var entry domain.RegistryEntry
	if err := d.json.Unmarshal([]byte(value), &entry); err != nil {
		return nil, fmt.Errorf("%w: corrupt record %s: %v", domain.ErrStorageFailure, key, err)
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: corrupt record %s: %v", domain.ErrStorageFailure, key, err)
	}
	return &entry, nil
}

func (d *directory) readLookup(ctx context.Context, id string) (*domain.URLLookup, error) {
	key := lookupKey(id)
	value, err := d.kv.GetKeyValue(ctx, key)
	if err != nil {
		return nil, storageError("read url-lookup", err)
	}
	if value == "" {
		return nil, nil
	}

	var lookup domain.URLLookup
	if err := d.json.Unmarshal([]byte(value), &lookup); err != nil {
		return nil, fmt.Errorf("%w: corrupt record %s: %v", domain.ErrStorageFailure, key, err)
	}
	if lookup.Owner == "" {
		return nil, nil
	}
	return &lookup, nil
}

func (d *directory) readAllIndex(ctx context.Context) ([]domain.RegistryIndexEntry, error) {
	value, err := d.kv.GetKeyValue(ctx, domain.KEY_INDEX_ALL)
	if err != nil {
		return nil, storageError("read all-index", err)
	}
	if value == "" {
		return nil, nil
	}

	var all []domain.RegistryIndexEntry
	if err := d.json.Unmarshal([]byte(value), &all); err != nil {
		return nil, fmt.Errorf("%w: corrupt all-index: %v", domain.ErrStorageFailure, err)
	}

	valid := all[:0]
	for _, p := range all {
		if err := p.Validate(); err != nil {
			logger.WarnCtx(ctx, "Dropping malformed all-index projection", zap.Error(err))
			continue
		}
		valid = append(valid, p)
	}
	return valid, nil
}

func (d *directory) readList(ctx context.Context, key string) ([]string, error) {
	value, err := d.kv.GetKeyValue(ctx, key)
	if err != nil {
		return nil, storageError("read index "+key, err)
	}
	if value == "" {
		return nil, nil
	}

	var list []string
	if err := d.json.Unmarshal([]byte(value), &list); err != nil {
		return nil, fmt.Errorf("%w: corrupt index %s: %v", domain.ErrStorageFailure, key, err)
	}
	return list, nil
}

// writeList stores a composite-key list; an empty list removes the key
func (d *directory) writeList(ctx context.Context, key string, list []string) error {
	if len(list) == 0 {
		if err := d.kv.DeleteKeyValue(ctx, key); err != nil {
			return storageError("delete index "+key, err)
		}
		return nil
	}
	return d.writeJSON(ctx, key, list)
}

func (d *directory) addToList(ctx context.Context, key, compositeKey string) error {
	list, err := d.readList(ctx, key)
	if err != nil {
		return err
	}
	list, changed := appendIfAbsent(list, compositeKey)
	if !changed {
		return nil
	}
	return d.writeList(ctx, key, list)
}

func (d *directory) removeFromList(ctx context.Context, key, compositeKey string) error {
	list, err := d.readList(ctx, key)
	if err != nil {
		return err
	}
	list, changed := removeAll(list, compositeKey)
	if !changed {
		return nil
	}
	return d.writeList(ctx, key, list)
}

func (d *directory) writeJSON(ctx context.Context, key string, v any) error {
	data, err := d.json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := d.kv.SetKeyValue(ctx, key, string(data)); err != nil {
		return storageError("write "+key, err)
	}
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageFailure, op, err)
}

// sortEntries orders entries by registration time, then id
func sortEntries(entries []*domain.RegistryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].RegisteredAt.Equal(entries[j].RegisteredAt) {
			return entries[i].RegisteredAt.Before(entries[j].RegisteredAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
