package registry

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-registry/internal/domain"
	"github.com/feral-file/ff-registry/internal/logger"
)

// ReconcileReport summarizes one reconciliation run
type ReconcileReport struct {
	RunID          string    `json:"runId"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	Entries        int       `json:"entries"`
	CorruptRecords int       `json:"corruptRecords"`
	DuplicateURLs  int       `json:"duplicateUrls"`
	KeysWritten    int       `json:"keysWritten"`
	KeysDeleted    int       `json:"keysDeleted"`
}

// Repaired returns the number of keys the run changed
func (r *ReconcileReport) Repaired() int {
	return r.KeysWritten + r.KeysDeleted
}

// Reconcile treats the primary records as the source of truth and rewrites every
// index, every url-lookup and every category bucket that disagrees with them.
// Existing index order is kept for entries that are still live.
func (d *directory) Reconcile(ctx context.Context) (_ *ReconcileReport, err error) {
	start := time.Now()
	defer func() { d.metrics.ObserveOperation("reconcile", start, err) }()

	report := &ReconcileReport{
		RunID:     d.ulid.Make(),
		StartedAt: d.clock.Now().UTC(),
	}
	logger.InfoCtx(ctx, "Starting registry reconciliation", zap.String("run_id", report.RunID))

	d.mu.Lock()
	defer d.mu.Unlock()

	live, err := d.loadLiveEntries(ctx, report)
	if err != nil {
		return nil, err
	}
	report.Entries = len(live)

	if err := d.reconcileAllIndex(ctx, live, report); err != nil {
		return nil, err
	}
	if err := d.reconcileStatusIndex(ctx, live, report); err != nil {
		return nil, err
	}
	if err := d.reconcileCategoryIndex(ctx, live, report); err != nil {
		return nil, err
	}
	if err := d.reconcileLookups(ctx, live, report); err != nil {
		return nil, err
	}

	report.FinishedAt = d.clock.Now().UTC()
	d.metrics.AddRepaired(report.Repaired())

	logger.InfoCtx(ctx, "Registry reconciliation finished",
		zap.String("run_id", report.RunID),
		zap.Int("entries", report.Entries),
		zap.Int("corrupt_records", report.CorruptRecords),
		zap.Int("duplicate_urls", report.DuplicateURLs),
		zap.Int("keys_written", report.KeysWritten),
		zap.Int("keys_deleted", report.KeysDeleted))
	return report, nil
}

// loadLiveEntries reads every primary record and picks one owner per url.
// The result follows the current all-index order, then registration order.
func (d *directory) loadLiveEntries(ctx context.Context, report *ReconcileReport) ([]*domain.RegistryEntry, error) {
	kvs, err := d.kv.GetAllKeyValuesByPrefix(ctx, domain.KEY_PREFIX_OWNER)
	if err != nil {
		return nil, storageError("scan primary records", err)
	}

	byID := make(map[string][]*domain.RegistryEntry)
	for key, value := range kvs {
		entry, err := d.decodeEntry(key, value)
		if err == nil && key != ownerKey(entry.Owner, entry.ID) {
			err = domain.ErrStorageFailure
		}
		if err != nil {
			report.CorruptRecords++
			logger.WarnCtx(ctx, "Skipping corrupt primary record", zap.String("key", key), zap.Error(err))
			continue
		}
		byID[entry.ID] = append(byID[entry.ID], entry)
	}

	live := make([]*domain.RegistryEntry, 0, len(byID))
	for id, candidates := range byID {
		if len(candidates) == 1 {
			live = append(live, candidates[0])
			continue
		}

		report.DuplicateURLs++
		winner, err := d.pickOwner(ctx, id, candidates)
		if err != nil {
			return nil, err
		}
		owners := make([]string, 0, len(candidates))
		for _, c := range candidates {
			owners = append(owners, c.Owner)
		}
		logger.WarnCtx(ctx, "URL stored under several owners, indexing one",
			zap.String("id", id),
			zap.Strings("owners", owners),
			zap.String("indexed_owner", winner.Owner))
		live = append(live, winner)
	}

	sortEntries(live)

	current, err := d.readAllIndex(ctx)
	if err != nil {
		return nil, err
	}
	position := make(map[string]int, len(current))
	for i, p := range current {
		key := domain.CompositeKey(p.Owner, p.URLHash)
		if _, ok := position[key]; !ok {
			position[key] = i
		}
	}
	slices.SortStableFunc(live, func(a, b *domain.RegistryEntry) int {
		pa, okA := position[a.CompositeKey()]
		pb, okB := position[b.CompositeKey()]
		switch {
		case okA && okB:
			return pa - pb
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})

	return live, nil
}

// pickOwner prefers the owner the url-lookup points at, then the most recent update
func (d *directory) pickOwner(ctx context.Context, id string, candidates []*domain.RegistryEntry) (*domain.RegistryEntry, error) {
	lookup, err := d.readLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if lookup != nil {
		for _, c := range candidates {
			if c.Owner == lookup.Owner {
				return c, nil
			}
		}
	}

	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.UpdatedAt.After(winner.UpdatedAt) ||
			(c.UpdatedAt.Equal(winner.UpdatedAt) && c.Owner < winner.Owner) {
			winner = c
		}
	}
	return winner, nil
}

func (d *directory) reconcileAllIndex(ctx context.Context, live []*domain.RegistryEntry, report *ReconcileReport) error {
	current, err := d.readAllIndex(ctx)
	if err != nil {
		return err
	}

	desired := make([]domain.RegistryIndexEntry, 0, len(live))
	for _, e := range live {
		desired = append(desired, e.Projection())
	}
	if slices.Equal(current, desired) {
		return nil
	}

	logger.InfoCtx(ctx, "Rewriting all-index", zap.Int("before", len(current)), zap.Int("after", len(desired)))
	report.KeysWritten++
	return d.writeJSON(ctx, domain.KEY_INDEX_ALL, desired)
}

func (d *directory) reconcileStatusIndex(ctx context.Context, live []*domain.RegistryEntry, report *ReconcileReport) error {
	for _, status := range domain.AllStatuses {
		var desired []string
		for _, e := range live {
			if e.Status == status {
				desired = append(desired, e.CompositeKey())
			}
		}
		if err := d.reconcileList(ctx, statusKey(status), desired, report); err != nil {
			return err
		}
	}
	return nil
}

func (d *directory) reconcileCategoryIndex(ctx context.Context, live []*domain.RegistryEntry, report *ReconcileReport) error {
	desired := make(map[string][]string)
	for _, e := range live {
		if e.Category != "" {
			desired[e.Category] = append(desired[e.Category], e.CompositeKey())
		}
	}

	existing, err := d.kv.GetAllKeyValuesByPrefix(ctx, domain.KEY_PREFIX_CATEGORY_INDEX)
	if err != nil {
		return storageError("scan category index", err)
	}
	for key := range existing {
		category := strings.TrimPrefix(key, domain.KEY_PREFIX_CATEGORY_INDEX)
		if _, ok := desired[category]; ok {
			continue
		}
		logger.InfoCtx(ctx, "Removing orphaned category bucket", zap.String("category", category))
		if err := d.kv.DeleteKeyValue(ctx, key); err != nil {
			return storageError("delete index "+key, err)
		}
		report.KeysDeleted++
	}

	for category, keys := range desired {
		if err := d.reconcileList(ctx, categoryKey(category), keys, report); err != nil {
			return err
		}
	}
	return nil
}

func (d *directory) reconcileLookups(ctx context.Context, live []*domain.RegistryEntry, report *ReconcileReport) error {
	owners := make(map[string]string, len(live))
	for _, e := range live {
		owners[e.ID] = e.Owner
	}

	existing, err := d.kv.GetAllKeyValuesByPrefix(ctx, domain.KEY_PREFIX_URL_LOOKUP)
	if err != nil {
		return storageError("scan url-lookups", err)
	}

	for key := range existing {
		id := strings.TrimPrefix(key, domain.KEY_PREFIX_URL_LOOKUP)
		if _, ok := owners[id]; ok {
			continue
		}
		logger.InfoCtx(ctx, "Removing orphaned url-lookup", zap.String("id", id))
		if err := d.kv.DeleteKeyValue(ctx, key); err != nil {
			return storageError("delete url-lookup", err)
		}
		report.KeysDeleted++
	}

	for _, e := range live {
		var current domain.URLLookup
		if value, ok := existing[lookupKey(e.ID)]; ok {
			_ = d.json.Unmarshal([]byte(value), &current)
		}
		if current.Owner == e.Owner {
			continue
		}
		if err := d.writeJSON(ctx, lookupKey(e.ID), domain.URLLookup{Owner: e.Owner}); err != nil {
			return err
		}
		report.KeysWritten++
	}
	return nil
}

// reconcileList rewrites a composite-key list so it holds exactly the desired keys,
// keeping the current order of keys that survive
func (d *directory) reconcileList(ctx context.Context, key string, desired []string, report *ReconcileReport) error {
	current, err := d.readList(ctx, key)
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(desired))
	for _, k := range desired {
		wanted[k] = true
	}

	merged := make([]string, 0, len(desired))
	seen := make(map[string]bool, len(desired))
	for _, k := range current {
		if wanted[k] && !seen[k] {
			merged = append(merged, k)
			seen[k] = true
		}
	}
	for _, k := range desired {
		if !seen[k] {
			merged = append(merged, k)
			seen[k] = true
		}
	}

	if slices.Equal(current, merged) {
		return nil
	}
	if len(merged) == 0 {
		report.KeysDeleted++
	} else {
		report.KeysWritten++
	}
	return d.writeList(ctx, key, merged)
}
