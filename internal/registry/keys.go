package registry

import (
	"slices"

	"github.com/feral-file/ff-registry/internal/domain"
)

// ownerKey is the primary record key of an entry
func ownerKey(owner, id string) string {
	return domain.KEY_PREFIX_OWNER + owner + domain.COMPOSITE_KEY_SEPARATOR + id
}

// ownerPrefix is the key range holding every primary record of an owner
func ownerPrefix(owner string) string {
	return domain.KEY_PREFIX_OWNER + owner + domain.COMPOSITE_KEY_SEPARATOR
}

// ownerForms returns the canonical owner followed by the same identity on the other network.
// A record is stored under exactly one of them.
func ownerForms(owner string) ([]string, error) {
	addr, err := domain.ParseAddress(owner)
	if err != nil {
		return nil, err
	}
	return []string{addr.String(), addr.OtherNetwork().String()}, nil
}

func lookupKey(id string) string {
	return domain.KEY_PREFIX_URL_LOOKUP + id
}

func statusKey(status domain.Status) string {
	return domain.KEY_PREFIX_STATUS_INDEX + string(status)
}

func categoryKey(category string) string {
	return domain.KEY_PREFIX_CATEGORY_INDEX + category
}

// appendIfAbsent appends key and reports whether the list changed
func appendIfAbsent(list []string, key string) ([]string, bool) {
	if slices.Contains(list, key) {
		return list, false
	}
	return append(list, key), true
}

// removeAll drops every occurrence of key and reports whether the list changed
func removeAll(list []string, key string) ([]string, bool) {
	out := list[:0:0]
	for _, k := range list {
		if k != key {
			out = append(out, k)
		}
	}
	return out, len(out) != len(list)
}
