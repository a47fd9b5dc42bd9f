package task

import (
	"sort"
	"strings"
	"time"
)

const (
	keyPrefix   = "tasks:"
	filterDelim = "|"

	// filterAbsent is the literal rendered for a recognized filter that was
	// forwarded without a value. Handlers pass every recognized filter key
	// even when unset, so the segment must stay stable instead of being
	// dropped; otherwise the read and invalidation paths could disagree on
	// which keys exist.
	filterAbsent = "undefined"
)

// ListKey derives the cache key for an owner's listing under the given
// filters. The same owner and semantically equal filters always map to the
// same key, regardless of how the filters were assembled. An empty filter set
// maps to the canonical bare key.
func ListKey(owner string, f Filters) string {
	if f.Empty() {
		return keyPrefix + owner
	}

	segments := map[string]string{
		"status":  filterAbsent,
		"dueDate": filterAbsent,
	}
	if f.Status != nil {
		segments["status"] = string(*f.Status)
	}
	if f.DueBefore != nil {
		segments["dueDate"] = f.DueBefore.UTC().Format(time.RFC3339)
	}

	names := make([]string, 0, len(segments))
	for name := range segments {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+":"+segments[name])
	}
	return keyPrefix + owner + ":" + strings.Join(parts, filterDelim)
}

// OwnerPattern returns the wildcard covering every key ListKey can produce
// for the owner, including the canonical bare key.
func OwnerPattern(owner string) string {
	return keyPrefix + owner + "*"
}
