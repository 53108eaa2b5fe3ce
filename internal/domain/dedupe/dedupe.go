// Package dedupe tracks which participant names a run has already seen.
package dedupe

import (
	"context"
	"strings"
	"sync"
)

// Deduper records seen names so a roster never holds the same name twice.
type Deduper interface {
	// SeenAndRecord atomically checks if name was seen and records it if not.
	// Returns true if name was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, name string) bool

	// Unrecord removes a name, e.g. when the entry it belonged to was abandoned.
	Unrecord(ctx context.Context, name string)

	Size() int
}

// inMemoryDeduper implements Deduper over a map guarded by a mutex.
// Names are keyed with surrounding whitespace trimmed and are otherwise exact.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{seen: make(map[string]struct{})}
}

// SeenAndRecord atomically checks if name was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, name string) bool {
	key := strings.TrimSpace(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Unrecord removes a name from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, name string) {
	key := strings.TrimSpace(name)

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

// Size returns the current number of recorded names.
func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// FirstDuplicate returns the first name in names that repeats an earlier one.
func FirstDuplicate(ctx context.Context, names []string) (string, bool) {
	d := NewInMemoryDeduper()
	for _, name := range names {
		if d.SeenAndRecord(ctx, name) {
			return name, true
		}
	}
	return "", false
}
