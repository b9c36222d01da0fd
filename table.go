package watch

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// entry is one watched path, and optionally the canonical (symlink-resolved)
// target it was discovered to point at.
type entry struct {
	path         string
	canonical    string
	hasCanonical bool
}

// Alias is one projection of a physical path into a watched key's
// namespace: Path is Key plus the suffix of the physical path beyond the
// key's canonical target.
type Alias struct {
	Key  string
	Path string
}

// Table is the authoritative mapping of watched path to optional canonical
// target. It's shared by the control surface (writer) and the dispatcher
// (reader) behind a read-biased lock; write critical sections are limited
// to a swap-and-sort.
type Table struct {
	mu      sync.RWMutex
	entries []entry
}

func newTable() *Table {
	return &Table{}
}

// snapshotKeys returns the current key set, for diffing against a new
// watch request.
func (t *Table) snapshotKeys() map[string]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make(map[string]struct{}, len(t.entries))
	for _, e := range t.entries {
		keys[e.path] = struct{}{}
	}
	return keys
}

// replace swaps the table's key set to newKeys. Keys already present carry
// over their existing canonical (if any) from the table's prior state; keys
// new to the table are returned in todo for the caller to canonicalize
// asynchronously via extendCanonicals.
func (t *Table) replace(newKeys map[string]struct{}) (todo []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior := make(map[string]entry, len(t.entries))
	for _, e := range t.entries {
		prior[e.path] = e
	}

	next := make([]entry, 0, len(newKeys))
	for k := range newKeys {
		if e, ok := prior[k]; ok {
			next = append(next, e)
			continue
		}
		next = append(next, entry{path: k})
		todo = append(todo, k)
	}

	t.entries = next
	sortEntriesDescending(t.entries)
	return todo
}

// extendCanonicals merges freshly-resolved canonicals into the table and
// re-sorts it descending by canonical.
func (t *Table) extendCanonicals(resolved map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if c, ok := resolved[t.entries[i].path]; ok {
			t.entries[i].canonical = c
			t.entries[i].hasCanonical = true
		}
	}
	sortEntriesDescending(t.entries)
}

// project returns every alias through which physical is observed: one per
// watched entry whose canonical is a strict prefix of physical. Entries
// without a canonical never match. Order is descending by canonical (the
// table's natural order), i.e. the most specific (longest) canonical prefix
// comes first, but every match is returned — a physical path can fan out to
// more than one logical observer when several symlinks point at the same or
// nested targets.
func (t *Table) project(physical string) []Alias {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var aliases []Alias
	for _, e := range t.entries {
		if !e.hasCanonical {
			continue
		}
		rel, ok := stripPrefix(physical, e.canonical)
		if !ok {
			continue
		}
		aliases = append(aliases, Alias{Key: e.path, Path: filepath.Join(e.path, rel)})
	}
	return aliases
}

// sortEntriesDescending sorts entries descending by canonical (lexically),
// with entries lacking a canonical sorted last.
func sortEntriesDescending(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ei, ej := entries[i], entries[j]
		if ei.hasCanonical != ej.hasCanonical {
			return ei.hasCanonical
		}
		if !ei.hasCanonical {
			return false
		}
		return ei.canonical > ej.canonical
	})
}

// stripPrefix reports whether canonical is a strict prefix of physical at a
// path-component boundary, and if so returns the remainder with its leading
// separator removed. "/real" strictly prefixes "/real/x" (rel "x") but not
// "/realfoo", and does not match itself (no relative suffix to project).
func stripPrefix(physical, canonical string) (rel string, ok bool) {
	if canonical == "" || !strings.HasPrefix(physical, canonical) {
		return "", false
	}
	rest := physical[len(canonical):]
	if rest == "" {
		return "", false
	}
	if rest[0] != filepath.Separator {
		return "", false
	}
	return rest[1:], true
}
