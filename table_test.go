package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableReplaceCarriesCanonicals(t *testing.T) {
	tb := newTable()

	todo := tb.replace(map[string]struct{}{"/a": {}, "/b": {}})
	assert.ElementsMatch(t, []string{"/a", "/b"}, todo)

	tb.extendCanonicals(map[string]string{"/a": "/real-a"})

	// Replacing with the same key set (plus one new key) must carry /a's
	// canonical forward, and only report the genuinely new key in todo.
	todo = tb.replace(map[string]struct{}{"/a": {}, "/b": {}, "/c": {}})
	assert.Equal(t, []string{"/c"}, todo)

	keys := tb.snapshotKeys()
	assert.Len(t, keys, 3)

	aliases := tb.project("/real-a/child")
	require.Len(t, aliases, 1)
	assert.Equal(t, Alias{Key: "/a", Path: "/a/child"}, aliases[0])
}

func TestTableReplaceDropsRemovedKeys(t *testing.T) {
	tb := newTable()
	tb.replace(map[string]struct{}{"/a": {}, "/b": {}})
	tb.extendCanonicals(map[string]string{"/a": "/real-a", "/b": "/real-b"})

	tb.replace(map[string]struct{}{"/b": {}})

	keys := tb.snapshotKeys()
	assert.Equal(t, map[string]struct{}{"/b": {}}, keys)

	// /a's canonical is gone along with the entry; no alias should be
	// produced for it anymore.
	assert.Empty(t, tb.project("/real-a/child"))
}

func TestTableSortedDescendingByCanonical(t *testing.T) {
	tb := newTable()
	tb.replace(map[string]struct{}{"/a": {}, "/b": {}, "/c": {}})
	tb.extendCanonicals(map[string]string{
		"/a": "/real/aaa",
		"/b": "/real/zzz",
		"/c": "/real/mmm",
	})

	tb.mu.RLock()
	defer tb.mu.RUnlock()
	require.Len(t, tb.entries, 3)
	assert.Equal(t, "/real/zzz", tb.entries[0].canonical)
	assert.Equal(t, "/real/mmm", tb.entries[1].canonical)
	assert.Equal(t, "/real/aaa", tb.entries[2].canonical)
}

func TestTableEntriesWithoutCanonicalSortLast(t *testing.T) {
	tb := newTable()
	tb.replace(map[string]struct{}{"/a": {}, "/b": {}})
	tb.extendCanonicals(map[string]string{"/a": "/real-a"})

	tb.mu.RLock()
	defer tb.mu.RUnlock()
	require.Len(t, tb.entries, 2)
	assert.Equal(t, "/a", tb.entries[0].path)
	assert.True(t, tb.entries[0].hasCanonical)
	assert.Equal(t, "/b", tb.entries[1].path)
	assert.False(t, tb.entries[1].hasCanonical)
}

func TestTableProjectMultipleAliases(t *testing.T) {
	tb := newTable()
	tb.replace(map[string]struct{}{"/outer": {}, "/inner": {}})
	// Two watched keys whose canonicals happen to nest: /real/shared is a
	// prefix of /real/shared/deep, and a path under the latter should
	// project through both, longest-prefix (most specific) first.
	tb.extendCanonicals(map[string]string{
		"/outer": "/real/shared",
		"/inner": "/real/shared/deep",
	})

	aliases := tb.project("/real/shared/deep/file.txt")
	require.Len(t, aliases, 2)
	assert.Equal(t, "/inner", aliases[0].Key)
	assert.Equal(t, "/inner/file.txt", aliases[0].Path)
	assert.Equal(t, "/outer", aliases[1].Key)
	assert.Equal(t, "/outer/deep/file.txt", aliases[1].Path)
}

func TestTableProjectNoMatch(t *testing.T) {
	tb := newTable()
	tb.replace(map[string]struct{}{"/a": {}})
	tb.extendCanonicals(map[string]string{"/a": "/real"})

	assert.Empty(t, tb.project("/other/file.txt"))
	// Exact equality to the canonical itself is not a strict prefix match.
	assert.Empty(t, tb.project("/real"))
	// "/realfoo" must not be treated as within "/real".
	assert.Empty(t, tb.project("/realfoo/file.txt"))
}

func TestStripPrefix(t *testing.T) {
	rel, ok := stripPrefix("/real/child", "/real")
	require.True(t, ok)
	assert.Equal(t, "child", rel)

	_, ok = stripPrefix("/real", "/real")
	assert.False(t, ok)

	_, ok = stripPrefix("/realfoo", "/real")
	assert.False(t, ok)

	_, ok = stripPrefix("/real/child", "")
	assert.False(t, ok)
}
