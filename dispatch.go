package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// dispatcher consumes debounced batches, splits each into files and
// directories, and turns them into Notifications. Each batch is tagged with
// a correlation id purely for logging — it never appears in an emitted
// Notification.
type dispatcher struct {
	table  *Table
	dirs   DirReader
	mime   MimeProber
	bus    EventBus
	logger *logWrapper
}

// run drains batches until the channel closes.
func (d *dispatcher) run(ctx context.Context, batches <-chan []string) {
	for paths := range batches {
		d.handleBatch(ctx, paths)
	}
}

func (d *dispatcher) handleBatch(ctx context.Context, paths []string) {
	batchID := uuid.NewString()

	dedup := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		dedup[p] = struct{}{}
	}
	sorted := make([]string, 0, len(dedup))
	for p := range dedup {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var files, dirs []string
	for _, p := range sorted {
		info, err := os.Lstat(p)
		if err != nil {
			d.logger.Printf("watch[%s]: lstat %s failed: %s", batchID, p, err)
		}
		if err != nil || info.IsDir() {
			// A stat failure falls through to the dir branch, which will
			// surface an IOErr of its own rather than silently dropping p.
			dirs = append(dirs, p)
		} else {
			files = append(files, p)
		}
	}

	d.filesPhase(ctx, batchID, files)
	for _, dir := range dirs {
		d.dirChanged(ctx, batchID, dir)
	}
}

func (d *dispatcher) filesPhase(ctx context.Context, batchID string, files []string) {
	if len(files) == 0 {
		return
	}

	results, err := d.mime.Probe(ctx, files)
	switch {
	case err != nil:
		d.logger.Printf("watch[%s]: mime probe failed: %s", batchID, err)
	case len(results) > 0:
		d.bus.Emit(MimeUpdate{Results: results})
	}

	// Issued unconditionally, independent of the probe's outcome: this is a
	// "cached metadata may be stale" signal, not a probe-failure signal.
	for _, f := range files {
		d.bus.Emit(IOErr{Path: f})
	}
}

// dirChanged re-reads dir and emits a DirRead/IOErr for it, or — if dir is
// reached by one or more watched symlinks — for each alias instead, with
// every child path rebased into that alias's namespace.
func (d *dispatcher) dirChanged(ctx context.Context, batchID, dir string) {
	aliases := d.table.project(dir)

	items, err := d.dirs.ReadDir(ctx, dir)
	if err != nil {
		d.logger.Printf("watch[%s]: read_dir %s failed: %s", batchID, dir, err)
	}

	if len(aliases) == 0 {
		if err != nil {
			d.bus.Emit(IOErr{Path: dir})
			return
		}
		d.bus.Emit(DirRead{Path: dir, Items: items})
		return
	}

	for _, a := range aliases {
		if err != nil {
			d.bus.Emit(IOErr{Path: a.Path})
			continue
		}
		d.bus.Emit(DirRead{Path: a.Path, Items: rebase(dir, a.Path, items)})
	}
}

// rebase translates a directory read taken at the physical path dir into
// alias's namespace: every child keeps its position relative to dir, but
// expressed under alias, and its FileInfo.Path is updated to match.
func rebase(dir, alias string, items map[string]FileInfo) map[string]FileInfo {
	rebased := make(map[string]FileInfo, len(items))
	for childPath, info := range items {
		rel, err := filepath.Rel(dir, childPath)
		if err != nil {
			rel = filepath.Base(childPath)
		}
		newPath := filepath.Join(alias, rel)
		rebased[newPath] = info.withPath(newPath)
	}
	return rebased
}
