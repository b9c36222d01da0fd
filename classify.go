package watch

import "path/filepath"

// classify filters a raw event down to the paths worth a closer look and
// hands them to enqueue. enqueue is expected to be non-blocking (see
// debounceStream.TryEnqueue) — classify runs inline on the Watcher's event
// pump goroutine, which receives from the NativeWatcher's Events channel,
// and must never block on downstream I/O.
func classify(ev RawEvent, enqueue func(string)) {
	if len(ev.Paths) == 0 {
		return
	}
	path := ev.Paths[0]
	parent := parentOf(path)

	switch ev.Kind {
	case KindCreate:
		enqueue(parent)
	case KindModifyData:
		enqueue(path)
		enqueue(parent)
	case KindModifyMetadata:
		switch ev.Metadata {
		case MetadataPermissions, MetadataOwnership, MetadataExtended:
			enqueue(path)
			enqueue(parent)
		}
		// MetadataOther: drop.
	case KindModifyName:
		enqueue(path)
		enqueue(parent)
	case KindRemove:
		enqueue(path)
		enqueue(parent)
	}
	// KindOther: drop.
}

// parentOf returns path's parent, falling back to path itself when path has
// no parent (e.g. it's already a filesystem root).
func parentOf(path string) string {
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return parent
}
