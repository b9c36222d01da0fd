package watch

import (
	"github.com/fsnotify/fsnotify"
)

// fsnotifyAdapter is the production NativeWatcher, backed by a real
// *fsnotify.Watcher. It translates fsnotify's bitmask Op into this
// package's own single-valued Kind, since RawEvent (like notify::EventKind)
// models one kind per event rather than a set of flags.
type fsnotifyAdapter struct {
	w      *fsnotify.Watcher
	events chan RawEvent
	errors chan error
	done   chan struct{}
}

// NewFSNotifyWatcher constructs a NativeWatcher backed by fsnotify. It's the
// default used by New unless overridden with WithNativeWatcher.
func NewFSNotifyWatcher() (NativeWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	a := &fsnotifyAdapter{
		w:      fw,
		events: make(chan RawEvent),
		errors: make(chan error),
		done:   make(chan struct{}),
	}
	go a.run()
	return a, nil
}

func (a *fsnotifyAdapter) run() {
	defer close(a.events)
	defer close(a.errors)
	for {
		select {
		case ev, ok := <-a.w.Events:
			if !ok {
				return
			}
			select {
			case a.events <- translateOp(ev.Name, ev.Op):
			case <-a.done:
				return
			}
		case err, ok := <-a.w.Errors:
			if !ok {
				return
			}
			select {
			case a.errors <- err:
			case <-a.done:
				return
			}
		}
	}
}

// translateOp maps fsnotify's Op bitmask onto this package's Kind. Only one
// Kind is produced per event; when more than one bit is set (observed on
// some platforms for rename-related sequences) Create/Remove/Rename take
// precedence over Write/Chmod, since they're the more structurally
// significant change.
func translateOp(name string, op fsnotify.Op) RawEvent {
	ev := RawEvent{Paths: []string{name}}
	switch {
	case op&fsnotify.Create != 0:
		ev.Kind = KindCreate
	case op&fsnotify.Remove != 0:
		ev.Kind = KindRemove
	case op&fsnotify.Rename != 0:
		ev.Kind = KindModifyName
	case op&fsnotify.Write != 0:
		ev.Kind = KindModifyData
	case op&fsnotify.Chmod != 0:
		ev.Kind = KindModifyMetadata
		ev.Metadata = MetadataPermissions
	default:
		ev.Kind = KindOther
	}
	return ev
}

func (a *fsnotifyAdapter) Add(path string) error    { return a.w.Add(path) }
func (a *fsnotifyAdapter) Remove(path string) error { return a.w.Remove(path) }

func (a *fsnotifyAdapter) Close() error {
	close(a.done)
	return a.w.Close()
}

func (a *fsnotifyAdapter) Events() <-chan RawEvent { return a.events }
func (a *fsnotifyAdapter) Errors() <-chan error    { return a.errors }
