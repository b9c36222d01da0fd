package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

// defaultDebounceWindow is the default batching window before a caller
// overrides it with WithDebounceWindow.
const defaultDebounceWindow = 300 * time.Millisecond

// options configures a Watcher. This package never reads a config file,
// environment variable, or flag itself; a caller that wants that should
// translate its own configuration into Options, letting it supply a logger
// or debounce window without this package depending on any particular config
// framework.
type options struct {
	window time.Duration
	logger Logger
	dirs   DirReader
	mime   MimeProber
	native func() (NativeWatcher, error)
}

func defaultOptions() *options {
	return &options{
		window: defaultDebounceWindow,
		dirs:   StdDirReader{},
		mime:   NoopMimeProber{},
		native: NewFSNotifyWatcher,
	}
}

// Option mutates a Watcher's configuration at construction time.
type Option func(*options)

// WithDebounceWindow overrides the default 300ms debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

// WithLogger supplies a Logger for diagnostics about swallowed errors
// (failed register/unregister, lstat/read_dir/mime-probe/canonicalize
// failures). None of these are fatal to the Watcher; a nil (default)
// Logger just means they go unreported.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDirReader overrides the default StdDirReader.
func WithDirReader(r DirReader) Option {
	return func(o *options) { o.dirs = r }
}

// WithMimeProber overrides the default NoopMimeProber.
func WithMimeProber(m MimeProber) Option {
	return func(o *options) { o.mime = m }
}

// WithNativeWatcher overrides the default fsnotify-backed NativeWatcher
// factory, e.g. to share one native watcher handle across subsystems or to
// substitute a fake in tests.
func WithNativeWatcher(factory func() (NativeWatcher, error)) Option {
	return func(o *options) { o.native = factory }
}

// Watcher is the public control surface: start, watch(set), trigger(dirs).
// It owns the native watcher handle exclusively and shares the watch table
// with its dispatcher under the table's own lock.
type Watcher struct {
	bus    EventBus
	native NativeWatcher
	table  *Table
	window time.Duration
	logger *logWrapper

	dispatch *dispatcher
	debounce *debounceStream

	// watchMu serializes Watch calls against each other; it does not guard
	// the table (which has its own lock) but the register/unregister calls
	// against the native watcher, which must not interleave between two
	// concurrent Watch callers.
	watchMu sync.Mutex

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopC    chan struct{}
}

// New constructs a Watcher that emits Notifications to bus. The returned
// Watcher is inert until Start is called.
func New(bus EventBus, opts ...Option) (*Watcher, error) {
	if bus == nil {
		return nil, errors.New("watch: event bus is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	native, err := o.native()
	if err != nil {
		return nil, fmt.Errorf("watch: failed to start native watcher: %w", err)
	}

	table := newTable()
	logger := newLogWrapper(o.logger)

	return &Watcher{
		bus:    bus,
		native: native,
		table:  table,
		window: o.window,
		logger: logger,
		dispatch: &dispatcher{
			table:  table,
			dirs:   o.dirs,
			mime:   o.mime,
			bus:    bus,
			logger: logger,
		},
		stopC: make(chan struct{}),
	}, nil
}

// Start constructs the debounce stream, wires the classifier to it, and
// spawns the dispatcher. Until it is called, native events are neither
// classified nor dispatched; Watch still updates the registrations and the
// table, and Trigger still re-reads directories. It must not be called more
// than once.
func (w *Watcher) Start(ctx context.Context) {
	w.debounce = newDebounceStream(w.window)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.pump(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.dispatch.run(ctx, w.debounce.Out())
	}()
}

// pump receives native events from the NativeWatcher's Events channel,
// classifies them, and feeds the result into the debounce stream. It runs
// on its own goroutine started by Start and never performs filesystem I/O
// itself — only channel operations and logging of native watcher errors.
func (w *Watcher) pump(ctx context.Context) {
	defer w.debounce.Close()

	events := w.native.Events()
	errs := w.native.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopC:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			classify(ev, w.debounce.TryEnqueue)
		case err, ok := <-errs:
			if !ok {
				continue
			}
			w.logger.Printf("watch: native watcher error: %s", err)
		}
	}
}

// Watch reconciles the watch table and the native watcher's registrations
// against requested. Paths that fail to register are silently excluded —
// Watch never returns an error for a per-path registration failure.
// Canonicalization of newly-added paths happens on a background goroutine;
// by the time it completes, the table is fully consistent with requested
// (minus any registration failures).
func (w *Watcher) Watch(requested []string) {
	w.watchMu.Lock()
	defer w.watchMu.Unlock()

	reqSet := make(map[string]struct{}, len(requested))
	for _, p := range requested {
		reqSet[filepath.Clean(p)] = struct{}{}
	}

	prior := w.table.snapshotKeys()

	for p := range prior {
		if _, ok := reqSet[p]; ok {
			continue
		}
		if err := w.native.Remove(p); err != nil {
			w.logger.Printf("watch: unregister %s: %s", p, err)
		}
	}

	for p := range reqSet {
		if _, ok := prior[p]; ok {
			continue
		}
		if err := w.native.Add(p); err != nil {
			w.logger.Printf("watch: register %s: %s", p, err)
			delete(reqSet, p)
		}
	}

	todo := w.table.replace(reqSet)
	if len(todo) == 0 {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.canonicalize(todo)
	}()
}

func (w *Watcher) canonicalize(todo []string) {
	staged := make(map[string]string, len(todo))
	for _, k := range todo {
		canon, err := filepath.EvalSymlinks(k)
		if err != nil {
			// Entry stays with no canonical: no aliasing for this path.
			w.logger.Printf("watch: canonicalize %s: %s", k, err)
			continue
		}
		if canon != k {
			staged[k] = canon
		}
	}
	if len(staged) > 0 {
		w.table.extendCanonicals(staged)
	}
}

// Trigger forces a directory re-read for each of dirs, bypassing the native
// event source entirely. It's meant for callers that just performed an
// in-process mutation (e.g. creating a file) and want its containing
// directory refreshed immediately rather than waiting on the native watcher
// to notice and the debounce window to elapse.
func (w *Watcher) Trigger(dirs []string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for _, d := range dirs {
			w.dispatch.dirChanged(context.Background(), "trigger", d)
		}
	}()
}

// Close releases the native watcher handle and waits for all in-flight
// goroutines (the pump, the dispatcher, any pending canonicalize/Trigger
// task) to finish. It's safe to call Close even if Start was never called.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopC)
		err = w.native.Close()
	})
	w.wg.Wait()
	return err
}
