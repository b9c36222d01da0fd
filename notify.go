package watch

// Notification is the tagged union of messages this package emits to an
// EventBus. The unexported marker method keeps the set closed to the three
// variants below.
type Notification interface {
	isNotification()
}

// DirRead reports a successful directory re-read. Items is keyed by child
// path, expressed in the caller's namespace (i.e. already rebased through
// any symlink alias — see Table.project).
type DirRead struct {
	Path  string
	Items map[string]FileInfo
}

func (DirRead) isNotification() {}

// IOErr reports a read or stat failure for Path, or — during the files
// phase of a batch — signals that a file's cached metadata should be
// considered stale and refreshed, independent of whether that refresh
// would actually find anything changed.
type IOErr struct {
	Path string
}

func (IOErr) isNotification() {}

// MimeUpdate reports the result of a mime probe issued for one batch's
// changed files.
type MimeUpdate struct {
	Results []MimeResult
}

func (MimeUpdate) isNotification() {}

// EventBus is the outbound collaborator this package emits Notifications
// to. Implementations are assumed thread-safe and non-blocking; emissions
// are fire-and-forget and this package never waits on them.
type EventBus interface {
	Emit(Notification)
}

// ChanBus is a minimal EventBus backed by a buffered channel. Emit never
// blocks: once the buffer is full, further notifications are dropped (and,
// if a Logger was supplied, logged) rather than backing up the dispatcher.
type ChanBus struct {
	ch     chan Notification
	logger *logWrapper
}

// NewChanBus creates a ChanBus with the given buffer size. A nil logger is
// fine; dropped notifications are simply not logged.
func NewChanBus(buffer int, logger Logger) *ChanBus {
	return &ChanBus{
		ch:     make(chan Notification, buffer),
		logger: newLogWrapper(logger),
	}
}

// C returns the channel notifications are delivered on.
func (b *ChanBus) C() <-chan Notification {
	return b.ch
}

// Emit implements EventBus.
func (b *ChanBus) Emit(n Notification) {
	select {
	case b.ch <- n:
	default:
		b.logger.Printf("watch: event bus full, dropping %T", n)
	}
}
