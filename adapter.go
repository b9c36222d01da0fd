package watch

// Kind identifies the category of filesystem change a RawEvent reports,
// mirroring notify::EventKind from the reference implementation this
// package was distilled from.
type Kind uint8

const (
	KindOther Kind = iota
	KindCreate
	KindModifyData
	KindModifyMetadata
	KindModifyName
	KindRemove
)

// MetadataKind narrows a KindModifyMetadata event to the specific attribute
// that changed, mirroring notify::event::MetadataKind.
type MetadataKind uint8

const (
	MetadataOther MetadataKind = iota
	MetadataPermissions
	MetadataOwnership
	MetadataExtended
)

// RawEvent is a single native filesystem notification, translated from
// whatever the underlying NativeWatcher implementation speaks into this
// package's own vocabulary. Paths is non-empty for events of interest; the
// classifier only ever looks at Paths[0].
type RawEvent struct {
	Kind     Kind
	Metadata MetadataKind // only meaningful when Kind == KindModifyMetadata
	Paths    []string
}

// NativeWatcher is the adapter this package consumes over OS watch
// primitives. Add and Remove are fallible and idempotent. Events and Errors
// are delivered from a goroutine this package does not own; the classifier
// consuming them must never block on downstream I/O.
type NativeWatcher interface {
	Add(path string) error
	Remove(path string) error
	Close() error
	Events() <-chan RawEvent
	Errors() <-chan error
}
