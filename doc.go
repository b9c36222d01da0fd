// Package watch maintains live awareness of a caller-chosen set of
// directories on disk. It coalesces and debounces native filesystem
// notifications, distinguishes file-content changes from directory-structure
// changes, resolves events occurring inside symlink targets back to the
// symlink paths the caller watches under, and emits high-level change
// notifications (directory re-read, per-file metadata refresh, I/O error) to
// an injected EventBus.
//
// The package does not recurse into subdirectories, does not persist state
// across runs, does not attempt to deliver every raw notification (batching
// and deduplication are deliberate), and does not guarantee ordering between
// unrelated paths.
package watch
