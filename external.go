package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// FileInfo is the minimal per-child metadata this package exchanges with a
// DirReader. Path is always expressed in the caller's namespace, which may
// differ from the physical path the entry was actually read from when the
// containing directory was reached through a symlink alias.
type FileInfo struct {
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// withPath returns a copy of f rebased onto a new path, used when projecting
// a physical directory read through a symlink alias.
func (f FileInfo) withPath(path string) FileInfo {
	f.Path = path
	return f
}

// MimeResult is one path's mime probe outcome.
type MimeResult struct {
	Path string
	Mime string
}

// DirReader enumerates a directory's immediate children. This package never
// recurses and never implements directory enumeration as a first-class
// feature beyond the minimal reference implementation below.
type DirReader interface {
	ReadDir(ctx context.Context, path string) (map[string]FileInfo, error)
}

// MimeProber identifies the mime type of a batch of file paths in one call.
// Like DirReader, it's a true external collaborator — the reference
// implementation below never actually probes anything.
type MimeProber interface {
	Probe(ctx context.Context, paths []string) ([]MimeResult, error)
}

// StdDirReader is a minimal DirReader built on the standard library. It
// exists so this package is usable without a caller having to wire up its
// own directory reader first; production callers embedding this package in
// a larger application will typically supply a richer one of their own
// (matching file permissions, symlink targets, etc., to whatever the rest
// of that application already needs).
type StdDirReader struct{}

// ReadDir implements DirReader.
func (StdDirReader) ReadDir(_ context.Context, path string) (map[string]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	items := make(map[string]FileInfo, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			// The entry vanished between ReadDir and Info; skip it rather
			// than fail the whole read.
			continue
		}
		childPath := filepath.Join(path, e.Name())
		items[childPath] = FileInfo{
			Path:    childPath,
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}
	return items, nil
}

// NoopMimeProber never identifies a mime type. It's the zero-dependency
// stand-in for the original implementation's external::file, which shells
// out to the file(1) utility; production callers should supply a MimeProber
// backed by whatever mime-sniffing mechanism the rest of their application
// already uses.
type NoopMimeProber struct{}

// Probe implements MimeProber.
func (NoopMimeProber) Probe(_ context.Context, _ []string) ([]MimeResult, error) {
	return nil, nil
}
