// Package linkindex defines the file/link index collaborator consumed
// by the board builder. The core never maintains this index itself; a
// host supplies an implementation. A filesystem-backed resolver is
// provided for the CLI, and a fixed in-memory index for tests.
package linkindex

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileInfo identifies a resolved link target.
type FileInfo struct {
	Path   string
	Exists bool
}

// Index resolves link text to file identities and serves cached
// metadata for linked files.
type Index interface {
	// Resolve maps wikilink text to a file identity.
	Resolve(linkText string) (FileInfo, error)
	// Metadata returns cached metadata for a linked file. A missing
	// file yields an empty map, not an error.
	Metadata(path string) (map[string]any, error)
}

// Nop is an Index that resolves nothing. Useful when no host index is
// available.
type Nop struct{}

func (Nop) Resolve(linkText string) (FileInfo, error) {
	return FileInfo{Path: linkText, Exists: false}, nil
}

func (Nop) Metadata(path string) (map[string]any, error) {
	return map[string]any{}, nil
}

// Fixed is an in-memory Index for tests.
type Fixed struct {
	Files map[string]map[string]any // path -> metadata
}

func (f Fixed) Resolve(linkText string) (FileInfo, error) {
	path := normalizeLink(linkText)
	_, ok := f.Files[path]
	return FileInfo{Path: path, Exists: ok}, nil
}

func (f Fixed) Metadata(path string) (map[string]any, error) {
	md, ok := f.Files[path]
	if !ok {
		return map[string]any{}, nil
	}
	return md, nil
}

// FS resolves links against a vault directory. Metadata lookups stat
// the target and cache the result.
type FS struct {
	Root string

	mu    sync.Mutex
	cache map[string]map[string]any
}

// NewFS builds a filesystem-backed index rooted at dir.
func NewFS(dir string) *FS {
	return &FS{Root: dir, cache: make(map[string]map[string]any)}
}

func (f *FS) Resolve(linkText string) (FileInfo, error) {
	rel := normalizeLink(linkText)
	abs := filepath.Join(f.Root, filepath.FromSlash(rel))
	_, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{Path: rel, Exists: false}, nil
		}
		return FileInfo{}, err
	}
	return FileInfo{Path: rel, Exists: true}, nil
}

func (f *FS) Metadata(path string) (map[string]any, error) {
	f.mu.Lock()
	if md, ok := f.cache[path]; ok {
		f.mu.Unlock()
		return md, nil
	}
	f.mu.Unlock()

	abs := filepath.Join(f.Root, filepath.FromSlash(path))
	info, err := os.Stat(abs)
	md := map[string]any{}
	if err == nil {
		md["size"] = info.Size()
		md["mtime"] = info.ModTime().UTC()
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	f.mu.Lock()
	f.cache[path] = md
	f.mu.Unlock()
	return md, nil
}

// normalizeLink strips an alias and heading/block suffixes and appends
// the markdown extension when the link has none.
func normalizeLink(linkText string) string {
	s := linkText
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s != "" && filepath.Ext(s) == "" {
		s += ".md"
	}
	return s
}
