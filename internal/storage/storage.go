// Package storage is the document I/O layer injected into the
// aggregation pipeline: read/write of document text plus filesystem
// change notifications that trigger rescans. The core consumes this
// interface; it never owns the files.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Store reads and writes whole documents by path.
type Store interface {
	// Read returns the document text.
	Read(ctx context.Context, path string) (string, error)
	// Write persists the document text, atomically where the backend
	// allows it.
	Write(ctx context.Context, path string, text string) error
	// List enumerates candidate document paths under root.
	List(ctx context.Context, root string) ([]string, error)
}

// FS is a filesystem-backed Store. Writes go through a temp file and
// rename so a crashed write never truncates a document.
type FS struct {
	// Ext filters List to files with this extension. Defaults to ".md".
	Ext string
}

// NewFS creates a filesystem store for markdown documents.
func NewFS() *FS {
	return &FS{Ext: ".md"}
}

func (s *FS) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

func (s *FS) Write(ctx context.Context, path string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (s *FS) List(ctx context.Context, root string) ([]string, error) {
	ext := s.Ext
	if ext == "" {
		ext = ".md"
	}
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}
