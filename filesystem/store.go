// Package filesystem provides the file system backend for statica.
// All lookups go through an os.Root so request paths cannot escape the serve
// directory. It supplies per-request metadata, byte windows over files,
// directory enumeration and media type detection.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sagarc03/statica"
)

const defaultContentType = "application/octet-stream"

// Store provides read-only file system operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Stat looks up metadata for path. It is never cached, every call hits the
// file system. Returns statica.ErrNotFound if the path does not exist.
func (s *Store) Stat(ctx context.Context, path string) (statica.ResourceMetadata, error) {
	if err := ctx.Err(); err != nil {
		return statica.ResourceMetadata{}, err
	}

	info, err := s.root.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return statica.ResourceMetadata{}, statica.ErrNotFound
		}
		return statica.ResourceMetadata{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return statica.ResourceMetadata{
		Size:       info.Size(),
		ChangeTime: changeTime(info),
		ModTime:    info.ModTime(),
		IsDir:      info.IsDir(),
	}, nil
}

type sectionReadCloser struct {
	*io.SectionReader
	f *os.File
}

func (s *sectionReadCloser) Close() error {
	return s.f.Close()
}

// Open returns a reader over exactly the bytes of window. The caller is
// responsible for closing it. An empty window yields an empty reader.
func (s *Store) Open(ctx context.Context, path string, window statica.Window) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if window.Start < 0 {
		return nil, fmt.Errorf("open %s: %w: negative offset %d", path, statica.ErrInvalidInput, window.Start)
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, statica.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &sectionReadCloser{
		SectionReader: io.NewSectionReader(f, window.Start, window.Len()),
		f:             f,
	}, nil
}

// ReadDir lists the children of a directory sorted by name.
// Entries that disappear while listing are skipped.
func (s *Store) ReadDir(ctx context.Context, path string) ([]statica.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, statica.ErrNotFound
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}

	entries := make([]statica.DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		info, err := entry.Info()
		if err != nil {
			slog.Debug("skipping dir entry", "dir", path, "name", entry.Name(), "err", err)
			continue
		}

		entries = append(entries, statica.DirEntry{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   entry.IsDir(),
		})
	}

	return entries, nil
}

// ContentType returns the media type of path without parameters. The file
// extension is consulted first, then the leading bytes of the content are
// sniffed. Unknown content is application/octet-stream.
func (s *Store) ContentType(ctx context.Context, path string) string {
	if ct := detectContentType(path); ct != "" {
		return ct
	}

	if ctx.Err() != nil {
		return defaultContentType
	}

	f, err := s.root.Open(path)
	if err != nil {
		return defaultContentType
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", path, "err", closeErr)
		}
	}()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		slog.Debug("content sniffing failed", "path", path, "err", err)
		return defaultContentType
	}

	return stripParams(detected.String())
}

func detectContentType(path string) string {
	return stripParams(mime.TypeByExtension(filepath.Ext(path)))
}

func stripParams(contentType string) string {
	if contentType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return mediaType
}
