package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/twiced-technology-gmbh/tasklist/internal/filelock"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// File stores each key as one file inside a directory. Writes replace the
// file atomically and are serialized across processes by an advisory lock.
type File struct {
	dir string
	ext string
}

var _ KV = (*File)(nil)

// NewFile returns a File KV rooted at dir. ext (for example ".json") is
// appended to every key's file name.
func NewFile(dir, ext string) *File {
	return &File{dir: dir, ext: ext}
}

// Path returns the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+f.ext)
}

// Get reads the file for key.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return data, nil
}

// Set writes value to a temp file in the same directory and renames it
// over the key's file.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, dirMode); err != nil {
		return fmt.Errorf("creating slot directory: %w", err)
	}

	target := f.Path(key)
	return filelock.Guard(target, func() error {
		return writeAtomic(target, value)
	})
}

// Close is a no-op.
func (f *File) Close() error { return nil }

func writeAtomic(target string, value []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		cleanup()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", filepath.Base(target), err)
	}
	return nil
}

// sanitizeKey maps a key to a single path element.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, ".") == "" {
		return "_"
	}
	return out
}
