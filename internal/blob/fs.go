package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// compile-time check that *FS implements Store
var _ Store = (*FS)(nil)

// FS stores each blob as one file under a root directory.
//
// Blob ids embed short ids ("<owner>+<random>") and are caller-supplied, so
// they are never used as filenames directly; each id is base64url-encoded
// first, which rules out path separators and traversal sequences entirely.
type FS struct {
	root string
}

// NewFS creates the root directory if needed and returns the store.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: creating root %s: %w", root, err)
	}
	return &FS{root: root}, nil
}

func (f *FS) path(id string) string {
	return filepath.Join(f.root, base64.RawURLEncoding.EncodeToString([]byte(id)))
}

func (f *FS) Exists(_ context.Context, id string) (bool, error) {
	_, err := os.Stat(f.path(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("blob: stat %s: %w", id, err)
}

func (f *FS) Get(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("blob: reading %s: %w", id, err)
	}
	return data, nil
}

// Put writes the blob atomically: bytes go to a temp file in the same
// directory, then a rename swaps it into place. A concurrent reader sees
// either no file or the complete payload, never a partial write.
func (f *FS) Put(_ context.Context, id string, data []byte) error {
	tmp, err := os.CreateTemp(f.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("blob: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("blob: writing %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("blob: closing %s: %w", id, err)
	}
	if err := os.Rename(tmpName, f.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("blob: renaming %s: %w", id, err)
	}
	return nil
}

func (f *FS) Delete(_ context.Context, id string) error {
	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: deleting %s: %w", id, err)
	}
	return nil
}
