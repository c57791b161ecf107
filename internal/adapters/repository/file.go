package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/coinrush/internal/domain/model"
)

// FileBackend stores the board as a pretty-printed JSON array. Writes go to
// a temporary file in the same directory which is then renamed over the
// target, so a crash mid-write leaves the previous board readable.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for path. The file is created on the
// first save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Name() string { return "file" }

// Path returns the target file.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Load(_ context.Context) (model.Board, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Board{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Board{}, nil
	}
	var board model.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return board.Clone(), nil
}

func (f *FileBackend) Save(ctx context.Context, board model.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(board.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return syncDir(dir)
}

// syncDir flushes the directory entry written by a rename.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir %s: %w", dir, err)
	}
	defer func() { _ = d.Close() }()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync dir %s: %w", dir, err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }
