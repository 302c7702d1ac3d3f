package guildconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps the mapping as one JSON object in a file:
//
//	{"<guildId>": {"enabled": <bool>}, ...}
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend stored at path. The file is created on first read.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// ReadAll parses the file. A missing file is created holding an empty object.
func (f *FileBackend) ReadAll(ctx context.Context) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		entries := make(map[string]json.RawMessage)
		if err := f.write(entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	entries := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if entries == nil {
		// the file held a bare null
		entries = make(map[string]json.RawMessage)
	}
	return entries, nil
}

// WriteEntry rewrites the whole file from all.
func (f *FileBackend) WriteEntry(_ context.Context, _ string, _ json.RawMessage, all map[string]json.RawMessage) error {
	return f.write(all)
}

// Close is a no-op.
func (f *FileBackend) Close() error {
	return nil
}

// write replaces the file atomically so a crash never leaves half a document.
func (f *FileBackend) write(all map[string]json.RawMessage) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode guild configs: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
