package gma

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFile serializes the archive to path.
//
// Uses an atomic write (temp file + rename) to prevent partial archives on
// failure. Parent directories are created as needed.
func (b *Builder) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	return streamFileAtomic(path, b)
}

// WriteFileBytes writes already-serialized archive bytes to path with the
// same atomic semantics as [Builder.WriteFile]. The bytes are not validated;
// parse them with [Read] first if that matters.
func WriteFileBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	return streamFileAtomic(path, bytes.NewReader(data))
}

// streamFileAtomic writes src to a temp file then renames it to target,
// ensuring atomic replacement of the target file.
func streamFileAtomic(target string, src io.WriterTo) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".gma-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := src.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// ReadFile reads and parses the archive at path.
//
// The whole file is loaded into memory; the returned Archive aliases that
// buffer.
func ReadFile(path string, opts ...ReadOption) (*Archive, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(buf, opts...)
}
