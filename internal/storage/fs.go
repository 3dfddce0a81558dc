// Package storage provides crash-safe file operations for vault mutation.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes content to path via a temporary file in the same
// directory: tmp file → fsync → rename. A crash mid-write never leaves a
// partial file at path.
func WriteAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".audiolink-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Move renames src to dst, creating dst's parent directory if needed.
// Falls back to copy-and-delete when rename fails (cross-device link).
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyAndDelete(src, dst)
}

// copyAndDelete copies a file and then deletes the original.
// Used when os.Rename fails due to cross-device link.
func copyAndDelete(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("storage: read source file: %w", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("storage: stat source file: %w", err)
	}

	if err := WriteAtomic(dst, data); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode()); err != nil {
		return fmt.Errorf("storage: chmod destination: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("storage: remove source file: %w", err)
	}
	return nil
}
