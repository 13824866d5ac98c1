package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
)

// FileStorage reads whole input files and replaces output files atomically
type FileStorage struct {
	perm os.FileMode
}

// NewFileStorage creates a storage that writes files with the given permissions
func NewFileStorage(perm os.FileMode) *FileStorage {
	return &FileStorage{perm: perm}
}

// Read returns the full contents of path
func (s *FileStorage) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path with data. The bytes go to a uniquely named temp file
// next to path which is synced and renamed over the target, so readers see
// either the old file or the complete new one.
func (s *FileStorage) Write(path string, data []byte) (err error) {
	tmpPath := TempPath(path, ksuid.New())

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, s.perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err = file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// TempPath returns the temp file name used while writing path
func TempPath(path string, id ksuid.KSUID) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, "."+base+"."+id.String()+".tmp")
}
