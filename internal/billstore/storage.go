package billstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage stores receipt files
type FileStorage interface {
	// Save writes data under name and returns the stored name
	Save(name string, data []byte) (string, error)

	// Get reads a stored file
	Get(name string) ([]byte, error)

	// Delete removes a stored file
	Delete(name string) error
}

// DiskStorage keeps receipts in a directory
type DiskStorage struct {
	basePath string
}

// NewDiskStorage creates the receipts directory if needed
func NewDiskStorage(basePath string) (*DiskStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &DiskStorage{basePath: basePath}, nil
}

// path confines name to the storage directory
func (d *DiskStorage) path(name string) string {
	return filepath.Join(d.basePath, filepath.Base(filepath.Clean("/"+name)))
}

func (d *DiskStorage) Save(name string, data []byte) (string, error) {
	if err := os.WriteFile(d.path(name), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filepath.Base(d.path(name)), nil
}

func (d *DiskStorage) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (d *DiskStorage) Delete(name string) error {
	if err := os.Remove(d.path(name)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
