package session

import (
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "local_storage"

// Storage is the browser-style key/value store holding the signed-in user
type Storage interface {
	// GetItem returns the value stored under key and whether it exists
	GetItem(key string) (string, bool)

	// SetItem stores value under key
	SetItem(key, value string) error

	// RemoveItem deletes key
	RemoveItem(key string) error

	// Clear deletes every key
	Clear() error
}

// MemoryStorage keeps items in memory for the lifetime of the process
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]string)
	return nil
}

// BoltStorage persists items in a BoltDB file so a session survives between runs
type BoltStorage struct {
	db *bbolt.DB
}

// NewBoltStorage opens or creates the storage file at path
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session storage: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStorage{db: db}, nil
}

func (b *BoltStorage) GetItem(key string) (string, bool) {
	var (
		value string
		found bool
	)
	b.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket([]byte(bucketName)).Get([]byte(key)); data != nil {
			value, found = string(data), true
		}
		return nil
	})
	return value, found
}

func (b *BoltStorage) SetItem(key, value string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), []byte(value))
	})
}

func (b *BoltStorage) RemoveItem(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}

func (b *BoltStorage) Clear() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Close closes the underlying database
func (b *BoltStorage) Close() error {
	return b.db.Close()
}
