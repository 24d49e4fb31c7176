// Package bolt stores catalog snapshots in a bbolt database. Each Put is a
// single update transaction, so a crash leaves either the old or the new
// snapshot on disk.
package bolt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/snapshot"
)

var bucketName = []byte("snapshots")

var _ snapshot.Backend = (*Backend)(nil)

// Backend is a bbolt backed snapshot.Backend.
type Backend struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

// Open opens or creates the database at path.
func Open(path string) (*Backend, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.NewValidationError("snapshot.path", path, "path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("mkdir", filepath.Dir(trimmed), err)
	}
	db, err := bolt.Open(trimmed, constants.SecureFilePermissions, &bolt.Options{Timeout: constants.StoreOpenTimeout})
	if err != nil {
		return nil, errors.WrapIO("open", trimmed, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{db: db, path: trimmed}, nil
}

func ensureSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
}

// Path returns the database file path.
func (b *Backend) Path() string {
	return b.path
}

// Get implements snapshot.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var (
		value []byte
		found bool
	)
	err := b.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		value = append([]byte(nil), raw...)
		return nil
	})
	return value, found, err
}

// Put implements snapshot.Backend.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// Delete implements snapshot.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Close implements snapshot.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func (b *Backend) view(fn func(tx *bolt.Tx) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.ErrClosed
	}
	return b.db.View(fn)
}

func (b *Backend) update(fn func(tx *bolt.Tx) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.ErrClosed
	}
	return b.db.Update(fn)
}
