// Package files stores each snapshot key as a file in a directory.
package files

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/snapshot"
)

var _ snapshot.Backend = (*Backend)(nil)

// Backend is a directory backed snapshot.Backend. Writes go to a temporary
// file that is renamed over the target, which is atomic on POSIX filesystems.
type Backend struct {
	mu  sync.RWMutex
	dir string
	ext string
}

// Open creates dir if needed. ext is appended to every key ("json", "yaml").
func Open(dir, ext string) (*Backend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.NewValidationError("snapshot.path", dir, "directory is required")
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("mkdir", dir, err)
	}
	return &Backend{dir: dir, ext: strings.TrimPrefix(ext, ".")}, nil
}

// Path returns the file path used for key. The key is escaped into a single
// file name, so distinct keys never share a file.
func (b *Backend) Path(key string) string {
	name := strings.ReplaceAll(url.PathEscape(key), `\`, "%5C")
	if name == "." || name == ".." {
		name = strings.ReplaceAll(name, ".", "%2E")
	}
	if b.ext != "" {
		name += "." + b.ext
	}
	return filepath.Join(b.dir, name)
}

// Get implements snapshot.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put implements snapshot.Backend.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	target := b.Path(key)
	tempFile, err := os.CreateTemp(b.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(value); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", tempPath, err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("sync", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, constants.SecureFilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", tempPath, err)
	}

	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("rename", target, err)
	}
	return nil
}

// Delete implements snapshot.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.Path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close implements snapshot.Backend.
func (b *Backend) Close() error {
	return nil
}
