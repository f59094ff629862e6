// Package cache provides the local artifact cache shared across builds.
//
// The cache is a flat directory of files named by their source filename.
// There is no index: presence of a file is the only metadata. Entries are
// created after a verified download or adopted from a previous build's
// server output, are never modified in place, and are only removed by an
// explicit Clear.
//
// Writes go through a temporary file and a rename, and are serialized per
// filename, so a concurrent reader either sees a complete entry or none.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/Norgate-AV/mpb/internal/utils"
)

// DefaultCacheDir is the cache directory name under the build output dir
const DefaultCacheDir = "modcache"

// ErrCacheMiss is returned by Get when no entry exists for a filename
var ErrCacheMiss = errors.New("cache miss")

// Cache stores downloaded artifacts keyed by filename
type Cache struct {
	fs   afero.Fs
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a cache rooted at dir, creating the directory if needed
func New(fs afero.Fs, dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory not specified")
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		fs:    fs,
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the cache root directory
func (c *Cache) Dir() string {
	return c.root
}

// Path returns where the entry for name is stored
func (c *Cache) Path(name string) string {
	return filepath.Join(c.root, name)
}

// Has reports whether an entry exists for name
func (c *Cache) Has(name string) bool {
	if !utils.ValidFileName(name) {
		return false
	}

	info, err := c.fs.Stat(c.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// Get returns the cached bytes for name, or ErrCacheMiss
func (c *Cache) Get(name string) ([]byte, error) {
	data, ok, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrCacheMiss
	}

	return data, nil
}

// Lookup returns the cached bytes for name. A miss is reported through ok,
// never as an error.
func (c *Cache) Lookup(name string) (data []byte, ok bool, err error) {
	if !utils.ValidFileName(name) {
		return nil, false, fmt.Errorf("invalid cache entry name %q", name)
	}

	data, err = afero.ReadFile(c.fs, c.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", name, err)
	}

	return data, true, nil
}

// Put stores data under name. If an entry already exists the call is a
// no-op and the existing bytes are kept.
func (c *Cache) Put(name string, data []byte) error {
	if !utils.ValidFileName(name) {
		return fmt.Errorf("invalid cache entry name %q", name)
	}

	unlock := c.lock(name)
	defer unlock()

	if c.Has(name) {
		return nil
	}

	if err := utils.AtomicWriteFile(c.fs, c.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", name, err)
	}

	return nil
}

// Replace swaps the entry for name with data. It is only used to repair an
// entry that failed verification; the old file is replaced atomically, never
// rewritten in place.
func (c *Cache) Replace(name string, data []byte) error {
	if !utils.ValidFileName(name) {
		return fmt.Errorf("invalid cache entry name %q", name)
	}

	unlock := c.lock(name)
	defer unlock()

	if err := utils.AtomicWriteFile(c.fs, c.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to replace cache entry %s: %w", name, err)
	}

	return nil
}

// Entries lists the names of all cached artifacts
func (c *Cache) Entries() ([]string, error) {
	return listFiles(c.fs, c.root)
}

// Stats returns the number of entries and their total size in bytes
func (c *Cache) Stats() (int, int64, error) {
	infos, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		return 0, 0, err
	}

	var count int
	var totalSize int64
	for _, info := range infos {
		if !info.Mode().IsRegular() || isTemp(info.Name()) {
			continue
		}

		count++
		totalSize += info.Size()
	}

	return count, totalSize, nil
}

// Clear removes the cache directory and everything in it
func (c *Cache) Clear() error {
	if err := c.fs.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}

	return nil
}

// lock serializes writers of the same filename
func (c *Cache) lock(name string) func() {
	c.mu.Lock()
	m, ok := c.locks[name]
	if !ok {
		m = &sync.Mutex{}
		c.locks[name] = m
	}
	c.mu.Unlock()

	m.Lock()
	return m.Unlock
}
