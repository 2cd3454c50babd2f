// Copyright © 2026 The Vize authors

package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// DiskCache stores lowered documents keyed by source-content hash, so
// repeated checks of unchanged files skip parsing and analysis entirely.
// Safe for concurrent use; entries from older schema versions read back
// as misses.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a cache under the user cache directory
// (XDG_CACHE_HOME on Linux).
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(base, app, "ir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt is OpenDiskCache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Key hashes source content into a cache key.
func Key(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func (c *DiskCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".mp")
}

// Put serializes and writes a document. The write is atomic: a temp file
// is renamed into place, so concurrent readers never see a torn entry.
func (c *DiskCache) Put(key string, doc *Document) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := EncodeMsgpack(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), c.pathFor(key))
}

// Get reads a cached document. A missing entry or a schema mismatch is a
// miss, not an error.
func (c *DiskCache) Get(key string) (*Document, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	doc, err := DecodeMsgpack(f)
	if err != nil {
		// Stale schema or corrupt entry. Treat as a miss.
		return nil, false, nil
	}
	return doc, true, nil
}

// DropAll removes every cache entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
