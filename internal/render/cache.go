// Package render turns template payloads into PNG screenshots behind a
// content-addressed cache.
package render

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// RenderFunc produces the image for a cache miss. It is invoked at most once
// per key while a result for that key is retained.
type RenderFunc func(ctx context.Context) ([]byte, error)

// Key derives the cache key from the template identity and the canonical
// JSON form of the payload. encoding/json writes map keys sorted and struct
// fields in declaration order, so semantically identical payloads hash
// identically no matter how they were assembled.
func Key(templateName string, data any) string {
	raw, err := json.Marshal(data)
	if err != nil {
		// Payloads are plain data; only a programming error (func, chan,
		// cycle) can fail here, and a nondeterministic key would silently
		// break content addressing.
		panic(fmt.Sprintf("render: payload not marshalable: %v", err))
	}
	sum := md5.Sum(raw)
	stem := strings.TrimSuffix(templateName, filepath.Ext(templateName))
	return fmt.Sprintf("%s_%x", stem, sum)
}

// Cache memoizes rendered images either on disk or in memory. Per-key
// mutexes serialize concurrent misses on the same key; different keys never
// wait on each other.
type Cache struct {
	disk bool
	dir  string

	memMu sync.RWMutex
	mem   map[string][]byte

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	log *zap.SugaredLogger
}

// NewDiskCache stores entries as <dir>/<key>.png.
func NewDiskCache(dir string, log *zap.SugaredLogger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{disk: true, dir: dir, locks: make(map[string]*sync.Mutex), log: log}, nil
}

// NewMemoryCache keeps entries for the process lifetime.
func NewMemoryCache(log *zap.SugaredLogger) *Cache {
	return &Cache{mem: make(map[string][]byte), locks: make(map[string]*sync.Mutex), log: log}
}

// GetOrRender returns the cached image for key, rendering and storing it on
// a miss. The double check after the lock is what bounds duplicate renders
// to zero once any render for the key completes.
func (c *Cache) GetOrRender(ctx context.Context, key string, render RenderFunc) ([]byte, error) {
	if img, ok := c.lookup(key); ok {
		return img, nil
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if img, ok := c.lookup(key); ok {
		return img, nil
	}

	img, err := render(ctx)
	if err != nil {
		return nil, err
	}
	c.store(key, img)
	return img, nil
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	if !c.disk {
		c.memMu.RLock()
		img, ok := c.mem[key]
		c.memMu.RUnlock()
		return img, ok
	}

	path := c.entryPath(key)
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if len(img) == 0 {
		// Corrupt entry: heal by deleting, report a miss.
		_ = os.Remove(path)
		return nil, false
	}
	return img, true
}

func (c *Cache) store(key string, img []byte) {
	if !c.disk {
		c.memMu.Lock()
		c.mem[key] = img
		c.memMu.Unlock()
		return
	}
	if err := os.WriteFile(c.entryPath(key), img, 0o644); err != nil {
		// Degrades to "rendered but not cached".
		c.log.Warnw("cache write failed", "key", key, "error", err)
	}
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".png")
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// EvictExcept drops every entry whose key is not in valid, then prunes the
// per-key lock map the same way so neither grows across cache generations.
func (c *Cache) EvictExcept(valid map[string]struct{}) {
	if c.disk {
		c.evictDisk(valid)
	} else {
		c.memMu.Lock()
		for key := range c.mem {
			if _, ok := valid[key]; !ok {
				delete(c.mem, key)
			}
		}
		c.memMu.Unlock()
	}

	c.lockMu.Lock()
	for key := range c.locks {
		if _, ok := valid[key]; !ok {
			delete(c.locks, key)
		}
	}
	c.lockMu.Unlock()
}

func (c *Cache) evictDisk(valid map[string]struct{}) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.log.Warnw("cache dir unreadable during eviction", "error", err)
		return
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ".png")
		if _, ok := valid[key]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		c.log.Infow("evicted stale cache entries", "count", removed)
	}
}
