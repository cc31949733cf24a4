// Package contractcache caches parsed ContractImages by fingerprint, so
// repeated loads of the same WASM bytes (common in a REPL or --repeat run)
// skip re-parsing. The in-memory front layer follows the pack's
// hashicorp/golang-lru/v2 usage; the optional disk layer mirrors the
// mutex-guarded map idiom wazero's own compilation cache used before this
// tree was specialized to this domain.
package contractcache

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/wasmmodule"
)

// Cache is a two-tier fingerprint cache: a bounded in-memory LRU in front of
// an optional on-disk byte store.
type Cache struct {
	mem *lru.Cache[string, *wasmmodule.ContractImage]
	dir string
	mu  sync.Mutex
}

// New constructs a Cache with the given in-memory capacity. dir may be empty
// to disable the disk tier.
func New(capacity int, dir string) (*Cache, error) {
	if capacity <= 0 {
		capacity = 32
	}
	mem, err := lru.New[string, *wasmmodule.ContractImage](capacity)
	if err != nil {
		return nil, dbgerr.Execution("contractcache: "+err.Error(), err)
	}
	return &Cache{mem: mem, dir: dir}, nil
}

// Get returns the cached image for fingerprint, checking memory first and
// falling back to disk (re-parsing the stored bytes and populating memory).
func (c *Cache) Get(fingerprint [32]byte) (*wasmmodule.ContractImage, bool) {
	key := hex.EncodeToString(fingerprint[:])
	if img, ok := c.mem.Get(key); ok {
		return img, true
	}
	if c.dir == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(c.diskPath(key))
	if err != nil {
		return nil, false
	}
	img, err := wasmmodule.Parse(data)
	if err != nil {
		return nil, false
	}
	c.mem.Add(key, img)
	return img, true
}

// Put stores img under its own fingerprint, populating both tiers.
func (c *Cache) Put(img *wasmmodule.ContractImage) error {
	key := hex.EncodeToString(img.Fingerprint[:])
	c.mem.Add(key, img)
	if c.dir == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return dbgerr.File(c.dir, err)
	}
	if err := os.WriteFile(c.diskPath(key), img.Bytes, 0o644); err != nil {
		return dbgerr.File(c.diskPath(key), err)
	}
	return nil
}

func (c *Cache) diskPath(key string) string {
	return filepath.Join(c.dir, key+".wasm")
}

// Len reports the number of images currently held in memory.
func (c *Cache) Len() int { return c.mem.Len() }
