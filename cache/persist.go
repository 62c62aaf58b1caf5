package cache

import (
	"encoding/json"
	"os"

	"github.com/tabfold/tabfold/model"
	"github.com/tabfold/tabfold/observability"
)

// persistVersion tags the on-disk blob. Any mismatch means the blob was
// written by an incompatible build and the cache starts cold.
const persistVersion = "tabfold.cache/1"

// persistFile is the single-file schema: a version tag plus the entries keyed
// by their hex cache key. There is no integrity checksum beyond the version
// tag; a partially valid file loads partially, matching how the cache has
// always behaved.
type persistFile struct {
	Version string                      `json:"version"`
	Entries map[string][]model.RawTable `json:"entries"`
}

// WithPersistence makes the cache load path at construction and makes Close
// write the surviving entries back. Missing, corrupt, or version-mismatched
// files are treated as an empty cache, never as an error.
func WithPersistence(path string) Option {
	return func(c *Cache) {
		c.persistPath = path
	}
}

func (c *Cache) loadPersisted() {
	data, err := os.ReadFile(c.persistPath)
	if err != nil {
		c.log.Debug("persisted cache unavailable", observability.Error("err", err))
		return
	}
	var pf persistFile
	if err := json.Unmarshal(data, &pf); err != nil {
		c.log.Warn("persisted cache unreadable, starting cold", observability.Error("err", err))
		return
	}
	if pf.Version != persistVersion {
		c.log.Warn("persisted cache version mismatch, starting cold",
			observability.String("got", pf.Version), observability.String("want", persistVersion))
		return
	}
	for key, tables := range pf.Entries {
		c.store(key, tables)
	}
	c.log.Info("persisted cache loaded", observability.Int("entries", len(pf.Entries)))
}

// Close persists the cache when a persistence path is configured. The cache
// stays usable afterwards; Close only snapshots.
func (c *Cache) Close() error {
	if c.persistPath == "" {
		return nil
	}
	pf := persistFile{Version: persistVersion, Entries: map[string][]model.RawTable{}}
	c.mu.Lock()
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok {
			pf.Entries[key] = e.tables
		}
	}
	c.mu.Unlock()
	data, err := json.Marshal(pf)
	if err != nil {
		return err
	}
	return os.WriteFile(c.persistPath, data, 0o644)
}
