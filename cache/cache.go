// Package cache wraps a raw table reader with a content-addressed memo: the
// key is a hash of the PDF's bytes plus the template text, so an unchanged
// (PDF, template) pair never pays for cell location twice, regardless of where
// the files live on disk.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/tabfold/tabfold/model"
	"github.com/tabfold/tabfold/observability"
)

// RawReader locates table cells inside a PDF using an extraction template.
// Implementations are external collaborators; a single instance is not assumed
// safe for concurrent use.
type RawReader interface {
	Read(ctx context.Context, pdfPath string, template io.Reader) ([]model.RawTable, error)
}

// RawReaderFunc adapts a function to the RawReader interface.
type RawReaderFunc func(ctx context.Context, pdfPath string, template io.Reader) ([]model.RawTable, error)

func (f RawReaderFunc) Read(ctx context.Context, pdfPath string, template io.Reader) ([]model.RawTable, error) {
	return f(ctx, pdfPath, template)
}

// DefaultBudget bounds the total serialized size of cached payloads.
const DefaultBudget = 64 << 20

// maxEntries caps the LRU's entry count; eviction is normally driven by the
// byte budget well before this is reached.
const maxEntries = 1 << 16

type entry struct {
	tables []model.RawTable
	size   int
}

type fileStamp struct {
	size    int64
	modTime time.Time
	hash    [sha256.Size]byte
}

// Cache memoizes a delegate RawReader. The in-memory store is guarded by a
// single mutex and is safe for use from multiple workers; the delegate itself
// is only ever called by the worker that missed.
type Cache struct {
	delegate    RawReader
	budget      int
	log         observability.Logger
	persistPath string

	mu           sync.Mutex
	lru          *simplelru.LRU[string, *entry]
	totalBytes   int
	fileHashes   map[string]fileStamp
	hits         int64
	misses       int64
	evictedBytes int64
}

// Stats is a point-in-time snapshot of the cache's counters.
type Stats struct {
	Hits         int64
	Misses       int64
	EvictedBytes int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithBudget sets the serialized-payload eviction budget in bytes.
func WithBudget(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.budget = n
		}
	}
}

// WithLogger sets the cache's logger.
func WithLogger(log observability.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a cache in front of delegate.
func New(delegate RawReader, opts ...Option) *Cache {
	c := &Cache{
		delegate:   delegate,
		budget:     DefaultBudget,
		log:        observability.NopLogger{},
		fileHashes: map[string]fileStamp{},
	}
	for _, opt := range opts {
		opt(c)
	}
	lru, err := simplelru.NewLRU(maxEntries, func(_ string, e *entry) {
		c.totalBytes -= e.size
		c.evictedBytes += int64(e.size)
	})
	if err != nil {
		panic(fmt.Sprintf("cache: lru init: %v", err))
	}
	c.lru = lru
	if c.persistPath != "" {
		c.loadPersisted()
	}
	return c
}

// Read returns the raw tables for (pdfPath, template), invoking the delegate
// only when the content-addressed key has not been seen.
func (c *Cache) Read(ctx context.Context, pdfPath string, template io.Reader) ([]model.RawTable, error) {
	tmpl, err := io.ReadAll(template)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	key, err := c.key(pdfPath, tmpl)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if e, ok := c.lru.Get(key); ok {
		c.hits++
		hits := c.hits
		c.mu.Unlock()
		c.log.Debug("cache hit", observability.String("key", key),
			observability.Int64(observability.MetricCacheHits, hits))
		// Stored entries are immutable; callers get their own copy so a
		// downstream transform can never rewrite the cached payload.
		return cloneTables(e.tables), nil
	}
	c.misses++
	misses := c.misses
	c.mu.Unlock()

	c.log.Debug("cache miss", observability.String("key", key),
		observability.Int64(observability.MetricCacheMisses, misses))
	tables, err := c.delegate.Read(ctx, pdfPath, bytes.NewReader(tmpl))
	if err != nil {
		return nil, err
	}
	c.store(key, cloneTables(tables))
	return tables, nil
}

// cloneTables deep-copies payloads crossing the cache boundary, in either
// direction: the store never aliases a slice the delegate's caller holds, and
// no two callers share row backing arrays.
func cloneTables(tables []model.RawTable) []model.RawTable {
	out := make([]model.RawTable, len(tables))
	for i, rt := range tables {
		out[i] = rt.Clone()
	}
	return out
}

func (c *Cache) store(key string, tables []model.RawTable) {
	size := payloadSize(tables)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lru.Get(key); ok {
		return // another worker filled it first
	}
	c.lru.Add(key, &entry{tables: tables, size: size})
	c.totalBytes += size
	for c.totalBytes > c.budget && c.lru.Len() > 1 {
		k, _, _ := c.lru.RemoveOldest()
		c.log.Debug("cache evict", observability.String("key", k),
			observability.Int64(observability.MetricEvictedBytes, c.evictedBytes))
	}
}

// key derives the content-addressed cache key: sha256 of the PDF content hash
// concatenated with the template text.
func (c *Cache) key(pdfPath string, template []byte) (string, error) {
	pdfHash, err := c.hashFile(pdfPath)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(pdfHash[:])
	h.Write(template)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashFile hashes the PDF's bytes, short-circuiting through a per-path
// (size, mtime) stamp so an unchanged file is hashed once per process.
func (c *Cache) hashFile(path string) ([sha256.Size]byte, error) {
	var zero [sha256.Size]byte
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return zero, fmt.Errorf("stat pdf: %w", err)
	}

	c.mu.Lock()
	stamp, ok := c.fileHashes[abs]
	c.mu.Unlock()
	if ok && stamp.size == info.Size() && stamp.modTime.Equal(info.ModTime()) {
		return stamp.hash, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return zero, fmt.Errorf("read pdf: %w", err)
	}
	sum := sha256.Sum256(data)

	c.mu.Lock()
	c.fileHashes[abs] = fileStamp{size: info.Size(), modTime: info.ModTime(), hash: sum}
	c.mu.Unlock()
	return sum, nil
}

// payloadSize measures an entry by its serialized length, the same measure
// the persistence blob pays.
func payloadSize(tables []model.RawTable) int {
	data, err := json.Marshal(tables)
	if err != nil {
		return 0
	}
	return len(data)
}

// Len reports the number of cached extractions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// SizeBytes reports the total serialized size of cached payloads.
func (c *Cache) SizeBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}

// Stats reports the cache's hit, miss, and eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, EvictedBytes: c.evictedBytes}
}
