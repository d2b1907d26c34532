package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DiskCache is the second cache level: zstd-compressed files under one
// directory, keyed by the hex cache key. It survives host restarts.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	stats Stats
}

// NewDiskCache creates (and if needed, initializes) a disk cache rooted at dir.
func NewDiskCache(dir string, capacity int64) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	c := &DiskCache{
		dir:      dir,
		capacity: capacity,
		encoder:  encoder,
		decoder:  decoder,
		stats:    Stats{Capacity: capacity},
	}
	c.size = c.scanSize()
	return c, nil
}

// Get retrieves and decompresses a cached value.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()
	compressed, err := os.ReadFile(c.path(key))
	if err != nil {
		c.stats.Misses++
		return nil, false
	}

	value, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		// Corrupted entry: drop it rather than serve garbage.
		os.Remove(c.path(key)) //nolint:errcheck
		c.stats.Misses++
		return nil, false
	}

	// Keep eviction ordering roughly LRU.
	now := time.Now()
	os.Chtimes(c.path(key), now, now) //nolint:errcheck

	c.stats.Hits++
	return value, true
}

// Put compresses and stores a value, evicting oldest files as needed.
func (c *DiskCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	compressed := c.encoder.EncodeAll(value, nil)
	entrySize := int64(len(compressed))
	if entrySize > c.capacity {
		return ErrItemTooLarge
	}

	// Replacing an existing entry: retire the old file first so the size
	// accounting tracks what is actually on disk.
	if info, err := os.Stat(c.path(key)); err == nil {
		if err := os.Remove(c.path(key)); err == nil {
			c.size -= info.Size()
		}
	}

	for c.size+entrySize > c.capacity {
		if !c.evictOldest() {
			break
		}
	}

	if err := os.WriteFile(c.path(key), compressed, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	c.size += entrySize
	c.stats.Size = c.size
	return nil
}

// Stats returns a snapshot of the cache counters.
func (c *DiskCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close releases the compressor resources.
func (c *DiskCache) Close() {
	c.encoder.Close() //nolint:errcheck
	c.decoder.Close()
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".zst")
}

func (c *DiskCache) scanSize() int64 {
	var total int64
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		if info, err := entry.Info(); err == nil && !entry.IsDir() {
			total += info.Size()
		}
	}
	return total
}

// evictOldest removes the least recently touched file. Returns false when
// the directory is already empty.
func (c *DiskCache) evictOldest() bool {
	entries, err := os.ReadDir(c.dir)
	if err != nil || len(entries) == 0 {
		return false
	}

	type candidate struct {
		name  string
		size  int64
		mtime time.Time
	}
	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || entry.IsDir() {
			continue
		}
		candidates = append(candidates, candidate{entry.Name(), info.Size(), info.ModTime()})
	}
	if len(candidates) == 0 {
		return false
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].mtime.Before(candidates[j].mtime)
	})

	oldest := candidates[0]
	if err := os.Remove(filepath.Join(c.dir, oldest.name)); err != nil {
		return false
	}
	c.size -= oldest.size
	c.stats.Evictions++
	c.stats.Size = c.size
	return true
}
