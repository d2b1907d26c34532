// Package cache stores fetched remote audio locations and translated chunks
// so repeated reads of the same text skip the network entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Common errors for cache operations.
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")
	// ErrCacheClosed is returned after Close.
	ErrCacheClosed = errors.New("cache is closed")
)

// Stats holds cache performance counters.
type Stats struct {
	Capacity   int64     // Maximum capacity in bytes
	Size       int64     // Current size in bytes
	ItemCount  int64     // Number of items
	Hits       int64     // Lookup hits
	Misses     int64     // Lookup misses
	Evictions  int64     // Items evicted for space
	LastAccess time.Time // Last lookup time
}

// Key derives a stable cache key from the request-identifying parts
// (text, language, rate or target, and so on).
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
