package cache

import (
	"fmt"
	"sync"
)

// Config holds cache manager configuration.
type Config struct {
	MemoryCapacity int64  // L1 capacity in bytes
	DiskPath       string // L2 directory; empty disables the disk level
	DiskCapacity   int64  // L2 capacity in bytes
}

// DefaultConfig returns the default cache configuration (memory only).
func DefaultConfig() *Config {
	return &Config{
		MemoryCapacity: 8 << 20, // 8 MB
		DiskCapacity:   64 << 20,
	}
}

// Manager coordinates the memory and disk cache levels. Disk hits are
// promoted into memory.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache

	mu     sync.Mutex
	closed bool
}

// NewManager creates a cache manager from the given configuration.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	m := &Manager{memory: NewMemoryCache(cfg.MemoryCapacity)}
	if cfg.DiskPath != "" {
		disk, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity)
		if err != nil {
			return nil, fmt.Errorf("create disk cache: %w", err)
		}
		m.disk = disk
	}
	return m, nil
}

// Get looks the key up in memory first, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, false
	}
	m.mu.Unlock()

	if value, ok := m.memory.Get(key); ok {
		return value, true
	}
	if m.disk != nil {
		if value, ok := m.disk.Get(key); ok {
			m.memory.Put(key, value) //nolint:errcheck
			return value, true
		}
	}
	return nil, false
}

// Put stores the value in every configured level.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrCacheClosed
	}
	m.mu.Unlock()

	if err := m.memory.Put(key, value); err != nil && err != ErrItemTooLarge {
		return err
	}
	if m.disk != nil {
		if err := m.disk.Put(key, value); err != nil && err != ErrItemTooLarge {
			return err
		}
	}
	return nil
}

// MemoryStats returns the memory level counters.
func (m *Manager) MemoryStats() Stats {
	return m.memory.Stats()
}

// Close releases cache resources. Further Puts fail with ErrCacheClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.memory.Clear()
	if m.disk != nil {
		m.disk.Close()
	}
}
