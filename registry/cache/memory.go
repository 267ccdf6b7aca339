package cache

import (
	"container/list"
	"sync"
)

// DefaultMaxBytes is the byte budget used by NewMemory when none is given.
const DefaultMaxBytes = 256 << 20 // 256 MiB

// Memory is a thread-safe in-memory LRU cache with a byte budget.
//
// It implements both RefCache and ArchiveCache; the two keyspaces are kept
// disjoint internally, so a single Memory can back a whole client. When the
// budget is exceeded, least-recently-used entries are evicted first. Values
// larger than the budget are silently not cached.
type Memory struct {
	mu       sync.Mutex
	maxBytes int64
	size     int64
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
}

type memoryEntry struct {
	key   string
	value []byte
}

// Keyspace prefixes. NUL cannot appear in references or digests, so
// prefixed keys never collide across the two interfaces.
const (
	refKeyPrefix     = "ref\x00"
	archiveKeyPrefix = "archive\x00"
)

// NewMemory creates a Memory cache with the given byte budget. A budget
// of zero or less uses DefaultMaxBytes.
func NewMemory(maxBytes int64) *Memory {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Memory{
		maxBytes: maxBytes,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// GetDigest returns the cached digest for a reference.
func (m *Memory) GetDigest(ref string) (string, bool) {
	v, ok := m.get(refKeyPrefix + ref)
	if !ok {
		return "", false
	}
	return string(v), true
}

// PutDigest caches a reference to digest mapping.
func (m *Memory) PutDigest(ref, digest string) error {
	m.put(refKeyPrefix+ref, []byte(digest))
	return nil
}

// GetArchive returns the cached layer bytes for a digest.
//
// The returned slice is the cache's copy and must not be modified.
func (m *Memory) GetArchive(digest string) ([]byte, bool) {
	return m.get(archiveKeyPrefix + digest)
}

// PutArchive caches layer bytes by digest. The data is copied.
func (m *Memory) PutArchive(digest string, data []byte) error {
	m.put(archiveKeyPrefix+digest, append([]byte(nil), data...))
	return nil
}

// Delete removes an entry from either keyspace.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, prefix := range []string{refKeyPrefix, archiveKeyPrefix} {
		if elem, ok := m.entries[prefix+key]; ok {
			m.removeLocked(elem)
		}
	}
	return nil
}

// SizeBytes returns the current cache size in bytes.
func (m *Memory) SizeBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// MaxBytes returns the configured byte budget.
func (m *Memory) MaxBytes() int64 { return m.maxBytes }

func (m *Memory) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	m.order.MoveToFront(elem)
	return elem.Value.(*memoryEntry).value, true //nolint:errcheck // type is guaranteed by put
}

func (m *Memory) put(key string, value []byte) {
	if int64(len(value)) > m.maxBytes {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		entry := elem.Value.(*memoryEntry) //nolint:errcheck // type is guaranteed
		m.size += int64(len(value)) - int64(len(entry.value))
		entry.value = value
		m.order.MoveToFront(elem)
		m.evictLocked()
		return
	}

	elem := m.order.PushFront(&memoryEntry{key: key, value: value})
	m.entries[key] = elem
	m.size += int64(len(value))
	m.evictLocked()
}

// evictLocked drops least-recently-used entries until the budget holds.
// Caller must hold m.mu.
func (m *Memory) evictLocked() {
	for m.size > m.maxBytes {
		oldest := m.order.Back()
		if oldest == nil {
			return
		}
		m.removeLocked(oldest)
	}
}

// removeLocked removes an element from both the list and map.
// Caller must hold m.mu.
func (m *Memory) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry) //nolint:errcheck // type is guaranteed
	m.order.Remove(elem)
	delete(m.entries, entry.key)
	m.size -= int64(len(entry.value))
}
