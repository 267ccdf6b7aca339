// Package disk provides filesystem-backed caches for the registry client.
//
// Entries are stored as files named by the SHA-256 of their key, sharded
// into prefix directories to keep directory sizes manageable. Writes are
// atomic (temp file + rename), so a cache directory can be shared between
// processes.
package disk

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opencontainers/go-digest"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o755
	tmpSuffix             = ".tmp"
)

// Option configures a disk cache.
type Option func(*config)

type config struct {
	shardPrefixLen int
	dirPerm        os.FileMode
	maxBytes       int64
	ttl            time.Duration
}

// WithShardPrefixLen sets how many hex characters of the key hash become the
// shard directory name. Zero disables sharding.
func WithShardPrefixLen(n int) Option {
	return func(c *config) { c.shardPrefixLen = n }
}

// WithDirPerm sets the permissions used when creating cache directories.
func WithDirPerm(perm os.FileMode) Option {
	return func(c *config) { c.dirPerm = perm }
}

// WithMaxBytes sets a byte budget. When a put pushes the cache over the
// budget, oldest entries are pruned until it fits. Zero means unbounded.
func WithMaxBytes(n int64) Option {
	return func(c *config) { c.maxBytes = n }
}

// WithTTL sets how long ref entries stay valid. Zero means no expiry.
// Only the ref cache consults it.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shardPrefixLen < 0 {
		return cfg, fmt.Errorf("disk: shard prefix length must not be negative, got %d", cfg.shardPrefixLen)
	}
	if cfg.shardPrefixLen > hex.EncodedLen(sha256.Size) {
		return cfg, fmt.Errorf("disk: shard prefix length %d exceeds key hash length", cfg.shardPrefixLen)
	}
	if cfg.maxBytes < 0 {
		return cfg, fmt.Errorf("disk: max bytes must not be negative, got %d", cfg.maxBytes)
	}
	if cfg.ttl < 0 {
		return cfg, fmt.Errorf("disk: ttl must not be negative, got %s", cfg.ttl)
	}
	return cfg, nil
}

// store is the shared file layout and size accounting under a root directory.
type store struct {
	root string
	cfg  config

	mu   sync.Mutex
	size int64
}

func newStore(dir string, opts []Option) (*store, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, cfg.dirPerm); err != nil {
		return nil, fmt.Errorf("disk: create cache dir: %w", err)
	}

	s := &store{root: dir, cfg: cfg}
	size, err := s.scanSize()
	if err != nil {
		return nil, err
	}
	s.size = size
	return s, nil
}

// scanSize walks the cache directory to initialize the size counter.
func (s *store) scanSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.Contains(d.Name(), tmpSuffix) {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("disk: scan cache dir: %w", err)
	}
	return total, nil
}

// path maps a cache key to its file location.
func (s *store) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	if s.cfg.shardPrefixLen == 0 {
		return filepath.Join(s.root, name)
	}
	return filepath.Join(s.root, name[:s.cfg.shardPrefixLen], name)
}

func (s *store) read(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *store) write(key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), s.cfg.dirPerm); err != nil {
		return fmt.Errorf("disk: create shard dir: %w", err)
	}

	prev := int64(0)
	if info, err := os.Stat(path); err == nil {
		prev = info.Size()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+tmpSuffix)
	if err != nil {
		return fmt.Errorf("disk: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("disk: write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("disk: close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("disk: publish cache entry: %w", err)
	}

	s.mu.Lock()
	s.size += int64(len(data)) - prev
	s.mu.Unlock()

	if s.cfg.maxBytes > 0 && s.SizeBytes() > s.cfg.maxBytes {
		if _, err := s.prune(s.cfg.maxBytes); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) remove(key string) error {
	path := s.path(key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("disk: stat cache entry: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("disk: remove cache entry: %w", err)
	}

	s.mu.Lock()
	s.size -= info.Size()
	s.mu.Unlock()
	return nil
}

// SizeBytes returns the tracked size of all cache entries.
func (s *store) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// MaxBytes returns the configured byte budget, zero if unbounded.
func (s *store) MaxBytes() int64 { return s.cfg.maxBytes }

// Prune removes oldest entries (by modification time) until the cache fits
// within targetBytes. It returns the number of bytes freed.
func (s *store) Prune(targetBytes int64) (int64, error) {
	if targetBytes < 0 {
		return 0, fmt.Errorf("disk: prune target must not be negative, got %d", targetBytes)
	}
	return s.prune(targetBytes)
}

type pruneEntry struct {
	path    string
	size    int64
	modTime time.Time
}

func (s *store) prune(targetBytes int64) (int64, error) {
	var entries []pruneEntry
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.Contains(d.Name(), tmpSuffix) {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, pruneEntry{path: path, size: info.Size(), modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("disk: scan for prune: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime.Before(entries[j].modTime) })

	var freed int64
	for _, e := range entries {
		if s.SizeBytes()-freed <= targetBytes {
			break
		}
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return freed, fmt.Errorf("disk: prune cache entry: %w", err)
		}
		freed += e.size
	}

	s.mu.Lock()
	s.size -= freed
	s.mu.Unlock()
	return freed, nil
}

// RefCache caches reference to digest mappings on disk. Entries carry a
// creation timestamp so a TTL can bound how stale a tag resolution may be.
type RefCache struct {
	*store
}

// NewRefCache creates a disk-backed ref cache rooted at dir.
func NewRefCache(dir string, opts ...Option) (*RefCache, error) {
	s, err := newStore(dir, opts)
	if err != nil {
		return nil, err
	}
	return &RefCache{store: s}, nil
}

type refEntry struct {
	Digest  string    `json:"digest"`
	Created time.Time `json:"created"`
}

// GetDigest returns the cached digest for a reference. Expired and corrupted
// entries are removed and reported as misses.
func (c *RefCache) GetDigest(ref string) (string, bool) {
	data, ok := c.read(ref)
	if !ok {
		return "", false
	}

	var entry refEntry
	if err := json.Unmarshal(data, &entry); err != nil || digest.Digest(entry.Digest).Validate() != nil {
		_ = c.remove(ref)
		return "", false
	}
	if c.cfg.ttl > 0 && time.Since(entry.Created) > c.cfg.ttl {
		_ = c.remove(ref)
		return "", false
	}
	return entry.Digest, true
}

// PutDigest caches a reference to digest mapping.
func (c *RefCache) PutDigest(ref, dgst string) error {
	if err := digest.Digest(dgst).Validate(); err != nil {
		return fmt.Errorf("disk: invalid digest %q: %w", dgst, err)
	}
	if cached, ok := c.GetDigest(ref); ok && cached == dgst {
		return nil
	}

	data, err := json.Marshal(refEntry{Digest: dgst, Created: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("disk: encode ref entry: %w", err)
	}
	return c.write(ref, data)
}

// Delete removes a cached reference.
func (c *RefCache) Delete(ref string) error {
	return c.remove(ref)
}

// ArchiveCache caches archive layer bytes on disk, keyed by layer digest.
// Data is stored exactly as fetched so callers can re-verify it against the
// descriptor digest.
type ArchiveCache struct {
	*store
}

// NewArchiveCache creates a disk-backed archive layer cache rooted at dir.
func NewArchiveCache(dir string, opts ...Option) (*ArchiveCache, error) {
	s, err := newStore(dir, opts)
	if err != nil {
		return nil, err
	}
	return &ArchiveCache{store: s}, nil
}

// GetArchive returns the cached layer bytes for a digest.
func (c *ArchiveCache) GetArchive(dgst string) ([]byte, bool) {
	if digest.Digest(dgst).Validate() != nil {
		return nil, false
	}
	return c.read(dgst)
}

// PutArchive caches layer bytes by digest. Re-putting an existing digest is
// a no-op since layer content is immutable.
func (c *ArchiveCache) PutArchive(dgst string, data []byte) error {
	if err := digest.Digest(dgst).Validate(); err != nil {
		return fmt.Errorf("disk: invalid digest %q: %w", dgst, err)
	}
	if _, err := os.Stat(c.path(dgst)); err == nil {
		return nil
	}
	return c.write(dgst, data)
}

// Delete removes a cached archive layer.
func (c *ArchiveCache) Delete(dgst string) error {
	return c.remove(dgst)
}
