// Package cache defines the cache interfaces used by the registry client
// and provides a bounded in-memory implementation.
package cache

// RefCache caches reference to digest mappings.
//
// This avoids redundant HEAD requests for tag resolution.
type RefCache interface {
	// GetDigest returns the digest for a reference if cached.
	GetDigest(ref string) (digest string, ok bool)

	// PutDigest caches a reference to digest mapping.
	PutDigest(ref, digest string) error

	// Delete removes a cached reference.
	Delete(ref string) error
}

// ArchiveCache caches archive layer bytes by digest.
//
// Entries hold the layer exactly as stored in the registry, so cached data
// can be re-verified against the descriptor digest before use.
type ArchiveCache interface {
	// GetArchive returns the cached layer bytes for a digest.
	GetArchive(digest string) (data []byte, ok bool)

	// PutArchive caches layer bytes by digest.
	PutArchive(digest string, data []byte) error

	// Delete removes a cached archive layer.
	Delete(digest string) error
}
