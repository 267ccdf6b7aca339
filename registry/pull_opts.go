package registry

import "github.com/meigma/gma"

// PullOption configures a Pull operation.
type PullOption func(*pullConfig)

type pullConfig struct {
	skipCache bool
	readOpts  []gma.ReadOption
	// maxArchiveSize caps how many bytes the archive layer may declare.
	// A value <= 0 disables the cap.
	maxArchiveSize int64
}

// WithReadOptions passes options to the archive parser.
func WithReadOptions(opts ...gma.ReadOption) PullOption {
	return func(cfg *pullConfig) {
		cfg.readOpts = append(cfg.readOpts, opts...)
	}
}

// WithMaxArchiveSize sets the maximum number of bytes allowed for the
// archive layer.
//
// Use a value <= 0 to disable the limit.
func WithMaxArchiveSize(maxBytes int64) PullOption {
	return func(cfg *pullConfig) {
		cfg.maxArchiveSize = maxBytes
	}
}

// WithPullSkipCache bypasses the ref and archive caches.
//
// This forces a fresh fetch from the registry even if cached data exists.
func WithPullSkipCache() PullOption {
	return func(cfg *pullConfig) {
		cfg.skipCache = true
	}
}
