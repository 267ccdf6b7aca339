package registry

import (
	"log/slog"

	"github.com/meigma/gma/registry/cache"
	"github.com/meigma/gma/registry/oras"
)

// Option configures a Client.
type Option func(*Client)

// WithOCIClient sets a custom OCI client implementation.
//
// This is primarily useful for testing; by default an ORAS-based client
// is created.
func WithOCIClient(oci OCIClient) Option {
	return func(c *Client) {
		c.oci = oci
	}
}

// WithLogger sets the logger for debug output. Without it the client is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRefCache enables caching of tag to digest resolutions.
func WithRefCache(rc cache.RefCache) Option {
	return func(c *Client) {
		c.refCache = rc
	}
}

// WithArchiveCache enables caching of archive layer bytes by digest.
//
// Cached layers are re-verified against their digest before use.
func WithArchiveCache(ac cache.ArchiveCache) Option {
	return func(c *Client) {
		c.archiveCache = ac
	}
}

// WithOrasOptions passes options to the default ORAS client.
//
// These are ignored when a custom OCIClient is set via WithOCIClient.
func WithOrasOptions(opts ...oras.Option) Option {
	return func(c *Client) {
		c.orasOpts = append(c.orasOpts, opts...)
	}
}
