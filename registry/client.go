package registry

import (
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/gma/registry/cache"
	"github.com/meigma/gma/registry/oras"
)

var _ OCIClient = (*oras.Client)(nil)

// Client provides high-level operations for addon archives in OCI registries.
type Client struct {
	oci          OCIClient
	refCache     cache.RefCache
	archiveCache cache.ArchiveCache
	logger       *slog.Logger

	// pulls deduplicates concurrent blob fetches for the same digest.
	pulls singleflight.Group

	// orasOpts are options passed through to the ORAS client when
	// no custom OCIClient is provided.
	orasOpts []oras.Option
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// New creates a new addon archive client with the given options.
//
// If no OCIClient is provided via WithOCIClient, a default ORAS-based
// client is created using any pass-through options (WithPlainHTTP, etc.).
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.oci == nil {
		orasOpts := c.orasOpts
		if c.logger != nil {
			orasOpts = append(orasOpts, oras.WithLogger(c.logger))
		}
		c.oci = oras.New(orasOpts...)
	}

	return c
}
