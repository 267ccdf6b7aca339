package registry

import (
	"context"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/gma"
)

const defaultMaxArchiveSize = 1 << 30 // 1 GiB

// Pull retrieves an addon archive from an OCI registry.
//
// The archive layer is downloaded fully, verified against its manifest
// digest, decompressed if stored zstd-compressed, and parsed. Concurrent
// pulls of the same layer digest share a single download.
func (c *Client) Pull(ctx context.Context, ref string, opts ...PullOption) (*gma.Archive, error) {
	cfg := pullConfig{
		maxArchiveSize: defaultMaxArchiveSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c.log().Info("pulling archive", "ref", ref)

	var fetchOpts []FetchOption
	if cfg.skipCache {
		fetchOpts = append(fetchOpts, WithSkipCache())
	}
	manifest, err := c.Fetch(ctx, ref, fetchOpts...)
	if err != nil {
		return nil, err
	}

	desc := manifest.ArchiveDescriptor()
	if cfg.maxArchiveSize > 0 && desc.Size > cfg.maxArchiveSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrArchiveTooLarge, desc.Size, cfg.maxArchiveSize)
	}

	// Layer bytes are immutable once verified, so concurrent pulls of the
	// same digest can share one fetch.
	v, err, shared := c.pulls.Do(desc.Digest.String(), func() (any, error) {
		return c.fetchArchiveLayer(ctx, ref, &desc, cfg.skipCache)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log().Debug("shared in-flight layer fetch", "digest", desc.Digest.String())
	}
	layer := v.([]byte) //nolint:errcheck // fetchArchiveLayer always returns []byte

	data, err := decodeArchiveLayer(layer, desc.MediaType)
	if err != nil {
		return nil, err
	}

	a, err := gma.Read(data, cfg.readOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	return a, nil
}

// fetchArchiveLayer fetches the archive layer bytes, using the archive
// cache if available. Returned bytes are verified against desc.Digest.
func (c *Client) fetchArchiveLayer(ctx context.Context, ref string, desc *ocispec.Descriptor, skipCache bool) ([]byte, error) {
	dgst := desc.Digest.String()

	if layer, ok := c.tryArchiveCache(dgst, desc, skipCache); ok {
		return layer, nil
	}

	rc, err := c.oci.FetchBlob(ctx, ref, desc)
	if err != nil {
		return nil, fmt.Errorf("fetch archive layer: %w", mapOCIError(err))
	}
	defer rc.Close()

	layer, err := io.ReadAll(io.LimitReader(rc, desc.Size))
	if err != nil {
		return nil, fmt.Errorf("read archive layer: %w", err)
	}

	if err := verifyLayerDigest(layer, desc); err != nil {
		return nil, err
	}

	if c.archiveCache != nil {
		if err := c.archiveCache.PutArchive(dgst, layer); err != nil {
			return nil, fmt.Errorf("cache archive layer: %w", err)
		}
	}

	return layer, nil
}

// tryArchiveCache attempts to get the layer from cache, returning
// (data, true) on a verified hit. Corrupt entries are deleted.
func (c *Client) tryArchiveCache(dgst string, desc *ocispec.Descriptor, skipCache bool) ([]byte, bool) {
	if skipCache || c.archiveCache == nil {
		return nil, false
	}

	cached, ok := c.archiveCache.GetArchive(dgst)
	if !ok {
		c.log().Debug("archive cache miss", "digest", dgst[:min(16, len(dgst))])
		return nil, false
	}

	if verifyLayerDigest(cached, desc) != nil {
		c.log().Warn("corrupted archive cache entry deleted", "digest", dgst[:min(16, len(dgst))])
		_ = c.archiveCache.Delete(dgst) //nolint:errcheck // best-effort cleanup
		return nil, false
	}

	c.log().Debug("archive cache hit", "digest", dgst[:min(16, len(dgst))], "size", len(cached))
	return cached, true
}

// verifyLayerDigest checks layer bytes against the descriptor's digest and size.
func verifyLayerDigest(layer []byte, desc *ocispec.Descriptor) error {
	if desc.Size > 0 && int64(len(layer)) != desc.Size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrDigestMismatch, desc.Size, len(layer))
	}
	if err := desc.Digest.Validate(); err != nil {
		return fmt.Errorf("%w: invalid digest %q: %v", ErrInvalidManifest, desc.Digest, err)
	}
	if computed := desc.Digest.Algorithm().FromBytes(layer); computed != desc.Digest {
		return fmt.Errorf("%w: expected %s, got %s", ErrDigestMismatch, desc.Digest, computed)
	}
	return nil
}
