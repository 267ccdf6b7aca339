package registry

import (
	"context"
	"fmt"
)

// Fetch retrieves the manifest for an addon archive without downloading
// the archive layer.
//
// This is useful for inspecting addon metadata or checking if an archive
// exists without the overhead of downloading its content.
func (c *Client) Fetch(ctx context.Context, ref string, opts ...FetchOption) (*AddonManifest, error) {
	cfg := fetchConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	parsedRef, err := parseClientRef(ref)
	if err != nil {
		return nil, err
	}
	if parsedRef.reference == "" {
		return nil, fmt.Errorf("%w: reference must include a tag or digest", ErrInvalidReference)
	}

	digestStr, err := c.resolveDigest(ctx, ref, parsedRef.reference, cfg.skipCache)
	if err != nil {
		return nil, err
	}

	manifest, _, err := c.oci.FetchManifest(ctx, ref, digestStr)
	if err != nil {
		return nil, mapOCIError(err)
	}

	return parseAddonManifest(&manifest, digestStr)
}

// resolveDigest resolves a reference to a digest string.
// Uses the ref cache for tags if available, otherwise calls Resolve().
func (c *Client) resolveDigest(ctx context.Context, ref, reference string, skipCache bool) (string, error) {
	// If already a digest, return it directly
	if isDigest(reference) {
		c.log().Debug("resolving reference", "ref", ref, "type", "digest")
		return reference, nil
	}

	c.log().Debug("resolving reference", "ref", ref, "type", "tag")

	if !skipCache && c.refCache != nil {
		if dgst, ok := c.refCache.GetDigest(ref); ok {
			c.log().Debug("ref cache hit", "ref", ref, "digest", dgst[:min(16, len(dgst))])
			return dgst, nil
		}
		c.log().Debug("ref cache miss", "ref", ref)
	}

	desc, err := c.oci.Resolve(ctx, ref, reference)
	if err != nil {
		return "", mapOCIError(err)
	}

	dgst := desc.Digest.String()

	if c.refCache != nil {
		if err := c.refCache.PutDigest(ref, dgst); err != nil {
			return "", fmt.Errorf("cache ref digest: %w", err)
		}
	}

	return dgst, nil
}
