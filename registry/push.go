package registry

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/gma"
)

// Push serializes the builder and pushes the archive to an OCI registry.
//
// The ref must include a tag (e.g., "registry.com/addons/thing:v1.0.0").
// Use WithTags to apply additional tags to the same manifest.
func (c *Client) Push(ctx context.Context, ref string, b *gma.Builder, opts ...PushOption) error {
	data, err := b.Bytes()
	if err != nil {
		return fmt.Errorf("serialize archive: %w", err)
	}
	return c.PushBytes(ctx, ref, data, opts...)
}

// PushBytes pushes already-serialized archive bytes to an OCI registry.
//
// The bytes are parsed first, both to reject invalid archives before any
// network traffic and to derive metadata annotations for the manifest.
func (c *Client) PushBytes(ctx context.Context, ref string, data []byte, opts ...PushOption) error {
	cfg := pushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	a, err := gma.Read(data)
	if err != nil {
		return fmt.Errorf("validate archive: %w", err)
	}

	parsedRef, err := parseClientRef(ref)
	if err != nil {
		return err
	}
	tag := parsedRef.reference
	if tag == "" || isDigest(tag) {
		return fmt.Errorf("%w: reference must include a tag", ErrInvalidReference)
	}

	c.log().Info("pushing archive", "ref", ref, "title", a.Title(), "files", a.Len(), "size", len(data))

	configDesc, err := c.pushEmptyConfig(ctx, ref)
	if err != nil {
		return fmt.Errorf("push config: %w", err)
	}

	layerData := data
	mediaType := MediaTypeArchive
	if cfg.compress {
		layerData, err = compressArchiveLayer(data)
		if err != nil {
			return err
		}
		mediaType = MediaTypeArchiveZstd
		c.log().Debug("compressed archive layer", "raw", len(data), "compressed", len(layerData))
	}

	layerDesc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(layerData),
		Size:      int64(len(layerData)),
	}
	if pushErr := c.oci.PushBlob(ctx, ref, &layerDesc, bytes.NewReader(layerData)); pushErr != nil {
		return fmt.Errorf("push archive layer: %w", mapOCIError(pushErr))
	}

	manifest := buildManifest(&configDesc, &layerDesc, archiveAnnotations(a, cfg.annotations))
	manifestDesc, err := c.oci.PushManifest(ctx, ref, tag, &manifest)
	if err != nil {
		return fmt.Errorf("push manifest: %w", mapOCIError(err))
	}

	for _, additionalTag := range cfg.tags {
		if tagErr := c.oci.Tag(ctx, ref, &manifestDesc, additionalTag); tagErr != nil {
			return fmt.Errorf("tag %q: %w", additionalTag, mapOCIError(tagErr))
		}
	}

	return nil
}

// pushEmptyConfig pushes the empty JSON config blob required by OCI manifests.
func (c *Client) pushEmptyConfig(ctx context.Context, ref string) (ocispec.Descriptor, error) {
	config := []byte("{}")
	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeEmptyJSON,
		Digest:    digest.FromBytes(config),
		Size:      int64(len(config)),
	}
	if err := c.oci.PushBlob(ctx, ref, &desc, bytes.NewReader(config)); err != nil {
		return ocispec.Descriptor{}, mapOCIError(err)
	}
	return desc, nil
}

// archiveAnnotations derives manifest annotations from archive metadata,
// merged with any caller-provided annotations (caller wins).
func archiveAnnotations(a *gma.Archive, custom map[string]string) map[string]string {
	annotations := map[string]string{
		AnnotationTitle:        a.Title(),
		AnnotationAuthor:       a.Author(),
		AnnotationAddonVersion: strconv.FormatInt(int64(a.AddonVersion()), 10),
		AnnotationOwnerID:      strconv.FormatUint(a.OwnerID(), 10),
	}
	for k, v := range custom {
		annotations[k] = v
	}
	return annotations
}

// buildManifest creates an OCI manifest for an addon archive.
func buildManifest(configDesc, layerDesc *ocispec.Descriptor, annotations map[string]string) ocispec.Manifest {
	if _, ok := annotations[ocispec.AnnotationCreated]; !ok {
		annotations[ocispec.AnnotationCreated] = time.Now().UTC().Format(time.RFC3339)
	}

	return ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       *configDesc,
		Layers:       []ocispec.Descriptor{*layerDesc},
		Annotations:  annotations,
	}
}
