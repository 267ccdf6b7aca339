package registry

import (
	"fmt"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// AddonManifest wraps an OCI manifest for an addon archive.
//
// It provides convenient access to the archive layer descriptor,
// annotations, and other metadata.
type AddonManifest struct {
	raw         ocispec.Manifest
	digest      string
	archiveDesc ocispec.Descriptor
	created     time.Time
}

// ArchiveDescriptor returns the descriptor for the archive layer.
func (m *AddonManifest) ArchiveDescriptor() ocispec.Descriptor {
	return m.archiveDesc
}

// Compressed reports whether the archive layer is zstd-compressed.
func (m *AddonManifest) Compressed() bool {
	return m.archiveDesc.MediaType == MediaTypeArchiveZstd
}

// Digest returns the manifest digest.
func (m *AddonManifest) Digest() string {
	return m.digest
}

// Annotations returns the manifest annotations.
func (m *AddonManifest) Annotations() map[string]string {
	return m.raw.Annotations
}

// Title returns the addon title annotation, or "" if absent.
func (m *AddonManifest) Title() string {
	return m.raw.Annotations[AnnotationTitle]
}

// Author returns the addon author annotation, or "" if absent.
func (m *AddonManifest) Author() string {
	return m.raw.Annotations[AnnotationAuthor]
}

// Created returns the creation timestamp from annotations.
//
// Returns zero time if the annotation is not present or cannot be parsed.
func (m *AddonManifest) Created() time.Time {
	return m.created
}

// Raw returns the underlying OCI manifest.
func (m *AddonManifest) Raw() ocispec.Manifest {
	return m.raw
}

// parseAddonManifest parses an OCI manifest into an AddonManifest.
func parseAddonManifest(manifest *ocispec.Manifest, digest string) (*AddonManifest, error) {
	if manifest.MediaType != ocispec.MediaTypeImageManifest {
		return nil, fmt.Errorf("%w: unexpected manifest media type %q", ErrInvalidManifest, manifest.MediaType)
	}
	if manifest.ArtifactType != ArtifactType {
		return nil, fmt.Errorf("%w: unexpected artifact type %q", ErrInvalidManifest, manifest.ArtifactType)
	}

	var archiveDesc ocispec.Descriptor
	var foundArchive bool

	for _, layer := range manifest.Layers {
		switch layer.MediaType {
		case MediaTypeArchive, MediaTypeArchiveZstd:
			if foundArchive {
				return nil, fmt.Errorf("%w: multiple archive layers", ErrInvalidManifest)
			}
			archiveDesc = layer
			foundArchive = true
		}
	}

	if !foundArchive {
		return nil, ErrMissingArchive
	}
	if len(manifest.Layers) != 1 {
		return nil, fmt.Errorf("%w: expected 1 layer, got %d", ErrInvalidManifest, len(manifest.Layers))
	}

	var created time.Time
	if ts, ok := manifest.Annotations[ocispec.AnnotationCreated]; ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			created = t
		}
	}

	return &AddonManifest{
		raw:         *manifest,
		digest:      digest,
		archiveDesc: archiveDesc,
		created:     created,
	}, nil
}
