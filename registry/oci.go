package registry

import (
	"context"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// OCIClient defines the interface for OCI registry operations.
//
// This interface abstracts the low-level OCI operations, allowing different
// implementations (e.g., ORAS-based, mock for testing).
type OCIClient interface {
	// Resolve resolves a reference (tag or digest) to a descriptor.
	Resolve(ctx context.Context, repoRef, ref string) (ocispec.Descriptor, error)

	// FetchManifest fetches a manifest by reference (tag or digest) and
	// returns the parsed manifest along with its raw bytes.
	FetchManifest(ctx context.Context, repoRef, ref string) (ocispec.Manifest, []byte, error)

	// PushBlob pushes a blob to the repository.
	// The descriptor must contain the pre-computed digest and size.
	PushBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error

	// FetchBlob fetches a blob from the repository.
	// The caller is responsible for closing the returned reader.
	FetchBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor) (io.ReadCloser, error)

	// PushManifest pushes a manifest to the repository with the given tag.
	PushManifest(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error)

	// Tag creates or updates a tag pointing to the given descriptor.
	Tag(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error
}
