package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gma"
)

// mockOCIClient is a test mock for OCIClient. Methods can be configured via
// function fields or will return errNotImplemented by default.
type mockOCIClient struct {
	ResolveFunc       func(ctx context.Context, repoRef, ref string) (ocispec.Descriptor, error)
	FetchManifestFunc func(ctx context.Context, repoRef, ref string) (ocispec.Manifest, []byte, error)
	PushBlobFunc      func(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error
	FetchBlobFunc     func(ctx context.Context, repoRef string, desc *ocispec.Descriptor) (io.ReadCloser, error)
	PushManifestFunc  func(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error)
	TagFunc           func(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error
}

var errNotImplemented = errors.New("not implemented in mock")

func (m *mockOCIClient) Resolve(ctx context.Context, repoRef, ref string) (ocispec.Descriptor, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, repoRef, ref)
	}
	return ocispec.Descriptor{}, errNotImplemented
}

func (m *mockOCIClient) FetchManifest(ctx context.Context, repoRef, ref string) (ocispec.Manifest, []byte, error) {
	if m.FetchManifestFunc != nil {
		return m.FetchManifestFunc(ctx, repoRef, ref)
	}
	return ocispec.Manifest{}, nil, errNotImplemented
}

func (m *mockOCIClient) PushBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error {
	if m.PushBlobFunc != nil {
		return m.PushBlobFunc(ctx, repoRef, desc, r)
	}
	return errNotImplemented
}

func (m *mockOCIClient) FetchBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor) (io.ReadCloser, error) {
	if m.FetchBlobFunc != nil {
		return m.FetchBlobFunc(ctx, repoRef, desc)
	}
	return nil, errNotImplemented
}

func (m *mockOCIClient) PushManifest(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	if m.PushManifestFunc != nil {
		return m.PushManifestFunc(ctx, repoRef, tag, manifest)
	}
	return ocispec.Descriptor{}, errNotImplemented
}

func (m *mockOCIClient) Tag(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error {
	if m.TagFunc != nil {
		return m.TagFunc(ctx, repoRef, desc, tag)
	}
	return errNotImplemented
}

// testArchiveBytes builds a small deterministic archive for registry tests.
func testArchiveBytes(t *testing.T) []byte {
	t.Helper()

	b := gma.NewBuilder("Test Addon", 76561198000000001)
	require.NoError(t, b.SetAuthor("tester"))
	b.SetAddonVersion(3)
	b.SetTimestamp(time.Unix(1700000000, 0))
	require.NoError(t, b.FileFromString("lua/autorun/init.lua", "print(\"hello\")\n"))
	require.NoError(t, b.FileFromString("materials/thing.vmt", "\"VertexLitGeneric\" {}\n"))

	data, err := b.Bytes()
	require.NoError(t, err)
	return data
}

// archiveTestManifest builds a valid addon manifest around the given layer
// bytes and returns the manifest, its raw JSON, and its digest string.
func archiveTestManifest(t *testing.T, layer []byte, mediaType string) (ocispec.Manifest, []byte, string) {
	t.Helper()

	manifest := ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config: ocispec.Descriptor{
			MediaType: ocispec.MediaTypeEmptyJSON,
			Digest:    digest.FromString("{}"),
			Size:      2,
		},
		Layers: []ocispec.Descriptor{
			{
				MediaType: mediaType,
				Digest:    digest.FromBytes(layer),
				Size:      int64(len(layer)),
			},
		},
		Annotations: map[string]string{
			ocispec.AnnotationCreated: "2024-01-15T10:00:00Z",
			AnnotationTitle:           "Test Addon",
			AnnotationAuthor:          "tester",
		},
	}

	raw, err := json.Marshal(manifest)
	require.NoError(t, err)
	return manifest, raw, digest.FromBytes(raw).String()
}

// memRefCache is a simple in-memory RefCache for testing without eviction.
type memRefCache struct {
	data map[string]string
}

func newMemRefCache() *memRefCache {
	return &memRefCache{data: make(map[string]string)}
}

func (c *memRefCache) GetDigest(ref string) (string, bool) {
	d, ok := c.data[ref]
	return d, ok
}

func (c *memRefCache) PutDigest(ref, dgst string) error {
	c.data[ref] = dgst
	return nil
}

func (c *memRefCache) Delete(ref string) error {
	delete(c.data, ref)
	return nil
}

// memArchiveCache is a simple in-memory ArchiveCache for testing without
// eviction.
type memArchiveCache struct {
	data map[string][]byte
}

func newMemArchiveCache() *memArchiveCache {
	return &memArchiveCache{data: make(map[string][]byte)}
}

func (c *memArchiveCache) GetArchive(dgst string) ([]byte, bool) {
	raw, ok := c.data[dgst]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), raw...), true
}

func (c *memArchiveCache) PutArchive(dgst string, raw []byte) error {
	c.data[dgst] = append([]byte(nil), raw...)
	return nil
}

func (c *memArchiveCache) Delete(dgst string) error {
	delete(c.data, dgst)
	return nil
}
