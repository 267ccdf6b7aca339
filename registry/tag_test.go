package registry

import (
	"context"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gma/registry/oras"
)

func TestClient_Tag(t *testing.T) {
	t.Parallel()

	manifestDigest := digest.FromString("manifest").String()
	resolvedDesc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.Digest(manifestDigest),
		Size:      123,
	}

	var taggedWith string
	mock := &mockOCIClient{
		ResolveFunc: func(_ context.Context, _, ref string) (ocispec.Descriptor, error) {
			assert.Equal(t, manifestDigest, ref)
			return resolvedDesc, nil
		},
		TagFunc: func(_ context.Context, _ string, desc *ocispec.Descriptor, tag string) error {
			assert.Equal(t, resolvedDesc, *desc)
			taggedWith = tag
			return nil
		},
	}

	c := New(WithOCIClient(mock))
	err := c.Tag(context.Background(), "registry.example.com/addons/thing:stable", manifestDigest)
	require.NoError(t, err)
	assert.Equal(t, "stable", taggedWith)
}

func TestClient_Tag_Errors(t *testing.T) {
	t.Parallel()

	manifestDigest := digest.FromString("manifest").String()

	t.Run("invalid reference", func(t *testing.T) {
		t.Parallel()
		c := New(WithOCIClient(&mockOCIClient{}))
		err := c.Tag(context.Background(), "not a ref!!!", manifestDigest)
		require.ErrorIs(t, err, ErrInvalidReference)
	})

	t.Run("ref without tag", func(t *testing.T) {
		t.Parallel()
		c := New(WithOCIClient(&mockOCIClient{}))
		err := c.Tag(context.Background(), "registry.example.com/addons/thing", manifestDigest)
		require.ErrorIs(t, err, ErrInvalidReference)
	})

	t.Run("unknown digest maps to not found", func(t *testing.T) {
		t.Parallel()
		c := New(WithOCIClient(&mockOCIClient{
			ResolveFunc: func(context.Context, string, string) (ocispec.Descriptor, error) {
				return ocispec.Descriptor{}, oras.ErrNotFound
			},
		}))
		err := c.Tag(context.Background(), "registry.example.com/addons/thing:latest", manifestDigest)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
