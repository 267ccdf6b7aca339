package oras

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/registry/remote/auth"
)

func TestStaticCredentials(t *testing.T) {
	t.Parallel()

	store := StaticCredentials("registry.example.com:5000", "user", "pass")

	cred, err := store.Get(context.Background(), "registry.example.com:5000")
	require.NoError(t, err)
	assert.Equal(t, auth.Credential{Username: "user", Password: "pass"}, cred)

	cred, err = store.Get(context.Background(), "other.example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.EmptyCredential, cred)

	require.Error(t, store.Put(context.Background(), "registry.example.com:5000", cred))
	require.Error(t, store.Delete(context.Background(), "registry.example.com:5000"))
}

func TestStaticToken(t *testing.T) {
	t.Parallel()

	store := StaticToken("https://registry.example.com/v2/", "tok")

	cred, err := store.Get(context.Background(), "registry.example.com")
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.AccessToken)
}

func TestNormalizeServerAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "registry.example.com", want: "registry.example.com"},
		{in: "registry.example.com:5000", want: "registry.example.com:5000"},
		{in: "https://registry.example.com/v2/", want: "registry.example.com"},
		{in: "http://localhost:5000/path", want: "localhost:5000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeServerAddress(tt.in), "input %q", tt.in)
	}
}
