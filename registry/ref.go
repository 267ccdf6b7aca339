package registry

import (
	"strings"

	orasregistry "oras.land/oras-go/v2/registry"
)

// clientRef holds parsed reference information.
type clientRef struct {
	registry   string
	repository string
	reference  string // tag or digest
}

// parseClientRef parses a reference string into its components.
func parseClientRef(ref string) (clientRef, error) {
	r, err := orasregistry.ParseReference(ref)
	if err != nil {
		return clientRef{}, ErrInvalidReference
	}
	return clientRef{
		registry:   r.Registry,
		repository: r.Repository,
		reference:  r.Reference,
	}, nil
}

// isDigest reports whether the reference part is a digest rather than a tag.
func isDigest(ref string) bool {
	// Digests contain a colon after the algorithm (e.g., "sha256:abc123...").
	return strings.Contains(ref, ":")
}
