package oras

import "errors"

// Sentinel errors for low-level OCI operations.
var (
	// ErrNotFound is returned when a manifest, blob, or tag does not exist.
	ErrNotFound = errors.New("oras: not found")

	// ErrInvalidReference is returned when a reference string is malformed.
	ErrInvalidReference = errors.New("oras: invalid reference")

	// ErrInvalidDescriptor is returned when a descriptor is missing required fields.
	ErrInvalidDescriptor = errors.New("oras: invalid descriptor")

	// ErrManifestInvalid is returned when manifest content cannot be used.
	ErrManifestInvalid = errors.New("oras: invalid manifest")

	// ErrUnauthorized is returned when the registry rejects the credentials.
	ErrUnauthorized = errors.New("oras: unauthorized")

	// ErrForbidden is returned when the credentials lack permission.
	ErrForbidden = errors.New("oras: forbidden")
)
