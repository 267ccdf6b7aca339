package registry

import "errors"

// Sentinel errors for client operations.
var (
	// ErrNotFound is returned when an addon archive does not exist at the reference.
	ErrNotFound = errors.New("registry: not found")

	// ErrInvalidReference is returned when a reference string is malformed.
	ErrInvalidReference = errors.New("registry: invalid reference")

	// ErrInvalidManifest is returned when a manifest is not a valid addon manifest.
	ErrInvalidManifest = errors.New("registry: invalid addon manifest")

	// ErrMissingArchive is returned when the manifest does not contain an archive layer.
	ErrMissingArchive = errors.New("registry: missing archive layer")

	// ErrDigestMismatch is returned when content does not match its expected digest.
	ErrDigestMismatch = errors.New("registry: digest mismatch")

	// ErrArchiveTooLarge is returned when the archive layer exceeds the pull size cap.
	ErrArchiveTooLarge = errors.New("registry: archive too large")
)
