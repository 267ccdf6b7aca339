package gma

import "errors"

// Sentinel errors for archive parsing and building. Errors returned by this
// package wrap one of these and can be matched with errors.Is.
var (
	// ErrBadMagic is returned when the archive does not start with the
	// "GMAD" signature.
	ErrBadMagic = errors.New("gma: bad magic")

	// ErrUnsupportedVersion is returned when the format version byte is
	// outside the supported range.
	ErrUnsupportedVersion = errors.New("gma: unsupported format version")

	// ErrBadFileTable is returned when the file table is malformed, for
	// example when file numbers are not contiguous starting at 1.
	ErrBadFileTable = errors.New("gma: bad file table")

	// ErrUnexpectedEOF is returned when the buffer ends before a declared
	// structure is complete.
	ErrUnexpectedEOF = errors.New("gma: unexpected end of archive")

	// ErrChecksumMismatch is returned when the trailing whole-archive
	// checksum does not match the archive bytes.
	ErrChecksumMismatch = errors.New("gma: checksum mismatch")

	// ErrInvalidField is returned when a metadata string or file path
	// contains an embedded NUL byte, or when a file path is empty.
	ErrInvalidField = errors.New("gma: invalid field")
)
