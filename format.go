package gma

// Magic is the four-byte signature at the start of every GMA archive.
const Magic = "GMAD"

// FormatVersion is the format version written by the Builder, the latest
// version this package supports reading.
const FormatVersion byte = 3

// minFormatVersion is the oldest format version the reader accepts.
// The required-content list is only present for versions after it.
const minFormatVersion byte = 1

// Fixed field widths of the wire format.
const (
	magicLen     = 4
	versionLen   = 1
	ownerIDLen   = 8
	timestampLen = 8
	addonVerLen  = 4
	fileNumLen   = 4
	fileSizeLen  = 8
	fileCRCLen   = 4
	trailerLen   = 4
)

// supportedVersion reports whether the reader accepts format version v.
func supportedVersion(v byte) bool {
	return v >= minFormatVersion && v <= FormatVersion
}
