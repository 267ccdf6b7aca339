// Package gma reads and writes GMA addon archives, the binary container
// format used to package a named collection of files together with addon
// metadata and per-file integrity checksums.
//
// Wire layout (all integers little-endian):
//   - "GMAD" magic (4 bytes)
//   - format version (1 byte)
//   - owner id (8 bytes, opaque)
//   - creation timestamp (8 bytes, seconds since epoch, opaque)
//   - required content: NUL-terminated strings until an empty string
//     (versions 2 and later)
//   - title, description, author (NUL-terminated strings)
//   - addon version (4 bytes, signed)
//   - file table: repeated {number (4B, 1-based), name (NUL-terminated),
//     size (8B), crc (4B)}, terminated by number 0
//   - payload: concatenated file contents in table order
//   - trailing CRC-32 of all preceding bytes (optional on read)
//
// [Read] parses an archive from a byte buffer into an [Archive] whose
// entries are zero-copy views into the buffer. [Builder] accumulates
// metadata and file contents and serializes them with [Builder.WriteTo].
// An [Archive] implements fs.FS and related interfaces for stdlib
// compatibility.
package gma
