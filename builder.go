package gma

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
	"time"
)

// Builder accumulates addon metadata and file contents and serializes them
// as a GMA archive.
//
// Files keep their insertion order, which becomes the file-table order.
// A Builder remains usable after WriteTo; for fixed metadata, insertion
// order, and timestamp the output is byte-identical on every call.
type Builder struct {
	title        string
	ownerID      uint64
	author       string
	description  string
	addonVersion int32
	timestamp    time.Time

	files  []builderFile
	byPath map[string]int
}

type builderFile struct {
	path    string
	content []byte
}

// NewBuilder returns a Builder for an addon with the given title and owner
// id. The author defaults to "unknown", the description to empty, and the
// addon version to 1.
func NewBuilder(title string, ownerID uint64) *Builder {
	return &Builder{
		title:        title,
		ownerID:      ownerID,
		author:       "unknown",
		addonVersion: 1,
		byPath:       make(map[string]int),
	}
}

// SetAuthor sets the addon author. The text must not contain a NUL byte.
func (b *Builder) SetAuthor(author string) error {
	if strings.IndexByte(author, 0) >= 0 {
		return fmt.Errorf("%w: author contains NUL byte", ErrInvalidField)
	}
	b.author = author
	return nil
}

// SetDescription sets the addon description. The text must not contain a
// NUL byte. Callers that want the conventional JSON sub-document can encode
// it with [EncodeAddonJSON] first.
func (b *Builder) SetDescription(description string) error {
	if strings.IndexByte(description, 0) >= 0 {
		return fmt.Errorf("%w: description contains NUL byte", ErrInvalidField)
	}
	b.description = description
	return nil
}

// SetAddonVersion sets the addon version number written to the archive.
func (b *Builder) SetAddonVersion(v int32) {
	b.addonVersion = v
}

// SetTimestamp fixes the creation timestamp written by WriteTo. With the
// zero time (the default), WriteTo stamps the current time, making output
// non-deterministic across calls.
func (b *Builder) SetTimestamp(t time.Time) {
	b.timestamp = t
}

// FileFromBytes adds a file at path with the given content. If path is
// already present its content is replaced in place, keeping the original
// table position; otherwise the file is appended.
//
// The Builder retains content without copying; the caller must not modify
// it afterwards.
func (b *Builder) FileFromBytes(path string, content []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty file path", ErrInvalidField)
	}
	if strings.IndexByte(path, 0) >= 0 {
		return fmt.Errorf("%w: file path %q contains NUL byte", ErrInvalidField, path)
	}

	if i, ok := b.byPath[path]; ok {
		b.files[i].content = content
		return nil
	}
	b.byPath[path] = len(b.files)
	b.files = append(b.files, builderFile{path: path, content: content})
	return nil
}

// FileFromString adds a file at path with the given string content.
func (b *Builder) FileFromString(path, content string) error {
	return b.FileFromBytes(path, []byte(content))
}

// Len returns the number of files added so far.
func (b *Builder) Len() int { return len(b.files) }

// WriteTo serializes the archive to w and returns the number of bytes
// written. The output mirrors the reader's grammar exactly and ends with a
// CRC-32 of everything written before it.
//
// Sink failures are returned wrapped; match them with errors.As against the
// sink's error types.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	if strings.IndexByte(b.title, 0) >= 0 {
		return 0, fmt.Errorf("%w: title contains NUL byte", ErrInvalidField)
	}

	ts := b.timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	sum := crc32.NewIEEE()
	gw := &archiveWriter{w: io.MultiWriter(bw, sum)}

	gw.write([]byte(Magic))
	gw.write([]byte{FormatVersion})
	gw.writeUint64(b.ownerID)
	gw.writeUint64(uint64(ts.Unix())) //nolint:gosec // pre-1970 timestamps wrap, matching the wire format
	gw.write([]byte{0}) // empty required-content list
	gw.writeCString(b.title)
	gw.writeCString(b.description)
	gw.writeCString(b.author)
	gw.writeUint32(uint32(b.addonVersion)) //nolint:gosec // two's-complement little-endian encoding

	for i, f := range b.files {
		gw.writeUint32(uint32(i) + 1) //nolint:gosec // file count is bounded by memory
		gw.writeCString(f.path)
		gw.writeUint64(uint64(len(f.content)))
		gw.writeUint32(Checksum(f.content))
	}
	gw.writeUint32(0) // end of file table

	for _, f := range b.files {
		gw.write(f.content)
	}
	if gw.err != nil {
		return cw.n, fmt.Errorf("gma: write archive: %w", gw.err)
	}

	// Trailing checksum covers every byte written so far; it goes to the
	// sink only, not into its own sum.
	var trailer [trailerLen]byte
	binary.LittleEndian.PutUint32(trailer[:], sum.Sum32())
	if _, err := bw.Write(trailer[:]); err != nil {
		return cw.n, fmt.Errorf("gma: write trailing checksum: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("gma: flush archive: %w", err)
	}
	return cw.n, nil
}

// Bytes serializes the archive into memory.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// archiveWriter writes wire-format fields with a sticky error so the happy
// path reads linearly.
type archiveWriter struct {
	w   io.Writer
	err error
}

func (gw *archiveWriter) write(p []byte) {
	if gw.err != nil {
		return
	}
	_, gw.err = gw.w.Write(p)
}

func (gw *archiveWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	gw.write(b[:])
}

func (gw *archiveWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	gw.write(b[:])
}

func (gw *archiveWriter) writeCString(s string) {
	gw.write([]byte(s))
	gw.write([]byte{0})
}

// countingWriter counts bytes passed through to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
