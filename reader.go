package gma

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ReadOption configures a Read call.
type ReadOption func(*readConfig)

type readConfig struct {
	verifyChecksum bool
}

// WithoutChecksumVerification disables trailing-checksum verification.
//
// Some tools emit archives whose trailing field is not a valid CRC-32 of the
// preceding bytes. With this option the trailer is still consumed but never
// compared, so such archives parse successfully.
func WithoutChecksumVerification() ReadOption {
	return func(cfg *readConfig) {
		cfg.verifyChecksum = false
	}
}

// Read parses a GMA archive from buf.
//
// Parsing is a single forward pass. Any structural violation (bad magic,
// unsupported version, missing string terminator, non-contiguous file
// numbers, truncated payload, checksum mismatch) fails the whole call;
// nothing is repaired or skipped.
//
// The returned Archive and its entries alias buf. The caller must not
// modify buf while the Archive or any content slice obtained from it is in
// use.
func Read(buf []byte, opts ...ReadOption) (*Archive, error) {
	cfg := readConfig{verifyChecksum: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := parser{buf: buf}

	magic, err := p.take(magicLen)
	if err != nil {
		return nil, fmt.Errorf("%w: missing magic", ErrUnexpectedEOF)
	}
	if !bytes.Equal(magic, []byte(Magic)) {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}

	version, err := p.readByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing version", ErrUnexpectedEOF)
	}
	if !supportedVersion(version) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	a := &Archive{buf: buf, version: version}

	if a.ownerID, err = p.readUint64(); err != nil {
		return nil, fmt.Errorf("%w: missing owner id", ErrUnexpectedEOF)
	}
	if a.timestamp, err = p.readUint64(); err != nil {
		return nil, fmt.Errorf("%w: missing timestamp", ErrUnexpectedEOF)
	}

	// The required-content list was added in format version 2. It is a
	// sequence of NUL-terminated strings closed by an empty string.
	if version > minFormatVersion {
		for {
			s, err := p.readCString()
			if err != nil {
				return nil, fmt.Errorf("%w: in required content", err)
			}
			if s == "" {
				break
			}
			a.required = append(a.required, s)
		}
	}

	if a.title, err = p.readCString(); err != nil {
		return nil, fmt.Errorf("%w: in title", err)
	}
	if a.description, err = p.readCString(); err != nil {
		return nil, fmt.Errorf("%w: in description", err)
	}
	if a.author, err = p.readCString(); err != nil {
		return nil, fmt.Errorf("%w: in author", err)
	}

	addonVersion, err := p.readUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: missing addon version", ErrUnexpectedEOF)
	}
	a.addonVersion = int32(addonVersion)

	if err := readFileTable(&p, a); err != nil {
		return nil, err
	}

	// Payload: each entry's bytes follow the table in declared order.
	for i := range a.entries {
		content, err := p.take(a.entries[i].size)
		if err != nil {
			return nil, fmt.Errorf("%w: payload for %q", ErrUnexpectedEOF, a.entries[i].name)
		}
		a.entries[i].content = content
	}

	if err := readTrailer(&p, a, cfg.verifyChecksum); err != nil {
		return nil, err
	}

	a.index()
	return a, nil
}

// readFileTable parses file-table entries until the zero sentinel.
func readFileTable(p *parser, a *Archive) error {
	for next := uint32(1); ; next++ {
		num, err := p.readUint32()
		if err != nil {
			return fmt.Errorf("%w: missing file number", ErrUnexpectedEOF)
		}
		if num == 0 {
			return nil
		}
		if num != next {
			return fmt.Errorf("%w: file number %d, want %d", ErrBadFileTable, num, next)
		}

		name, err := p.readCString()
		if err != nil {
			return fmt.Errorf("%w: in file name", err)
		}
		size, err := p.readUint64()
		if err != nil {
			return fmt.Errorf("%w: missing file size", ErrUnexpectedEOF)
		}
		crc, err := p.readUint32()
		if err != nil {
			return fmt.Errorf("%w: missing file crc", ErrUnexpectedEOF)
		}

		a.entries = append(a.entries, Entry{
			name:   name,
			size:   size,
			crc:    crc,
			number: num,
		})
	}
}

// readTrailer consumes the optional whole-archive checksum. Exact
// consumption of the buffer (no trailer) is valid; a present trailer must
// match the CRC-32 of everything before it unless verification is disabled.
// Bytes after the trailer are ignored, matching existing tools.
func readTrailer(p *parser, a *Archive, verify bool) error {
	switch rem := p.remaining(); {
	case rem == 0:
		return nil
	case rem < trailerLen:
		return fmt.Errorf("%w: truncated trailing checksum", ErrUnexpectedEOF)
	}

	end := p.off
	declared, err := p.readUint32()
	if err != nil {
		return fmt.Errorf("%w: truncated trailing checksum", ErrUnexpectedEOF)
	}
	a.hasTrailer = true

	if verify {
		if computed := Checksum(p.buf[:end]); computed != declared {
			return fmt.Errorf("%w: archive declares %#08x, computed %#08x", ErrChecksumMismatch, declared, computed)
		}
	}
	return nil
}

// parser is a bounds-checked forward cursor over an archive buffer.
type parser struct {
	buf []byte
	off int
}

func (p *parser) remaining() int {
	return len(p.buf) - p.off
}

// take returns the next n bytes without copying.
func (p *parser) take(n uint64) ([]byte, error) {
	if n > uint64(p.remaining()) {
		return nil, ErrUnexpectedEOF
	}
	b := p.buf[p.off : p.off+int(n)]
	p.off += int(n)
	return b, nil
}

func (p *parser) readByte() (byte, error) {
	b, err := p.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *parser) readUint32() (uint32, error) {
	b, err := p.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (p *parser) readUint64() (uint64, error) {
	b, err := p.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readCString scans for the next NUL terminator and returns the string
// before it. The scan never runs past the end of the buffer.
func (p *parser) readCString() (string, error) {
	i := bytes.IndexByte(p.buf[p.off:], 0)
	if i < 0 {
		return "", fmt.Errorf("%w: missing NUL terminator", ErrUnexpectedEOF)
	}
	s := string(p.buf[p.off : p.off+i])
	p.off += i + 1
	return s, nil
}
