package gma

import (
	"iter"
	"sort"
	"time"
)

// Entry is a read-only view of one file in an archive.
//
// An Entry borrows the buffer the archive was read from and owns no bytes
// itself; it must not outlive that buffer. Use [Entry.AppendContent] to
// detach the content into caller-owned memory.
type Entry struct {
	name    string
	size    uint64
	crc     uint32
	number  uint32
	content []byte
}

// Name returns the file path within the archive, with forward-slash
// separators.
func (e Entry) Name() string { return e.name }

// Size returns the declared byte size from the file table. After a
// successful Read it always equals len(e.Content()).
func (e Entry) Size() uint64 { return e.size }

// CRC returns the per-file CRC-32 recorded in the file table. Archives
// produced by some tools record zero here.
func (e Entry) CRC() uint32 { return e.crc }

// Number returns the 1-based file number from the file table.
func (e Entry) Number() uint32 { return e.number }

// Content returns the file bytes as a slice into the archive buffer,
// without copying. The slice must be treated as read-only.
func (e Entry) Content() []byte { return e.content }

// AppendContent appends a copy of the file bytes to dst and returns the
// extended slice. The result does not alias the archive buffer.
func (e Entry) AppendContent(dst []byte) []byte {
	return append(dst, e.content...)
}

// Archive is the result of reading a GMA archive.
//
// All string and byte data alias the buffer passed to [Read]; the buffer is
// treated as immutable for the lifetime of the Archive and every Entry or
// content slice derived from it.
type Archive struct {
	buf []byte

	version      byte
	ownerID      uint64
	timestamp    uint64
	required     []string
	title        string
	description  string
	author       string
	addonVersion int32
	entries      []Entry
	hasTrailer   bool

	byName map[string]int
	sorted []int // entry indices ordered by name, for fs operations
}

// index builds the lookup structures used by Entry and the fs.FS adapter.
// For duplicate names (possible in foreign archives) the first table entry
// wins.
func (a *Archive) index() {
	a.byName = make(map[string]int, len(a.entries))
	a.sorted = make([]int, 0, len(a.entries))
	for i, e := range a.entries {
		if _, ok := a.byName[e.name]; ok {
			continue
		}
		a.byName[e.name] = i
		a.sorted = append(a.sorted, i)
	}
	sort.Slice(a.sorted, func(i, j int) bool {
		return a.entries[a.sorted[i]].name < a.entries[a.sorted[j]].name
	})
}

// FormatVersion returns the archive's format version byte.
func (a *Archive) FormatVersion() byte { return a.version }

// OwnerID returns the platform account id recorded in the archive. The
// codec treats it as opaque.
func (a *Archive) OwnerID() uint64 { return a.ownerID }

// Timestamp returns the creation time recorded in the archive, in UTC.
func (a *Archive) Timestamp() time.Time {
	return time.Unix(int64(a.timestamp), 0).UTC() //nolint:gosec // opaque field, wraparound is the caller's concern
}

// RequiredContent returns the archive's required-content list, in wire
// order. It is empty for archives written by this package. The returned
// slice must not be modified.
func (a *Archive) RequiredContent() []string { return a.required }

// Title returns the addon title.
func (a *Archive) Title() string { return a.title }

// Description returns the addon description. It is often a JSON
// sub-document; see [DecodeAddonJSON].
func (a *Archive) Description() string { return a.description }

// Author returns the addon author.
func (a *Archive) Author() string { return a.author }

// AddonVersion returns the addon version number. Its meaning is defined by
// the producing tool.
func (a *Archive) AddonVersion() int32 { return a.addonVersion }

// HasTrailingChecksum reports whether the archive carried a trailing
// whole-archive checksum.
func (a *Archive) HasTrailingChecksum() bool { return a.hasTrailer }

// Len returns the number of files in the archive.
func (a *Archive) Len() int { return len(a.entries) }

// Entry returns the entry with the given name.
func (a *Archive) Entry(name string) (Entry, bool) {
	i, ok := a.byName[name]
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Entries returns an iterator over all entries in file-table order.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range a.entries {
			if !yield(e) {
				return
			}
		}
	}
}
