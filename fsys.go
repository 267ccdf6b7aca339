package gma

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// Open implements fs.FS.
//
// Files are served from the archive buffer; directories are synthesized
// from entry paths since the format does not store directories explicitly.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.Entry(name); ok {
		return &entryFile{
			entry:   e,
			modTime: a.Timestamp(),
			r:       bytes.NewReader(e.content),
		}, nil
	}

	if a.isDir(name) {
		return &openDir{a: a, name: name}, nil
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS without reading file content.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.Entry(name); ok {
		return fileInfo{name: path.Base(name), size: e.size, modTime: a.Timestamp()}, nil
	}
	if a.isDir(name) {
		return dirInfo{name: path.Base(name), modTime: a.Timestamp()}, nil
	}

	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS.
//
// Unlike [Entry.Content], the returned slice is a copy owned by the caller.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	e, ok := a.Entry(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	return e.AppendContent(nil), nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	entries := a.listDir(dirPrefix(name))
	if len(entries) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return entries, nil
}

// isDir reports whether name has entries under it.
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return true
	}
	prefix := name + "/"
	i := a.searchSorted(prefix)
	return i < len(a.sorted) && strings.HasPrefix(a.entries[a.sorted[i]].name, prefix)
}

// searchSorted returns the first position in the name-sorted entry order
// whose name is >= prefix.
func (a *Archive) searchSorted(prefix string) int {
	return sort.Search(len(a.sorted), func(i int) bool {
		return a.entries[a.sorted[i]].name >= prefix
	})
}

// listDir collects the direct children of prefix, deduplicating entries
// that share a directory component and synthesizing directory entries for
// nested paths.
func (a *Archive) listDir(prefix string) []fs.DirEntry {
	var out []fs.DirEntry
	lastName := ""
	for i := a.searchSorted(prefix); i < len(a.sorted); i++ {
		e := a.entries[a.sorted[i]]
		if !strings.HasPrefix(e.name, prefix) {
			break
		}

		rest := e.name[len(prefix):]
		childName, _, isSubDir := strings.Cut(rest, "/")
		if childName == lastName {
			continue
		}
		lastName = childName

		if isSubDir {
			out = append(out, fs.FileInfoToDirEntry(dirInfo{name: childName, modTime: a.Timestamp()}))
			continue
		}
		out = append(out, fs.FileInfoToDirEntry(fileInfo{name: childName, size: e.size, modTime: a.Timestamp()}))
	}
	return out
}

// dirPrefix converts a directory name to the entry-name prefix it covers.
func dirPrefix(name string) string {
	if name == "." {
		return ""
	}
	return name + "/"
}

// entryFile adapts an Entry to fs.File with random access.
type entryFile struct {
	entry   Entry
	modTime time.Time
	r       *bytes.Reader
}

var _ io.ReaderAt = (*entryFile)(nil)

func (f *entryFile) Stat() (fs.FileInfo, error) {
	return fileInfo{name: path.Base(f.entry.name), size: f.entry.size, modTime: f.modTime}, nil
}

func (f *entryFile) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

func (f *entryFile) ReadAt(p []byte, off int64) (int, error) {
	return f.r.ReadAt(p, off)
}

func (f *entryFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

func (f *entryFile) Close() error { return nil }

// openDir implements fs.ReadDirFile for synthesized directories.
type openDir struct {
	a       *Archive
	name    string
	entries []fs.DirEntry
	offset  int
}

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return dirInfo{name: path.Base(d.name), modTime: d.a.Timestamp()}, nil
}

func (d *openDir) Close() error { return nil }

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		d.entries = d.a.listDir(dirPrefix(d.name))
	}

	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n], nil
}

// fileInfo describes an archive file for fs.FileInfo.
type fileInfo struct {
	name    string
	size    uint64
	modTime time.Time
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return int64(fi.size) } //nolint:gosec // sizes are bounded by the input buffer
func (fi fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi fileInfo) ModTime() time.Time { return fi.modTime }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }

// dirInfo describes a synthesized directory for fs.FileInfo.
type dirInfo struct {
	name    string
	modTime time.Time
}

func (di dirInfo) Name() string       { return di.name }
func (di dirInfo) Size() int64        { return 0 }
func (di dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (di dirInfo) ModTime() time.Time { return di.modTime }
func (di dirInfo) IsDir() bool        { return true }
func (di dirInfo) Sys() any           { return nil }
