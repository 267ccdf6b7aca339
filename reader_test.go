package gma

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	path    string
	content []byte
}

var testFiles = []testFile{
	{path: "lua/autorun/init.lua", content: []byte("print(\"hello\")\n")},
	{path: "lua/empty.lua", content: nil},
	{path: "materials/models/thing.vmt", content: bytes.Repeat([]byte{0xAB, 0x00, 0x7F}, 64)},
}

const (
	testOwnerID = uint64(76561198000000001)
	testStamp   = int64(1700000000)
)

// buildTestArchive serializes testFiles with fixed metadata so output is
// deterministic across runs.
func buildTestArchive(t *testing.T, files []testFile) []byte {
	t.Helper()

	b := NewBuilder("Test Addon", testOwnerID)
	require.NoError(t, b.SetAuthor("tester"))
	require.NoError(t, b.SetDescription("a test addon"))
	b.SetAddonVersion(2)
	b.SetTimestamp(time.Unix(testStamp, 0))
	for _, f := range files {
		require.NoError(t, b.FileFromBytes(f.path, f.content))
	}

	data, err := b.Bytes()
	require.NoError(t, err)
	return data
}

// rawArchive hand-crafts archive bytes, bypassing the Builder's validation,
// for malformed-input tests. Table entries are written verbatim.
type rawTableEntry struct {
	number uint32
	name   string
	size   uint64
	crc    uint32
}

func rawArchive(version byte, required []string, table []rawTableEntry, payload []byte, withTrailer bool) []byte {
	var buf bytes.Buffer
	u32 := func(v uint32) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	u64 := func(v uint64) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	cstr := func(s string) { buf.WriteString(s); buf.WriteByte(0) }

	buf.WriteString(Magic)
	buf.WriteByte(version)
	u64(testOwnerID)
	u64(uint64(testStamp))
	if version > 1 {
		for _, s := range required {
			cstr(s)
		}
		buf.WriteByte(0)
	}
	cstr("Raw Addon")
	cstr("raw description")
	cstr("raw author")
	u32(1) // addon version

	for _, e := range table {
		u32(e.number)
		cstr(e.name)
		u64(e.size)
		u32(e.crc)
	}
	u32(0)
	buf.Write(payload)

	if withTrailer {
		u32(Checksum(buf.Bytes()))
	}
	return buf.Bytes()
}

func TestRead_RoundTrip(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	a, err := Read(data)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, a.FormatVersion())
	assert.Equal(t, testOwnerID, a.OwnerID())
	assert.Equal(t, time.Unix(testStamp, 0).UTC(), a.Timestamp())
	assert.Equal(t, "Test Addon", a.Title())
	assert.Equal(t, "a test addon", a.Description())
	assert.Equal(t, "tester", a.Author())
	assert.Equal(t, int32(2), a.AddonVersion())
	assert.Empty(t, a.RequiredContent())
	assert.True(t, a.HasTrailingChecksum())
	require.Equal(t, len(testFiles), a.Len())

	i := 0
	for e := range a.Entries() {
		assert.Equal(t, testFiles[i].path, e.Name())
		assert.Equal(t, uint64(len(testFiles[i].content)), e.Size())
		assert.Equal(t, testFiles[i].content, e.AppendContent(nil))
		assert.Equal(t, Checksum(testFiles[i].content), e.CRC())
		assert.Equal(t, uint32(i+1), e.Number())
		i++
	}

	e, ok := a.Entry("lua/empty.lua")
	require.True(t, ok)
	assert.Zero(t, e.Size())
	assert.Empty(t, e.Content())

	_, ok = a.Entry("missing.lua")
	assert.False(t, ok)
}

func TestRead_ZeroFiles(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, nil)
	a, err := Read(data)
	require.NoError(t, err)
	assert.Zero(t, a.Len())
	assert.True(t, a.HasTrailingChecksum())
}

func TestRead_BadMagic(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	copy(data, "WHAT")

	_, err := Read(data)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestRead_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)

	for _, v := range []byte{0, 4, 0xFF} {
		data[magicLen] = v
		_, err := Read(data)
		require.ErrorIs(t, err, ErrUnsupportedVersion, "version %d", v)
	}
}

func TestRead_PayloadCorruption(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	var payloadLen int
	for _, f := range testFiles {
		payloadLen += len(f.content)
	}
	payloadStart := len(data) - trailerLen - payloadLen

	for off := payloadStart; off < len(data)-trailerLen; off++ {
		corrupted := bytes.Clone(data)
		corrupted[off] ^= 0x01
		_, err := Read(corrupted)
		require.ErrorIs(t, err, ErrChecksumMismatch, "flipped byte at offset %d", off)
	}
}

func TestRead_TableCorruption(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)

	// Flip a character inside the first table entry's name. The archive
	// still parses structurally, so only the trailing checksum catches it.
	off := bytes.Index(data, []byte("lua/autorun/init.lua"))
	require.Positive(t, off)
	data[off] ^= 0x01

	_, err := Read(data)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestRead_LenientChecksum(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	data[len(data)-trailerLen-1] ^= 0xFF

	_, err := Read(data)
	require.ErrorIs(t, err, ErrChecksumMismatch)

	a, err := Read(data, WithoutChecksumVerification())
	require.NoError(t, err)
	assert.Equal(t, len(testFiles), a.Len())
	assert.True(t, a.HasTrailingChecksum())
}

func TestRead_NonContiguousFileTable(t *testing.T) {
	t.Parallel()

	content := []byte("body")
	data := rawArchive(FormatVersion, nil, []rawTableEntry{
		{number: 1, name: "a.txt", size: 4, crc: Checksum(content)},
		{number: 3, name: "b.txt", size: 4, crc: Checksum(content)},
	}, append(bytes.Clone(content), content...), true)

	_, err := Read(data)
	require.ErrorIs(t, err, ErrBadFileTable)
}

func TestRead_FirstFileNumberMustBeOne(t *testing.T) {
	t.Parallel()

	data := rawArchive(FormatVersion, nil, []rawTableEntry{
		{number: 2, name: "a.txt", size: 0},
	}, nil, true)

	_, err := Read(data)
	require.ErrorIs(t, err, ErrBadFileTable)
}

func TestRead_Truncation(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	trailerless := len(data) - trailerLen

	for n := range len(data) {
		_, err := Read(data[:n])
		if n == trailerless {
			// Dropping exactly the trailer yields a valid archive.
			require.NoError(t, err, "cut at %d", n)
			continue
		}
		require.Error(t, err, "cut at %d", n)
	}
}

func TestRead_TruncatedPayload(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	// Cut in the middle of the last file's payload.
	last := testFiles[len(testFiles)-1]
	cut := len(data) - trailerLen - len(last.content)/2

	_, err := Read(data[:cut])
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestRead_Trailerless(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	a, err := Read(data[:len(data)-trailerLen])
	require.NoError(t, err)
	assert.False(t, a.HasTrailingChecksum())
	assert.Equal(t, len(testFiles), a.Len())
}

func TestRead_BytesAfterTrailerIgnored(t *testing.T) {
	t.Parallel()

	data := buildTestArchive(t, testFiles)
	data = append(data, 0xDE, 0xAD, 0xBE, 0xEF)

	a, err := Read(data)
	require.NoError(t, err)
	assert.True(t, a.HasTrailingChecksum())
}

func TestRead_RequiredContent(t *testing.T) {
	t.Parallel()

	data := rawArchive(FormatVersion, []string{"some/map", "another/addon"}, nil, nil, true)
	a, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"some/map", "another/addon"}, a.RequiredContent())
}

func TestRead_Version1HasNoRequiredContent(t *testing.T) {
	t.Parallel()

	content := []byte("v1 body")
	data := rawArchive(1, nil, []rawTableEntry{
		{number: 1, name: "old.txt", size: uint64(len(content)), crc: Checksum(content)},
	}, content, true)

	a, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, byte(1), a.FormatVersion())
	assert.Empty(t, a.RequiredContent())
	e, ok := a.Entry("old.txt")
	require.True(t, ok)
	assert.Equal(t, content, e.AppendContent(nil))
}

func TestRead_EmptyBuffer(t *testing.T) {
	t.Parallel()

	_, err := Read(nil)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestRead_IdempotentReserialization(t *testing.T) {
	t.Parallel()

	first := buildTestArchive(t, testFiles)
	a, err := Read(first)
	require.NoError(t, err)

	rebuilt := NewBuilder(a.Title(), a.OwnerID())
	require.NoError(t, rebuilt.SetAuthor(a.Author()))
	require.NoError(t, rebuilt.SetDescription(a.Description()))
	rebuilt.SetAddonVersion(a.AddonVersion())
	rebuilt.SetTimestamp(a.Timestamp())
	for e := range a.Entries() {
		require.NoError(t, rebuilt.FileFromBytes(e.Name(), e.Content()))
	}

	second, err := rebuilt.Bytes()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
