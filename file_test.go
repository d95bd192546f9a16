package tagfmt

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/container/flacblock"
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/tag"
	"github.com/go-tagfmt/tagfmt/vorbis"
)

// memFile is a minimal in-memory FileLike, standing in for *os.File in
// tests that exercise ReadFrom/Save's splicing.
type memFile struct {
	buf []byte
	pos int64
}

func newMemFile(b []byte) *memFile { return &memFile{buf: append([]byte(nil), b...)} }

func (m *memFile) Read(p []byte) (int, error) {
	n, err := m.ReadAt(p, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += int64(n)
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}
	return m.pos, nil
}

func (m *memFile) Truncate(size int64) error {
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func (m *memFile) Len() (int64, error) { return int64(len(m.buf)), nil }

func buildFLACFixture(t *testing.T, comments *vorbis.Comments) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(flacblock.StreamMarker)
	buf.Write(flacblock.Marshal(flacblock.Block{
		Type: flacblock.StreamInfo,
		Data: make([]byte, 34),
	}, false))
	buf.Write(flacblock.Marshal(flacblock.Block{
		Type: flacblock.VorbisComment,
		Data: vorbis.Serialize(comments),
	}, true))
	return buf.Bytes()
}

func TestReadFromFLACRoundTrip(t *testing.T) {
	fixture := buildFLACFixture(t, &vorbis.Comments{
		Vendor: "tagfmt test",
		Fields: []vorbis.Field{{Key: "TITLE", Value: "Hello"}, {Key: "ARTIST", Value: "World"}},
	})
	f := newMemFile(fixture)

	tf, err := ReadFrom(f, config.DefaultParseOptions())
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if tf.FileType() != FLAC {
		t.Fatalf("expected FLAC, got %v", tf.FileType())
	}
	if tf.PrimaryTagType() != TagVorbisComments {
		t.Fatalf("expected TagVorbisComments primary, got %v", tf.PrimaryTagType())
	}

	got := tf.Tag()
	if it, ok := got.Get(itemkey.TrackTitle); !ok || it.Value.Text != "Hello" {
		t.Fatalf("unexpected title: %+v", it)
	}

	got.Set(itemkey.TrackTitle, tag.TextValue("Changed"))
	if err := tf.Save(config.DefaultWriteOptions()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tf2, err := ReadFrom(f, config.DefaultParseOptions())
	if err != nil {
		t.Fatalf("re-ReadFrom: %v", err)
	}
	if it, ok := tf2.Tag().Get(itemkey.TrackTitle); !ok || it.Value.Text != "Changed" {
		t.Fatalf("round trip did not persist title change: %+v", it)
	}
}

func TestFileTypeByName(t *testing.T) {
	cases := []struct {
		name string
		want FileType
		ok   bool
	}{
		{"MPEG", MPEG, true},
		{"OggOpus", OggOpus, true},
		{"Matroska", Matroska, true},
		{"bogus", Unknown, false},
	}
	for _, c := range cases {
		got, ok := fileTypeByName(c.name)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("fileTypeByName(%q) = %v, %v; want %v, %v", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestDecodeOggFLACMetadataPacket(t *testing.T) {
	data := vorbis.Serialize(&vorbis.Comments{Vendor: "v", Fields: []vorbis.Field{{Key: "A", Value: "B"}}})
	pkt := flacblock.Marshal(flacblock.Block{Type: flacblock.VorbisComment, Data: data}, true)

	blk, err := decodeOggFLACMetadataPacket(pkt)
	if err != nil {
		t.Fatalf("decodeOggFLACMetadataPacket: %v", err)
	}
	if blk.Type != flacblock.VorbisComment || !blk.IsLast {
		t.Fatalf("unexpected block: %+v", blk)
	}
	if !bytes.Equal(blk.Data, data) {
		t.Fatalf("unexpected payload: %q", blk.Data)
	}
}

func TestLocateTopLevelElementSkipsSiblings(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeEBMLElementHeader(0xEC, 1, 3)) // a Void element (sibling, not our target)
	buf.WriteString("xyz")

	targetStart := buf.Len()
	buf.Write(encodeEBMLElementHeader(0x7373, 2, 5))
	buf.WriteString("hello")

	data := buf.Bytes()
	f := newMemFile(data)

	el, err := locateTopLevelElement(f, 0, int64(len(data)), 0x7373)
	if err != nil {
		t.Fatalf("locateTopLevelElement: %v", err)
	}
	if el == nil {
		t.Fatalf("expected to find target element")
	}
	if el.start != int64(targetStart) {
		t.Fatalf("expected start %d, got %d", targetStart, el.start)
	}
	payload := make([]byte, el.payloadEnd-el.payloadStart)
	if _, err := f.ReadAt(payload, el.payloadStart); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(payload) != "hello" {
		t.Fatalf("unexpected payload: %q", payload)
	}
}
