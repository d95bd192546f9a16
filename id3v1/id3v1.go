// Package id3v1 implements the ID3v1/ID3v1.1 tag dialect (C5, §4.7):
// a fixed 128-byte trailer of scalar fields with no sub-framing at all.
package id3v1

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	// Size is the fixed on-disk length of an ID3v1 tag.
	Size = 128

	preamble = "TAG"
)

// Tag is the ID3v1/v1.1 scalar field set. TrackNumber is 0 when absent
// (invariant 5): readers must interpret an on-disk 0 as "no track number"
// and writers must never emit a non-zero value there unless set.
type Tag struct {
	Title       string
	Artist      string
	Album       string
	Year        string
	Comment     string
	TrackNumber uint8 // 0 means absent
	GenreIndex  uint8
}

// ErrNotID3v1 is returned by Parse when the 128-byte trailer does not
// start with "TAG".
var ErrNotID3v1 = fmt.Errorf("id3v1: missing \"TAG\" preamble")

// Parse decodes a 128-byte ID3v1/v1.1 trailer. Text fields are Latin-1;
// trailing NULs and spaces are stripped. The v1.1 extension is detected by
// byte comment[28] == 0 and comment[29] != 0 (§4.7).
func Parse(b []byte) (*Tag, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("id3v1: expected %d bytes, got %d", Size, len(b))
	}
	if string(b[0:3]) != preamble {
		return nil, ErrNotID3v1
	}

	t := &Tag{
		Title:  trimField(b[3:33]),
		Artist: trimField(b[33:63]),
		Album:  trimField(b[63:93]),
		Year:   trimField(b[93:97]),
	}
	comment := b[97:127]
	t.GenreIndex = b[127]

	if comment[28] == 0 && comment[29] != 0 {
		t.Comment = trimField(comment[0:28])
		t.TrackNumber = comment[29]
	} else {
		t.Comment = trimField(comment)
	}
	return t, nil
}

func trimField(b []byte) string {
	b = bytes.TrimRight(b, "\x00")
	s := make([]rune, len(b))
	for i, x := range b {
		s[i] = rune(x)
	}
	return strings.TrimRight(string(s), " ")
}

// Serialize always emits the v1.1 form: an absent TrackNumber is written
// as 0, which Parse (and every compliant reader) treats as absent.
func (t *Tag) Serialize() []byte {
	out := make([]byte, Size)
	copy(out[0:3], preamble)
	putLatin1(out[3:33], t.Title)
	putLatin1(out[33:63], t.Artist)
	putLatin1(out[63:93], t.Album)
	putLatin1(out[93:97], t.Year)
	putLatin1(out[97:125], t.Comment)
	out[125] = 0
	out[126] = t.TrackNumber
	out[127] = t.GenreIndex
	return out
}

func putLatin1(dst []byte, s string) {
	for i, r := range []byte(toLatin1(s)) {
		if i >= len(dst) {
			break
		}
		dst[i] = r
	}
}

func toLatin1(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return string(out)
}

// ReadFrom reads the last 128 bytes of r (which must support Seek via the
// caller positioning it at EOF-128) and parses them as an ID3v1 tag.
func ReadFrom(r io.Reader) (*Tag, error) {
	b := make([]byte, Size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return Parse(b)
}

// Genre looks up the Winamp-extended genre table entry for t's index, or
// "" if out of range.
func (t *Tag) Genre() string {
	if int(t.GenreIndex) < len(Genres) {
		return Genres[t.GenreIndex]
	}
	return ""
}
