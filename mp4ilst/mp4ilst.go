// Package mp4ilst decodes and encodes the "ilst" atom tree MP4/M4A files
// use for metadata: a run of 4-character (or "----" freeform) atoms, each
// wrapping one or more "data" sub-atoms tagged with a well-known type code
// (§4.2). Grounded on dhowden-tag's readAtomData/readCustomAtom pair,
// generalized here to also encode and to preserve unrecognised well-known
// atoms instead of discarding them.
package mp4ilst

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/container/mp4atom"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
	"github.com/go-tagfmt/tagfmt/picture"
)

// DataType is the "data" sub-atom's well-known type code (§4.2).
type DataType uint32

const (
	TypeImplicit DataType = 0
	TypeUTF8     DataType = 1
	TypeUTF16    DataType = 2
	TypeJPEG     DataType = 13
	TypePNG      DataType = 14
	TypeBE16     DataType = 21 // used for genre ID and similar small integers
	TypeBE32     DataType = 22
)

// AtomIdent identifies an ilst atom either by its well-known 4-character
// name (including the non-ASCII copyright-symbol-prefixed ones like
// "\xa9nam") or, for "----" freeform atoms, by (mean, name) strings.
type AtomIdent struct {
	FourCC    string // "" for freeform atoms
	FreeMean  string
	FreeName  string
}

func (id AtomIdent) String() string {
	if id.FourCC != "" {
		return id.FourCC
	}
	return id.FreeMean + ":" + id.FreeName
}

// AtomData is one "data" sub-atom's decoded payload.
type AtomData struct {
	Type DataType
	Data []byte
}

// Text returns Data interpreted as UTF-8 text (decoded from UTF-16 if
// Type says so).
func (d AtomData) Text() string {
	if d.Type == TypeUTF16 {
		s, _ := binutil.DecodeText(binutil.EncodingUTF16BE, d.Data)
		return s
	}
	return string(d.Data)
}

// Atom is one ilst entry: its identity and every "data" sub-atom value it
// carries (most atoms carry exactly one; a few, like genre strings written
// by some encoders, carry more).
type Atom struct {
	Ident  AtomIdent
	Values []AtomData
}

// Tag is the decoded, ordered ilst atom list.
type Tag struct {
	Atoms []Atom
}

// wellKnownNames maps the FourCCs dhowden-tag and the wider ecosystem
// recognise to their display names; anything absent here is still kept
// verbatim as an AtomIdent, never discarded.
var wellKnownNames = map[string]string{
	"\xa9alb": "Album", "\xa9ART": "Artist", "aART": "AlbumArtist",
	"\xa9day": "Year", "\xa9nam": "Title", "\xa9gen": "Genre",
	"gnre": "GenreID3v1", "trkn": "TrackNumber", "disk": "DiscNumber",
	"\xa9wrt": "Composer", "\xa9too": "EncodedBy", "cprt": "Copyright",
	"covr": "Picture", "\xa9grp": "Grouping", "keyw": "Keyword",
	"\xa9lyr": "Lyrics", "\xa9cmt": "Comment", "tmpo": "BPM", "cpil": "Compilation",
}

// DisplayName returns the well-known display name for a FourCC ident, or
// the FourCC itself.
func DisplayName(fourCC string) string {
	if n, ok := wellKnownNames[fourCC]; ok {
		return n
	}
	return fourCC
}

// DecodeDataAtom parses a single "data" sub-atom's payload (the bytes
// after its own 8-byte atom header): a 4-byte type code, a 4-byte locale
// (usually zero), then the value.
func DecodeDataAtom(payload []byte) (AtomData, error) {
	if len(payload) < 8 {
		return AtomData{}, fmt.Errorf("mp4ilst: data atom too short")
	}
	typ := DataType(binutil.BEUint32(payload[0:4]))
	return AtomData{Type: typ, Data: payload[8:]}, nil
}

// EncodeDataAtom is the inverse of DecodeDataAtom, returning the full
// "data" atom including its own 8-byte header.
func EncodeDataAtom(d AtomData) []byte {
	var buf bytes.Buffer
	header := make([]byte, 8)
	binutil.PutBEUint32(header[0:4], uint32(d.Type))
	// bytes 4:8 are the locale indicator, left zero.
	buf.Write(header)
	buf.Write(d.Data)
	payload := buf.Bytes()

	var out bytes.Buffer
	sizeB := make([]byte, 4)
	binutil.PutBEUint32(sizeB, uint32(len(payload)+8))
	out.Write(sizeB)
	out.WriteString("data")
	out.Write(payload)
	return out.Bytes()
}

// TrackNumber decodes trkn/disk's packed binary payload: 2 reserved bytes,
// a 2-byte current number, a 2-byte total, and 2 trailing reserved bytes
// (§4.2).
func TrackNumber(d AtomData) (current, total uint16) {
	if len(d.Data) < 6 {
		return 0, 0
	}
	return binutil.BEUint16(d.Data[2:4]), binutil.BEUint16(d.Data[4:6])
}

// EncodeTrackNumber is the inverse of TrackNumber.
func EncodeTrackNumber(current, total uint16) AtomData {
	b := make([]byte, 8)
	binutil.PutBEUint16(b[2:4], current)
	binutil.PutBEUint16(b[4:6], total)
	return AtomData{Type: TypeImplicit, Data: b}
}

// DecodePicture builds a picture.Picture from a covr atom's data, sniffing
// the MIME type from magic bytes when Type is the implicit/untyped form
// some encoders emit (§4.2, §4.9's cross-format table).
func DecodePicture(d AtomData) picture.Picture {
	mime := picture.MIMEJPEG
	switch d.Type {
	case TypePNG:
		mime = picture.MIMEPNG
	case TypeJPEG:
		mime = picture.MIMEJPEG
	default:
		if sniffed := picture.SniffMIME(d.Data); sniffed != "" {
			mime = sniffed
		}
	}
	return picture.Picture{Type: picture.CoverFront, MIME: picture.KnownMIME(mime), Data: d.Data}
}

// EncodePicture is the inverse of DecodePicture.
func EncodePicture(p picture.Picture) AtomData {
	typ := TypeJPEG
	if p.MIME.String() == picture.MIMEPNG {
		typ = TypePNG
	}
	return AtomData{Type: typ, Data: p.Data}
}

// Get returns every AtomData stored under a well-known FourCC.
func (t *Tag) Get(fourCC string) ([]AtomData, bool) {
	for _, a := range t.Atoms {
		if a.Ident.FourCC == fourCC {
			return a.Values, true
		}
	}
	return nil, false
}

// GetFreeform returns the AtomData stored under a "----" freeform atom
// identified by (mean, name).
func (t *Tag) GetFreeform(mean, name string) ([]AtomData, bool) {
	for _, a := range t.Atoms {
		if a.Ident.FourCC == "" && a.Ident.FreeMean == mean && a.Ident.FreeName == name {
			return a.Values, true
		}
	}
	return nil, false
}

// Set replaces (or inserts) the atom for ident with a single value,
// merge-on-insert per §4.2: an existing atom of the same identity is
// overwritten in place, not duplicated.
func (t *Tag) Set(ident AtomIdent, value AtomData) {
	for i, a := range t.Atoms {
		if sameIdent(a.Ident, ident) {
			t.Atoms[i].Values = []AtomData{value}
			return
		}
	}
	t.Atoms = append(t.Atoms, Atom{Ident: ident, Values: []AtomData{value}})
}

// Add appends another value under ident without removing existing ones
// (used for repeatable atoms like multiple covr pictures).
func (t *Tag) Add(ident AtomIdent, value AtomData) {
	for i, a := range t.Atoms {
		if sameIdent(a.Ident, ident) {
			t.Atoms[i].Values = append(t.Atoms[i].Values, value)
			return
		}
	}
	t.Atoms = append(t.Atoms, Atom{Ident: ident, Values: []AtomData{value}})
}

func sameIdent(a, b AtomIdent) bool {
	return a.FourCC == b.FourCC && a.FreeMean == b.FreeMean && a.FreeName == b.FreeName
}

// RemoveAll deletes every atom matching ident.
func (t *Tag) RemoveAll(ident AtomIdent) {
	kept := t.Atoms[:0]
	for _, a := range t.Atoms {
		if !sameIdent(a.Ident, ident) {
			kept = append(kept, a)
		}
	}
	t.Atoms = kept
}

// Parse walks an "ilst" atom's payload (everything between its own
// header and end, as located by moov/udta/meta/ilst traversal) into a
// Tag. Each child atom is either a well-known FourCC wrapping one or more
// "data" sub-atoms, or a "----" freeform atom wrapping mean/name/data
// (§4.2). Grounded on dhowden-tag's readAtoms/readCustomAtom pair.
func Parse(r io.ReadSeeker, start, end int64) (*Tag, error) {
	t := &Tag{}
	err := mp4atom.Walk(r, start, end, func(a mp4atom.Atom) error {
		if a.Type == "----" {
			freeform, err := parseFreeformAtom(r, a)
			if err != nil {
				return err
			}
			t.Atoms = append(t.Atoms, freeform)
			return nil
		}

		var values []AtomData
		err := mp4atom.Walk(r, a.PayloadStart, a.End(), func(child mp4atom.Atom) error {
			if child.Type != "data" {
				return nil
			}
			if err := child.SeekToPayload(r); err != nil {
				return err
			}
			payload, err := binutil.ReadBytes(r, child.PayloadSize, 0)
			if err != nil {
				return err
			}
			d, err := DecodeDataAtom(payload)
			if err != nil {
				return err
			}
			values = append(values, d)
			return nil
		})
		if err != nil {
			return err
		}
		if len(values) > 0 {
			t.Atoms = append(t.Atoms, Atom{Ident: AtomIdent{FourCC: a.Type}, Values: values})
		}
		return nil
	})
	return t, err
}

// parseFreeformAtom decodes one "----" atom's mean/name/data triple.
func parseFreeformAtom(r io.ReadSeeker, a mp4atom.Atom) (Atom, error) {
	var mean, name string
	var values []AtomData
	err := mp4atom.Walk(r, a.PayloadStart, a.End(), func(child mp4atom.Atom) error {
		if err := child.SeekToPayload(r); err != nil {
			return err
		}
		payload, err := binutil.ReadBytes(r, child.PayloadSize, 0)
		if err != nil {
			return err
		}
		switch child.Type {
		case "mean":
			if len(payload) > 4 {
				mean = string(payload[4:])
			}
		case "name":
			if len(payload) > 4 {
				name = string(payload[4:])
			}
		case "data":
			d, err := DecodeDataAtom(payload)
			if err != nil {
				return err
			}
			values = append(values, d)
		}
		return nil
	})
	if err != nil {
		return Atom{}, err
	}
	return Atom{Ident: AtomIdent{FreeMean: mean, FreeName: name}, Values: values}, nil
}

// Serialize encodes tag back into a complete "ilst" atom, including its
// own 8-byte header.
func Serialize(tag *Tag) []byte {
	var body bytes.Buffer
	for _, a := range tag.Atoms {
		body.Write(encodeAtom(a))
	}
	var out bytes.Buffer
	mp4atom.WriteHeader(&out, "ilst", uint64(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func encodeAtom(a Atom) []byte {
	var body bytes.Buffer
	if a.Ident.FourCC != "" {
		for _, v := range a.Values {
			body.Write(EncodeDataAtom(v))
		}
		var out bytes.Buffer
		mp4atom.WriteHeader(&out, a.Ident.FourCC, uint64(body.Len()))
		out.Write(body.Bytes())
		return out.Bytes()
	}

	writeFreeformChild := func(typ, value string) {
		var child bytes.Buffer
		child.Write([]byte{0, 0, 0, 0})
		child.WriteString(value)
		var out bytes.Buffer
		mp4atom.WriteHeader(&out, typ, uint64(child.Len()))
		out.Write(child.Bytes())
		body.Write(out.Bytes())
	}
	writeFreeformChild("mean", a.Ident.FreeMean)
	writeFreeformChild("name", a.Ident.FreeName)
	for _, v := range a.Values {
		body.Write(EncodeDataAtom(v))
	}
	var out bytes.Buffer
	mp4atom.WriteHeader(&out, "----", uint64(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}
