// Package riffinfo decodes and encodes a WAV file's "LIST" "INFO"
// sub-chunk: a flat run of FourCC-keyed, NUL-terminated strings (§4.6).
// Grounded on go-audio/riff's LIST-chunk walker as vendored into the
// pack's WAV decoder.
package riffinfo

import (
	"bytes"
	"fmt"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

const ListTypeInfo = "INFO"

// Item is one INFO sub-chunk entry, keyed by its 4-character FourCC
// (IART, INAM, ICMT, ...).
type Item struct {
	FourCC string
	Value  string
}

// Tag is the decoded, ordered INFO list.
type Tag struct {
	Items []Item
}

// wellKnown maps the common FourCCs to the names tools display them as;
// unrecognised FourCCs are preserved verbatim (§4.6's escape hatch).
var wellKnown = map[string]string{
	"IART": "Artist", "INAM": "Title", "IALB": "Album", "ICMT": "Comment",
	"IGNR": "Genre", "ICRD": "Date", "IPRD": "Album", "ITRK": "TrackNumber",
	"ISFT": "EncoderSoftware", "IENG": "Engineer", "ICOP": "Copyright",
	"IARL": "Location", "ISBJ": "Subject", "ITCH": "Technician",
	"IKEY": "Keywords", "IMED": "Medium", "ISRC": "Source",
}

// Parse decodes a LIST/INFO sub-chunk body (everything after the "INFO"
// FourCC, before the chunk's own end).
func Parse(body []byte, allocLimit uint64) (*Tag, error) {
	r := bytes.NewReader(body)
	tag := &Tag{}
	for r.Len() >= 8 {
		idb, err := binutil.ReadBytes(r, 4, 0)
		if err != nil {
			return nil, err
		}
		sizeb, err := binutil.ReadBytes(r, 4, 0)
		if err != nil {
			return nil, err
		}
		size := binutil.LEUint32(sizeb)
		val, err := binutil.ReadBytes(r, uint64(size), allocLimit)
		if err != nil {
			return nil, fmt.Errorf("riffinfo: reading %s value: %w", idb, err)
		}
		if size%2 != 0 && r.Len() > 0 {
			// Sub-chunks are word-aligned like their RIFF parent.
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
		}
		tag.Items = append(tag.Items, Item{
			FourCC: string(idb),
			Value:  string(bytes.TrimRight(val, "\x00")),
		})
	}
	return tag, nil
}

// Serialize encodes tag's items back into a LIST/INFO sub-chunk body,
// including the leading "INFO" FourCC.
func Serialize(tag *Tag) []byte {
	var buf bytes.Buffer
	buf.WriteString(ListTypeInfo)
	for _, it := range tag.Items {
		val := append([]byte(it.Value), 0)
		sizeB := make([]byte, 4)
		binutil.PutLEUint32(sizeB, uint32(len(val)))
		buf.WriteString(it.FourCC)
		buf.Write(sizeB)
		buf.Write(val)
		if len(val)%2 != 0 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// Set replaces (or appends) the item for fourCC.
func (t *Tag) Set(fourCC, value string) {
	for i, it := range t.Items {
		if it.FourCC == fourCC {
			t.Items[i].Value = value
			return
		}
	}
	t.Items = append(t.Items, Item{FourCC: fourCC, Value: value})
}

// Get returns the value for fourCC, if present.
func (t *Tag) Get(fourCC string) (string, bool) {
	for _, it := range t.Items {
		if it.FourCC == fourCC {
			return it.Value, true
		}
	}
	return "", false
}

// DisplayName returns the well-known display name for fourCC, or fourCC
// itself if unrecognised.
func DisplayName(fourCC string) string {
	if n, ok := wellKnown[fourCC]; ok {
		return n
	}
	return fourCC
}
