// Package vorbis decodes and encodes Vorbis Comments: the flat
// "KEY=value" list shared verbatim by FLAC's VORBIS_COMMENT block and
// every page of an Ogg Vorbis/Opus/Speex comment header (§4.4, §4.8).
// Grounded on the go-flac/flacvorbis wire layout (vendor string + count +
// length-prefixed entries) referenced by the pack's FLAC dependencies.
package vorbis

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
	"github.com/go-tagfmt/tagfmt/picture"
)

// PictureKey (METADATA_BLOCK_PICTURE) is the field pictures are written
// under; DeprecatedCoverArt and DeprecatedCoverArtMIME name the older
// base64 picture-embedding convention some encoders still emit.
const (
	PictureKey         = "METADATA_BLOCK_PICTURE"
	DeprecatedCoverArt = "COVERART"
	DeprecatedCoverArtMIME = "COVERARTMIME"
)

// Comments is the decoded vendor string plus ordered field list. Vorbis
// Comments preserve field order and allow duplicate keys (multi-valued
// fields), per §4.4.
type Comments struct {
	Vendor string
	Fields []Field
}

// Field is one "KEY=value" entry, keys compared case-insensitively per the
// Vorbis comment spec.
type Field struct {
	Key   string
	Value string
}

// Parse decodes a Vorbis comment header body: a length-prefixed vendor
// string, a field count, then length-prefixed "KEY=value" fields, all
// little-endian (§4.4).
func Parse(b []byte, allocLimit uint64) (*Comments, error) {
	r := bytes.NewReader(b)
	vendor, err := readLPString(r, allocLimit)
	if err != nil {
		return nil, fmt.Errorf("vorbis: reading vendor string: %w", err)
	}
	countB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return nil, fmt.Errorf("vorbis: reading field count: %w", err)
	}
	count := binutil.LEUint32(countB)

	c := &Comments{Vendor: vendor}
	for i := uint32(0); i < count; i++ {
		entry, err := readLPString(r, allocLimit)
		if err != nil {
			return nil, fmt.Errorf("vorbis: reading field %d: %w", i, err)
		}
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		c.Fields = append(c.Fields, Field{Key: k, Value: v})
	}
	return c, nil
}

func readLPString(r *bytes.Reader, allocLimit uint64) (string, error) {
	sizeB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return "", err
	}
	size := binutil.LEUint32(sizeB)
	b, err := binutil.ReadBytes(r, uint64(size), allocLimit)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Serialize encodes c back into a Vorbis comment header body.
func Serialize(c *Comments) []byte {
	var buf bytes.Buffer
	writeLPString(&buf, c.Vendor)
	countB := make([]byte, 4)
	binutil.PutLEUint32(countB, uint32(len(c.Fields)))
	buf.Write(countB)
	for _, f := range c.Fields {
		writeLPString(&buf, f.Key+"="+f.Value)
	}
	return buf.Bytes()
}

func writeLPString(buf *bytes.Buffer, s string) {
	sizeB := make([]byte, 4)
	binutil.PutLEUint32(sizeB, uint32(len(s)))
	buf.Write(sizeB)
	buf.WriteString(s)
}

// Add appends a field, allowing duplicate keys (multi-valued fields are
// ordinary in Vorbis Comments).
func (c *Comments) Add(key, value string) {
	c.Fields = append(c.Fields, Field{Key: key, Value: value})
}

// All returns every field value for key (case-insensitive).
func (c *Comments) All(key string) []string {
	var out []string
	for _, f := range c.Fields {
		if strings.EqualFold(f.Key, key) {
			out = append(out, f.Value)
		}
	}
	return out
}

// RemoveAll deletes every field with the given key (case-insensitive).
func (c *Comments) RemoveAll(key string) {
	kept := c.Fields[:0]
	for _, f := range c.Fields {
		if !strings.EqualFold(f.Key, key) {
			kept = append(kept, f)
		}
	}
	c.Fields = kept
}

// SetSingle replaces every existing value for key with a single new one,
// for fields the format treats as singletons (TITLE, ALBUM, ...).
func (c *Comments) SetSingle(key, value string) {
	c.RemoveAll(key)
	c.Add(key, value)
}

// DecodePicture decodes a METADATA_BLOCK_PICTURE field value: base64 of
// the same binary layout as FLAC's PICTURE metadata block (§4.4's shared
// picture encoding).
func DecodePicture(fieldValue string, allocLimit uint64) (picture.Picture, error) {
	raw, err := base64.StdEncoding.DecodeString(fieldValue)
	if err != nil {
		return picture.Picture{}, fmt.Errorf("vorbis: decoding base64 picture block: %w", err)
	}
	return DecodeFlacPictureBlock(raw, allocLimit)
}

// EncodePicture is the inverse of DecodePicture, producing a field value
// ready to store under PictureKey.
func EncodePicture(p picture.Picture, info picture.Information) string {
	return base64.StdEncoding.EncodeToString(EncodeFlacPictureBlock(p, info))
}

// DecodeFlacPictureBlock decodes the binary layout of a FLAC PICTURE
// metadata block, shared verbatim by METADATA_BLOCK_PICTURE (§4.4): type,
// length-prefixed MIME, length-prefixed description, width/height/depth/
// colour-count, then length-prefixed image data, all big-endian.
func DecodeFlacPictureBlock(b []byte, allocLimit uint64) (picture.Picture, error) {
	r := bytes.NewReader(b)
	typeB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return picture.Picture{}, err
	}
	mime, err := readBELPString(r, allocLimit)
	if err != nil {
		return picture.Picture{}, fmt.Errorf("reading mime: %w", err)
	}
	desc, err := readBELPString(r, allocLimit)
	if err != nil {
		return picture.Picture{}, fmt.Errorf("reading description: %w", err)
	}
	// width, height, depth, numColors: 4 uint32 fields, not surfaced on
	// picture.Picture itself but skipped deliberately.
	if _, err := binutil.ReadBytes(r, 16, 0); err != nil {
		return picture.Picture{}, err
	}
	dataLenB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return picture.Picture{}, err
	}
	data, err := binutil.ReadBytes(r, uint64(binutil.BEUint32(dataLenB)), allocLimit)
	if err != nil {
		return picture.Picture{}, fmt.Errorf("reading image data: %w", err)
	}
	return picture.Picture{
		Type:        picture.Type(binutil.BEUint32(typeB)),
		MIME:        picture.KnownMIME(mime),
		Description: desc,
		Data:        data,
	}, nil
}

// EncodeFlacPictureBlock is the inverse of DecodeFlacPictureBlock.
func EncodeFlacPictureBlock(p picture.Picture, info picture.Information) []byte {
	var buf bytes.Buffer
	typeB := make([]byte, 4)
	binutil.PutBEUint32(typeB, uint32(p.Type))
	buf.Write(typeB)
	writeBELPString(&buf, p.MIME.String())
	writeBELPString(&buf, p.Description)
	dims := make([]byte, 16)
	binutil.PutBEUint32(dims[0:4], info.Width)
	binutil.PutBEUint32(dims[4:8], info.Height)
	binutil.PutBEUint32(dims[8:12], info.ColorDepth)
	binutil.PutBEUint32(dims[12:16], info.NumColors)
	buf.Write(dims)
	dataLenB := make([]byte, 4)
	binutil.PutBEUint32(dataLenB, uint32(len(p.Data)))
	buf.Write(dataLenB)
	buf.Write(p.Data)
	return buf.Bytes()
}

func readBELPString(r *bytes.Reader, allocLimit uint64) (string, error) {
	sizeB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return "", err
	}
	b, err := binutil.ReadBytes(r, uint64(binutil.BEUint32(sizeB)), allocLimit)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeBELPString(buf *bytes.Buffer, s string) {
	sizeB := make([]byte, 4)
	binutil.PutBEUint32(sizeB, uint32(len(s)))
	buf.Write(sizeB)
	buf.WriteString(s)
}
