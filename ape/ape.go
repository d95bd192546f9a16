// Package ape reads and writes APEv1/APEv2 tags: the footer+optional
// header pair bracketing a flat list of key/value items, as attached to
// APE, WavPack, and Musepack files (§4.5). Grounded on the header/footer
// duality convention documented across the pack's container codecs and on
// the temp-file write pattern id3v2's vendored writer establishes.
package ape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

const (
	Preamble   = "APETAGEX"
	FooterSize = 32

	Version1 = 1000
	Version2 = 2000
)

// ItemType is bits 1-2 of an item's flags field (bit 0 is the read-only
// flag).
type ItemType byte

const (
	ItemUTF8 ItemType = iota
	ItemBinary
	ItemExternalLocator
	itemReserved
)

// Item is a single APE tag entry. Text items may carry more than one
// value, NUL-separated on the wire (§4.5).
type Item struct {
	Key      string
	Type     ItemType
	ReadOnly bool
	Values   []string // populated when Type == ItemUTF8 or ItemExternalLocator
	Binary   []byte   // populated when Type == ItemBinary
}

// Tag is the decoded, ordered list of APE items plus the version the tag
// was (or will be) written as.
type Tag struct {
	Version int
	Items   []Item
}

// reservedKeys may never be stored as ordinary items: they either have a
// dedicated field elsewhere or are forbidden outright by the format (§4.5).
var reservedKeys = map[string]bool{
	"ID3":  true,
	"TAG":  true,
	"OggS": true,
	"MP+":  true,
}

// ErrReservedKey is returned by Tag.Add when key collides with a reserved
// APE key.
type ErrReservedKey struct{ Key string }

func (e *ErrReservedKey) Error() string {
	return fmt.Sprintf("ape: %q is a reserved key", e.Key)
}

// ErrNotAPETag is returned by Parse when the preamble does not match.
var ErrNotAPETag = fmt.Errorf("ape: not an APE tag")

// Footer mirrors the 32-byte footer/header layout shared by both.
type Footer struct {
	Version     uint32
	Size        uint32 // tag size, excluding the header, including the footer
	ItemCount   uint32
	HasHeader   bool
	IsHeader    bool
	ReadOnly    bool
}

const (
	flagHasHeader = 1 << 31
	flagIsHeader  = 1 << 29
	flagReadOnly  = 1 << 0
)

// ParseFooter decodes a 32-byte footer or header block.
func ParseFooter(b []byte) (*Footer, error) {
	if len(b) != FooterSize {
		return nil, fmt.Errorf("ape: footer must be %d bytes, got %d", FooterSize, len(b))
	}
	if string(b[0:8]) != Preamble {
		return nil, ErrNotAPETag
	}
	flags := binutil.LEUint32(b[20:24])
	return &Footer{
		Version:   binutil.LEUint32(b[8:12]),
		Size:      binutil.LEUint32(b[12:16]),
		ItemCount: binutil.LEUint32(b[16:20]),
		HasHeader: flags&flagHasHeader != 0,
		IsHeader:  flags&flagIsHeader != 0,
		ReadOnly:  flags&flagReadOnly != 0,
	}, nil
}

// WriteFooter serializes f into a 32-byte block.
func WriteFooter(f *Footer) []byte {
	b := make([]byte, FooterSize)
	copy(b, Preamble)
	binutil.PutLEUint32(b[8:12], f.Version)
	binutil.PutLEUint32(b[12:16], f.Size)
	binutil.PutLEUint32(b[16:20], f.ItemCount)
	var flags uint32
	if f.HasHeader {
		flags |= flagHasHeader
	}
	if f.IsHeader {
		flags |= flagIsHeader
	}
	if f.ReadOnly {
		flags |= flagReadOnly
	}
	binutil.PutLEUint32(b[20:24], flags)
	return b
}

// Parse decodes the item list out of buf, a buffer containing
// every item followed by the trailing 32-byte footer (the layout found
// between a container's tag-start offset and EOF).
func Parse(buf []byte, allocLimit uint64) (*Tag, error) {
	if len(buf) < FooterSize {
		return nil, fmt.Errorf("ape: buffer too small for footer")
	}
	footer, err := ParseFooter(buf[len(buf)-FooterSize:])
	if err != nil {
		return nil, err
	}
	items := buf[:len(buf)-FooterSize]
	tag := &Tag{Version: int(footer.Version)}
	r := bytes.NewReader(items)
	for i := uint32(0); i < footer.ItemCount; i++ {
		item, err := readItem(r, allocLimit)
		if err != nil {
			return nil, fmt.Errorf("ape: item %d: %w", i, err)
		}
		tag.Items = append(tag.Items, item)
	}
	return tag, nil
}

func readItem(r *bytes.Reader, allocLimit uint64) (Item, error) {
	sizeB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return Item{}, err
	}
	flagsB, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return Item{}, err
	}
	valueSize := binutil.LEUint32(sizeB)
	flags := binutil.LEUint32(flagsB)

	var keyBuf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			return Item{}, fmt.Errorf("reading key: %w", err)
		}
		if b == 0 {
			break
		}
		keyBuf.WriteByte(b)
	}

	value, err := binutil.ReadBytes(r, uint64(valueSize), allocLimit)
	if err != nil {
		return Item{}, fmt.Errorf("reading value: %w", err)
	}

	itemType := ItemType((flags >> 1) & 0x3)
	item := Item{
		Key:      keyBuf.String(),
		Type:     itemType,
		ReadOnly: flags&1 != 0,
	}
	if itemType == ItemBinary {
		item.Binary = value
	} else {
		item.Values = strings.Split(string(value), "\x00")
	}
	return item, nil
}

// Serialize encodes tag's items (not the footer) in order, returning the
// raw item bytes a caller combines with a freshly computed Footer.
func Serialize(tag *Tag) ([]byte, error) {
	var buf bytes.Buffer
	for _, it := range tag.Items {
		if reservedKeys[it.Key] {
			return nil, &ErrReservedKey{Key: it.Key}
		}
		var value []byte
		if it.Type == ItemBinary {
			value = it.Binary
		} else {
			value = []byte(strings.Join(it.Values, "\x00"))
		}
		sizeB := make([]byte, 4)
		binutil.PutLEUint32(sizeB, uint32(len(value)))
		buf.Write(sizeB)

		flags := uint32(it.Type) << 1
		if it.ReadOnly {
			flags |= 1
		}
		flagsB := make([]byte, 4)
		binutil.PutLEUint32(flagsB, flags)
		buf.Write(flagsB)

		buf.WriteString(it.Key)
		buf.WriteByte(0)
		buf.Write(value)
	}
	return buf.Bytes(), nil
}

// Add appends an item, validating its key is not reserved (§4.5). A
// pre-existing item with the same key (case-insensitive, per the format's
// convention) is replaced.
func (t *Tag) Add(it Item) error {
	if reservedKeys[it.Key] {
		return &ErrReservedKey{Key: it.Key}
	}
	for i, existing := range t.Items {
		if strings.EqualFold(existing.Key, it.Key) {
			t.Items[i] = it
			return nil
		}
	}
	t.Items = append(t.Items, it)
	return nil
}

// Get returns the item with the given key (case-insensitive), if present.
func (t *Tag) Get(key string) (Item, bool) {
	for _, it := range t.Items {
		if strings.EqualFold(it.Key, key) {
			return it, true
		}
	}
	return Item{}, false
}
