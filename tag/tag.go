// Package tag is the format-neutral item model (C6): the generic Tag,
// TagItem and ItemValue types that every dialect codec's split/merge
// contract converts to and from.
package tag

import (
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/picture"
)

// ValueKind distinguishes the three shapes an ItemValue can take.
type ValueKind int

const (
	Text ValueKind = iota
	Locator
	Binary
)

// ItemValue is one of Text, Locator (a URL/URI) or Binary.
type ItemValue struct {
	Kind   ValueKind
	Text   string
	Binary []byte
}

func TextValue(s string) ItemValue    { return ItemValue{Kind: Text, Text: s} }
func LocatorValue(s string) ItemValue { return ItemValue{Kind: Locator, Text: s} }
func BinaryValue(b []byte) ItemValue  { return ItemValue{Kind: Binary, Binary: b} }

// TagItem is a single generic metadata entry: a semantic key, a value, and
// the optional language/description fields used by frames that support
// multiple instances per key (COMM, USLT, TXXX, WXXX and their Matroska
// and Vorbis analogues).
type TagItem struct {
	Key         itemkey.ItemKey
	Value       ItemValue
	Lang        string // 3-byte ISO-639-2, default "XXX" (ID3v2) or "und" (others)
	Description string
}

// Companion is the format-specific residue kept alongside a generic Tag
// derived from a dialect tag: everything split_tag could not map. It is
// intentionally untyped here -- each dialect package defines its own
// concrete remainder and stores it behind this interface so Tag itself
// stays dialect-agnostic.
type Companion interface {
	// TagType identifies which dialect this remainder belongs to, so
	// merge_tag can refuse to splice a mismatched companion back in.
	TagType() string
}

// Tag is the generic, transient view produced by split_tag and collapsed
// back into a dialect tag by merge_tag. Item and picture order matches
// insertion order (and, after a round trip, on-disk order).
type Tag struct {
	TagType   string
	Items     []TagItem
	Pictures  []picture.Picture
	Companion Companion // nil when split_tag found nothing it could not map; GlobalOptions.PreserveFormatSpecificItems is not consulted
}

// Get returns the first item for key, if any.
func (t *Tag) Get(key itemkey.ItemKey) (TagItem, bool) {
	for _, it := range t.Items {
		if it.Key == key {
			return it, true
		}
	}
	return TagItem{}, false
}

// GetAll returns every item for key, preserving order.
func (t *Tag) GetAll(key itemkey.ItemKey) []TagItem {
	var out []TagItem
	for _, it := range t.Items {
		if it.Key == key {
			out = append(out, it)
		}
	}
	return out
}

// Set replaces every existing item for key with a single new one carrying
// value, preserving the position of the first match (or appending if key
// is absent).
func (t *Tag) Set(key itemkey.ItemKey, value ItemValue) {
	for i, it := range t.Items {
		if it.Key == key {
			t.Items[i].Value = value
			t.removeFrom(i+1, key)
			return
		}
	}
	t.Items = append(t.Items, TagItem{Key: key, Value: value})
}

func (t *Tag) removeFrom(start int, key itemkey.ItemKey) {
	out := t.Items[:start]
	for _, it := range t.Items[start:] {
		if it.Key != key {
			out = append(out, it)
		}
	}
	t.Items = out
}

// Add appends item without removing any existing entry for the same key,
// for fields that legitimately repeat (comments, free-text frames).
func (t *Tag) Add(item TagItem) {
	t.Items = append(t.Items, item)
}

// Remove deletes every item for key.
func (t *Tag) Remove(key itemkey.ItemKey) {
	t.removeFrom(0, key)
}

// AddPicture appends p to the picture list.
func (t *Tag) AddPicture(p picture.Picture) {
	t.Pictures = append(t.Pictures, p)
}
