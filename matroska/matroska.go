// Package matroska decodes and encodes the \Segment\Tags element tree
// Matroska/WebM files use for metadata: a run of Tag elements, each a
// Targets scope plus a list of SimpleTag (name/value/language) entries
// that may themselves nest (§4.10). Built on container/ebml's VINT
// primitives; there is no full example repo in the pack that speaks EBML,
// so this package follows the same explicit, imperative walking style as
// every other dialect codec here rather than the reflection-tag design
// found in a single retrieved reference file.
package matroska

import (
	"bytes"
	"fmt"

	"github.com/go-tagfmt/tagfmt/container/ebml"
)

// Element IDs relevant to tag extraction, values taken from the Matroska
// specification (§4.10). IDs are compared including their VINT length
// marker bit, matching how libmatroska itself compares them.
const (
	IDSegment   uint32 = 0x18538067
	IDTags      uint32 = 0x1254C367
	IDTag       uint32 = 0x7373
	IDTargets   uint32 = 0x63C0
	IDTargetTypeValue uint32 = 0x68CA
	IDSimpleTag uint32 = 0x67C8
	IDTagName   uint32 = 0x45A3
	IDTagString uint32 = 0x4487
	IDTagLanguage uint32 = 0x447A
	IDTagDefault  uint32 = 0x4484
)

// SimpleTag is one name/value entry, optionally scoped to a BCP-47
// language and nested further (§4.10's Matroska-specific recursion;
// Parse and Serialize follow nested SimpleTags to any depth).
type SimpleTag struct {
	Name     string
	Value    string
	Language string
	Default  bool
	Nested   []SimpleTag
}

// Tag is one \Tag element: its target scope (0 for file-level) and the
// SimpleTag entries under it.
type Tag struct {
	TargetTypeValue uint32
	SimpleTags      []SimpleTag
}

// Tags is the full decoded \Segment\Tags element.
type Tags struct {
	Tags []Tag
}

// Parse decodes a \Segment\Tags element's payload (the bytes following
// its own ID+size header).
func Parse(payload []byte, allocLimit uint64) (*Tags, error) {
	r := bytes.NewReader(payload)
	out := &Tags{}
	for r.Len() > 0 {
		el, err := ebml.ReadElement(r)
		if err != nil {
			return nil, fmt.Errorf("matroska: reading Tags child: %w", err)
		}
		body, err := readBody(r, el, allocLimit)
		if err != nil {
			return nil, err
		}
		if el.ID == IDTag {
			tag, err := parseTag(body, allocLimit)
			if err != nil {
				return nil, fmt.Errorf("matroska: parsing Tag: %w", err)
			}
			out.Tags = append(out.Tags, *tag)
		}
	}
	return out, nil
}

func readBody(r *bytes.Reader, el ebml.Element, allocLimit uint64) ([]byte, error) {
	if el.Unknown {
		return nil, fmt.Errorf("matroska: unknown-size elements are not supported")
	}
	return ebml.ReadPayload(r, el.Size, allocLimit)
}

func parseTag(payload []byte, allocLimit uint64) (*Tag, error) {
	r := bytes.NewReader(payload)
	tag := &Tag{}
	for r.Len() > 0 {
		el, err := ebml.ReadElement(r)
		if err != nil {
			return nil, err
		}
		body, err := readBody(r, el, allocLimit)
		if err != nil {
			return nil, err
		}
		switch el.ID {
		case IDTargets:
			tag.TargetTypeValue = parseTargets(body)
		case IDSimpleTag:
			st, err := parseSimpleTag(body, allocLimit)
			if err != nil {
				return nil, err
			}
			tag.SimpleTags = append(tag.SimpleTags, *st)
		}
	}
	return tag, nil
}

func parseTargets(payload []byte) uint32 {
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		el, err := ebml.ReadElement(r)
		if err != nil {
			return 0
		}
		body, err := ebml.ReadPayload(r, el.Size, 0)
		if err != nil {
			return 0
		}
		if el.ID == IDTargetTypeValue {
			return decodeUint(body)
		}
	}
	return 0
}

func parseSimpleTag(payload []byte, allocLimit uint64) (*SimpleTag, error) {
	r := bytes.NewReader(payload)
	st := &SimpleTag{Language: "und"}
	for r.Len() > 0 {
		el, err := ebml.ReadElement(r)
		if err != nil {
			return nil, err
		}
		body, err := readBody(r, el, allocLimit)
		if err != nil {
			return nil, err
		}
		switch el.ID {
		case IDTagName:
			st.Name = string(body)
		case IDTagString:
			st.Value = string(body)
		case IDTagLanguage:
			st.Language = string(body)
		case IDTagDefault:
			st.Default = decodeUint(body) != 0
		case IDSimpleTag:
			nested, err := parseSimpleTag(body, allocLimit)
			if err != nil {
				return nil, err
			}
			st.Nested = append(st.Nested, *nested)
		}
	}
	return st, nil
}

func decodeUint(b []byte) uint32 {
	var v uint32
	for _, x := range b {
		v = v<<8 | uint32(x)
	}
	return v
}

// Serialize encodes tags back into a \Segment\Tags element payload (the
// caller prepends the IDTags header with container/ebml.WriteVINT).
func Serialize(tags *Tags) []byte {
	var buf bytes.Buffer
	for _, tag := range tags.Tags {
		buf.Write(encodeTag(tag))
	}
	return buf.Bytes()
}

func encodeTag(tag Tag) []byte {
	var body bytes.Buffer
	body.Write(encodeElement(IDTargets, encodeTargets(tag.TargetTypeValue)))
	for _, st := range tag.SimpleTags {
		body.Write(encodeElement(IDSimpleTag, encodeSimpleTag(st)))
	}
	return encodeElement(IDTag, body.Bytes())
}

func encodeTargets(targetType uint32) []byte {
	if targetType == 0 {
		return nil
	}
	return encodeElement(IDTargetTypeValue, encodeUint(targetType))
}

func encodeSimpleTag(st SimpleTag) []byte {
	var body bytes.Buffer
	body.Write(encodeElement(IDTagName, []byte(st.Name)))
	if st.Language != "" {
		body.Write(encodeElement(IDTagLanguage, []byte(st.Language)))
	}
	body.Write(encodeElement(IDTagString, []byte(st.Value)))
	for _, nested := range st.Nested {
		body.Write(encodeElement(IDSimpleTag, encodeSimpleTag(nested)))
	}
	return body.Bytes()
}

func encodeUint(v uint32) []byte {
	if v == 0 {
		return []byte{0}
	}
	var b []byte
	for v > 0 {
		b = append([]byte{byte(v)}, b...)
		v >>= 8
	}
	return b
}

// encodeElement writes an element ID (already including its VINT marker
// bit, as the ID* constants do) followed by a VINT size and the body.
func encodeElement(id uint32, body []byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeID(id))
	buf.Write(ebml.WriteVINT(uint64(len(body)), 0))
	buf.Write(body)
	return buf.Bytes()
}

func encodeID(id uint32) []byte {
	switch {
	case id <= 0xFF:
		return []byte{byte(id)}
	case id <= 0xFFFF:
		return []byte{byte(id >> 8), byte(id)}
	case id <= 0xFFFFFF:
		return []byte{byte(id >> 16), byte(id >> 8), byte(id)}
	default:
		return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	}
}

// Get returns every SimpleTag value with the given name across all file-
// level (TargetTypeValue == 0) tags.
func (t *Tags) Get(name string) []string {
	var out []string
	for _, tag := range t.Tags {
		if tag.TargetTypeValue != 0 {
			continue
		}
		for _, st := range tag.SimpleTags {
			if st.Name == name {
				out = append(out, st.Value)
			}
		}
	}
	return out
}

// Set replaces every file-level SimpleTag named name with a single new
// value, creating the file-level Tag if none exists yet.
func (t *Tags) Set(name, value string) {
	for i := range t.Tags {
		if t.Tags[i].TargetTypeValue != 0 {
			continue
		}
		kept := t.Tags[i].SimpleTags[:0]
		for _, st := range t.Tags[i].SimpleTags {
			if st.Name != name {
				kept = append(kept, st)
			}
		}
		t.Tags[i].SimpleTags = append(kept, SimpleTag{Name: name, Value: value, Language: "und"})
		return
	}
	t.Tags = append(t.Tags, Tag{SimpleTags: []SimpleTag{{Name: name, Value: value, Language: "und"}}})
}
