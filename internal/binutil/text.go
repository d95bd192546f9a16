package binutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// TextEncoding is the ID3v2 text-frame encoding byte.
type TextEncoding byte

const (
	EncodingISO88591   TextEncoding = 0
	EncodingUTF16BOM   TextEncoding = 1
	EncodingUTF16BE    TextEncoding = 2
	EncodingUTF8       TextEncoding = 3
)

// ErrTextDecode mirrors the core's TextDecode error class: a byte sequence
// was invalid for its declared encoding.
type ErrTextDecode struct {
	Encoding TextEncoding
	Reason   string
}

func (e *ErrTextDecode) Error() string {
	return fmt.Sprintf("text decode: encoding %d: %s", e.Encoding, e.Reason)
}

// Delim returns the NUL terminator width used by enc: one byte for
// byte-oriented encodings, two for UTF-16 variants.
func Delim(enc TextEncoding) []byte {
	switch enc {
	case EncodingUTF16BOM, EncodingUTF16BE:
		return []byte{0, 0}
	default:
		return []byte{0}
	}
}

// SplitNulTerminated splits b on the first NUL terminator appropriate for
// enc, returning the field and the remainder. If no terminator is found the
// whole slice is returned as the field with an empty remainder.
func SplitNulTerminated(b []byte, enc TextEncoding) (field, rest []byte) {
	delim := Delim(enc)
	i := bytes.Index(b, delim)
	if i < 0 {
		return b, nil
	}
	// For UTF-16 a real 2-byte NUL must be aligned; if we hit a spurious
	// single zero first widen the search.
	if len(delim) == 2 && i%2 != 0 {
		j := bytes.Index(b[i+1:], delim)
		if j < 0 {
			return b, nil
		}
		i = i + 1 + j
	}
	return b[:i], b[i+len(delim):]
}

// DecodeText decodes b per enc: ISO-8859-1 (Latin-1), UTF-16 with a leading
// BOM, big-endian UTF-16 without a BOM, or UTF-8.
func DecodeText(enc TextEncoding, b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	switch enc {
	case EncodingISO88591:
		return decodeLatin1(b), nil
	case EncodingUTF16BOM:
		return decodeUTF16BOM(b)
	case EncodingUTF16BE:
		return decodeUTF16(b, binary.BigEndian), nil
	case EncodingUTF8:
		return string(b), nil
	default:
		return "", &ErrTextDecode{Encoding: enc, Reason: fmt.Sprintf("unknown encoding byte 0x%02x", byte(enc))}
	}
}

// EncodeText is the inverse of DecodeText. EncodingUTF16BOM output carries
// a little-endian BOM, matching how the teacher's dependents and modern
// encoders emit it; EncodingUTF16BE output is big-endian with no BOM.
func EncodeText(enc TextEncoding, s string) []byte {
	switch enc {
	case EncodingISO88591:
		return encodeLatin1(s)
	case EncodingUTF16BOM:
		return encodeUTF16BOM(s)
	case EncodingUTF16BE:
		return encodeUTF16(s, binary.BigEndian)
	default: // UTF-8 and any unrecognised encoding fall back to UTF-8 bytes.
		return []byte(s)
	}
}

func decodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, x := range b {
		r[i] = rune(x)
	}
	return string(r)
}

func encodeLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

func decodeUTF16BOM(b []byte) (string, error) {
	if len(b) < 2 {
		return "", nil
	}
	var bo binary.ByteOrder
	switch {
	case b[0] == 0xFE && b[1] == 0xFF:
		bo = binary.BigEndian
	case b[0] == 0xFF && b[1] == 0xFE:
		bo = binary.LittleEndian
	default:
		return "", &ErrTextDecode{Encoding: EncodingUTF16BOM, Reason: "missing or invalid byte order mark"}
	}
	return decodeUTF16(b[2:], bo), nil
}

func decodeUTF16(b []byte, bo binary.ByteOrder) string {
	n := len(b) / 2
	u := make([]uint16, 0, n)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, bo.Uint16(b[i:i+2]))
	}
	return string(utf16.Decode(u))
}

func encodeUTF16BOM(s string) []byte {
	u := utf16.Encode([]rune(s))
	out := make([]byte, 2+2*len(u))
	out[0], out[1] = 0xFF, 0xFE // little-endian BOM
	for i, x := range u {
		binary.LittleEndian.PutUint16(out[2+2*i:], x)
	}
	return out
}

func encodeUTF16(s string, bo binary.ByteOrder) []byte {
	u := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(u))
	for i, x := range u {
		bo.PutUint16(out[2*i:], x)
	}
	return out
}
