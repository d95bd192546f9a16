package id3v2

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
	"github.com/go-tagfmt/tagfmt/picture"
)

// decodeFrameBody dispatches on name to produce the right Frame kind from
// a frame's raw payload, per §4.3's per-frame layouts.
func decodeFrameBody(name string, b []byte, strict bool) (Frame, error) {
	switch {
	case len(name) > 0 && name[0] == 'T' && name != "TXXX" && name != "TXX":
		return decodeTextFrame(b)
	case name == "TXXX" || name == "TXX":
		return decodeUserTextFrame(b)
	case len(name) > 0 && name[0] == 'W' && name != "WXXX" && name != "WXX":
		return decodeURLFrame(b)
	case name == "WXXX" || name == "WXX":
		return decodeUserURLFrame(b)
	case name == "COMM" || name == "COM" || name == "USLT" || name == "ULT":
		return decodeCommentFrame(b)
	case name == "APIC":
		return decodeAPIC(b)
	case name == "PIC":
		return decodePIC(b)
	case name == "POPM":
		return decodePOPM(b)
	case name == "UFID" || name == "UFI":
		return decodeUFID(b)
	case name == "TIPL" || name == "IPLS":
		return decodeKeyValueList(b)
	case name == "PRIV":
		return decodePrivate(b)
	default:
		return BinaryFrame{Data: b}, nil
	}
}

func decodeTextFrame(b []byte) (Frame, error) {
	if len(b) == 0 {
		return TextFrame{}, nil
	}
	enc := binutil.TextEncoding(b[0])
	s, err := binutil.DecodeText(enc, b[1:])
	if err != nil {
		return nil, err
	}
	delim := string(binutil.Delim(enc))
	var values []string
	if delim == "\x00\x00" {
		values = splitUTF16Nul(s)
	} else {
		values = strings.Split(s, "\x00")
	}
	// Trim one trailing empty element created by a terminating NUL.
	if len(values) > 1 && values[len(values)-1] == "" {
		values = values[:len(values)-1]
	}
	if len(values) == 0 {
		values = []string{""}
	}
	return TextFrame{Values: values}, nil
}

// splitUTF16Nul splits on NUL after UTF-16 decode, which collapses to a
// single-byte separator already decoded into a rune -- kept distinct for
// clarity at call sites even though the implementation is shared.
func splitUTF16Nul(s string) []string { return strings.Split(s, "\x00") }

func encodeTextFrame(values []string, version Version) []byte {
	enc := binutil.EncodingUTF8
	if version != V4 {
		enc = binutil.EncodingISO88591
		for _, v := range values {
			if !isLatin1(v) {
				enc = binutil.EncodingUTF16BOM
				break
			}
		}
	}
	joined := strings.Join(values, "\x00")
	buf := []byte{byte(enc)}
	buf = append(buf, binutil.EncodeText(enc, joined)...)
	return buf
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

func decodeUserTextFrame(b []byte) (Frame, error) {
	if len(b) == 0 {
		return UserTextFrame{}, nil
	}
	enc := binutil.TextEncoding(b[0])
	descField, rest := binutil.SplitNulTerminated(b[1:], enc)
	desc, err := binutil.DecodeText(enc, descField)
	if err != nil {
		return nil, fmt.Errorf("TXXX description: %w", err)
	}
	text, err := binutil.DecodeText(enc, rest)
	if err != nil {
		return nil, fmt.Errorf("TXXX value: %w", err)
	}
	return UserTextFrame{Description: desc, Values: strings.Split(text, "\x00")}, nil
}

func encodeUserTextFrame(f UserTextFrame, version Version) []byte {
	enc := pickEncoding(version, f.Description, strings.Join(f.Values, ""))
	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	buf.Write(binutil.EncodeText(enc, f.Description))
	buf.Write(binutil.Delim(enc))
	buf.Write(binutil.EncodeText(enc, strings.Join(f.Values, "\x00")))
	return buf.Bytes()
}

func pickEncoding(version Version, parts ...string) binutil.TextEncoding {
	if version == V4 {
		return binutil.EncodingUTF8
	}
	for _, p := range parts {
		if !isLatin1(p) {
			return binutil.EncodingUTF16BOM
		}
	}
	return binutil.EncodingISO88591
}

func decodeURLFrame(b []byte) (Frame, error) {
	return URLFrame{URL: string(bytes.TrimRight(b, "\x00"))}, nil
}

func decodeUserURLFrame(b []byte) (Frame, error) {
	if len(b) == 0 {
		return UserURLFrame{}, nil
	}
	enc := binutil.TextEncoding(b[0])
	descField, rest := binutil.SplitNulTerminated(b[1:], enc)
	desc, err := binutil.DecodeText(enc, descField)
	if err != nil {
		return nil, fmt.Errorf("WXXX description: %w", err)
	}
	return UserURLFrame{Description: desc, URL: string(bytes.TrimRight(rest, "\x00"))}, nil
}

func encodeUserURLFrame(f UserURLFrame, version Version) []byte {
	enc := pickEncoding(version, f.Description)
	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	buf.Write(binutil.EncodeText(enc, f.Description))
	buf.Write(binutil.Delim(enc))
	buf.WriteString(f.URL)
	return buf.Bytes()
}

// decodeCommentFrame parses COMM/USLT: encoding, 3-byte language, then a
// NUL-delimited description and text (§4.3).
func decodeCommentFrame(b []byte) (Frame, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("id3v2: comment/USLT frame too short")
	}
	enc := binutil.TextEncoding(b[0])
	lang := string(b[1:4])
	descField, rest := binutil.SplitNulTerminated(b[4:], enc)
	desc, err := binutil.DecodeText(enc, descField)
	if err != nil {
		return nil, fmt.Errorf("comment description: %w", err)
	}
	text, err := binutil.DecodeText(enc, rest)
	if err != nil {
		return nil, fmt.Errorf("comment text: %w", err)
	}
	return CommentFrame{Language: lang, Description: desc, Text: text}, nil
}

func encodeCommentFrame(f CommentFrame, version Version) []byte {
	enc := pickEncoding(version, f.Description, f.Text)
	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	lang := f.Language
	if lang == "" {
		lang = "XXX"
	}
	buf.WriteString(pad3(lang))
	buf.Write(binutil.EncodeText(enc, f.Description))
	buf.Write(binutil.Delim(enc))
	buf.Write(binutil.EncodeText(enc, f.Text))
	return buf.Bytes()
}

func pad3(s string) string {
	for len(s) < 3 {
		s += "X"
	}
	return s[:3]
}

// decodeAPIC parses an APIC frame: encoding, NUL-terminated Latin-1 MIME,
// picture type, description, then raw image bytes (§4.3).
func decodeAPIC(b []byte) (Frame, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("id3v2: APIC frame too short")
	}
	enc := binutil.TextEncoding(b[0])
	mimeField, rest := splitLatin1Nul(b[1:])
	if len(rest) == 0 {
		return nil, fmt.Errorf("id3v2: APIC missing picture type")
	}
	picType := rest[0]
	descField, data := binutil.SplitNulTerminated(rest[1:], enc)
	desc, err := binutil.DecodeText(enc, descField)
	if err != nil {
		return nil, fmt.Errorf("APIC description: %w", err)
	}
	return AttachedPictureFrame{
		MIME:        string(mimeField),
		PictureType: picType,
		Description: desc,
		Data:        data,
	}, nil
}

func splitLatin1Nul(b []byte) (field, rest []byte) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return b, nil
	}
	return b[:i], b[i+1:]
}

func encodeAPIC(f AttachedPictureFrame, version Version) []byte {
	enc := pickEncoding(version, f.Description)
	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	buf.WriteString(f.MIME)
	buf.WriteByte(0)
	buf.WriteByte(f.PictureType)
	buf.Write(binutil.EncodeText(enc, f.Description))
	buf.Write(binutil.Delim(enc))
	buf.Write(f.Data)
	return buf.Bytes()
}

// decodePIC parses the v2.2 PIC frame, whose image-format field is a
// 3-byte identifier ("JPG", "PNG", ...) instead of a MIME string.
func decodePIC(b []byte) (Frame, error) {
	if len(b) < 5 {
		return nil, fmt.Errorf("id3v2: PIC frame too short")
	}
	enc := binutil.TextEncoding(b[0])
	ext := strings.ToUpper(string(b[1:4]))
	picType := b[4]
	descField, data := binutil.SplitNulTerminated(b[5:], enc)
	desc, err := binutil.DecodeText(enc, descField)
	if err != nil {
		return nil, fmt.Errorf("PIC description: %w", err)
	}
	mime, ok := picture.MIMEForExt(ext)
	if !ok {
		mime = "image/" + strings.ToLower(ext)
	}
	return AttachedPictureFrame{
		MIME:        mime,
		PictureType: picType,
		Description: desc,
		Data:        data,
	}, nil
}

func encodePIC(f AttachedPictureFrame) []byte {
	ext := picture.ExtForMIME(f.MIME)
	if ext == "" {
		ext = "JPG"
	}
	enc := binutil.EncodingISO88591
	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	buf.WriteString(ext)
	buf.WriteByte(f.PictureType)
	buf.Write(binutil.EncodeText(enc, f.Description))
	buf.Write(binutil.Delim(enc))
	buf.Write(f.Data)
	return buf.Bytes()
}

// decodePOPM parses POPM: NUL-terminated Latin-1 email, a rating byte,
// and an optional variable-length big-endian play counter.
func decodePOPM(b []byte) (Frame, error) {
	email, rest := splitLatin1Nul(b)
	if len(rest) == 0 {
		return nil, fmt.Errorf("id3v2: POPM missing rating")
	}
	rating := rest[0]
	var counter uint64
	for _, x := range rest[1:] {
		counter = counter<<8 | uint64(x)
	}
	return PopularimeterFrame{Email: string(email), Rating: rating, Counter: counter}, nil
}

func encodePOPM(f PopularimeterFrame) []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Email)
	buf.WriteByte(0)
	buf.WriteByte(f.Rating)
	if f.Counter > 0 {
		buf.Write(counterBytes(f.Counter))
	}
	return buf.Bytes()
}

// counterBytes picks the smallest big-endian width (4 or 8 bytes) that
// fits the counter, per §4.3's "writers pick the smallest length".
func counterBytes(v uint64) []byte {
	if v <= 0xFFFFFFFF {
		b := make([]byte, 4)
		b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		return b
	}
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func decodeUFID(b []byte) (Frame, error) {
	owner, rest := splitLatin1Nul(b)
	return UniqueFileIdentifierFrame{Owner: string(owner), Identifier: rest}, nil
}

func encodeUFID(f UniqueFileIdentifierFrame) []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Owner)
	buf.WriteByte(0)
	buf.Write(f.Identifier)
	return buf.Bytes()
}

// MusicBrainzOwner is the UFID owner string the core recognises and maps
// to ItemKey MusicBrainzRecordingId.
const MusicBrainzOwner = "http://musicbrainz.org"

// decodeKeyValueList parses TIPL/IPLS: alternating NUL-separated strings.
func decodeKeyValueList(b []byte) (Frame, error) {
	if len(b) == 0 {
		return KeyValueListFrame{}, nil
	}
	enc := binutil.TextEncoding(b[0])
	text, err := binutil.DecodeText(enc, b[1:])
	if err != nil {
		return nil, fmt.Errorf("TIPL/IPLS: %w", err)
	}
	parts := strings.Split(text, "\x00")
	var pairs [][2]string
	for i := 0; i+1 < len(parts); i += 2 {
		pairs = append(pairs, [2]string{parts[i], parts[i+1]})
	}
	return KeyValueListFrame{Pairs: pairs}, nil
}

func encodeKeyValueList(f KeyValueListFrame, version Version) []byte {
	var flat []string
	for _, p := range f.Pairs {
		flat = append(flat, p[0], p[1])
	}
	enc := pickEncoding(version, flat...)
	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	buf.Write(binutil.EncodeText(enc, strings.Join(flat, "\x00")))
	return buf.Bytes()
}

// knownTIPLRoles maps the known TIPL/IPLS role strings to their ItemKey
// names for the split/merge layer.
var knownTIPLRoles = map[string]string{
	"producer": "Producer",
	"arranger": "Arranger",
	"engineer": "Engineer",
	"DJ-mix":   "DJMixer",
	"mix":      "Mixer",
}

func decodePrivate(b []byte) (Frame, error) {
	owner, rest := splitLatin1Nul(b)
	return PrivateFrame{Owner: string(owner), Data: rest}, nil
}

func encodePrivate(f PrivateFrame) []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Owner)
	buf.WriteByte(0)
	buf.Write(f.Data)
	return buf.Bytes()
}

// encodeFrameBody is the write-side dispatcher, the inverse of
// decodeFrameBody.
func encodeFrameBody(f Frame, version Version) ([]byte, error) {
	switch v := f.(type) {
	case TextFrame:
		return encodeTextFrame(v.Values, version), nil
	case UserTextFrame:
		return encodeUserTextFrame(v, version), nil
	case URLFrame:
		return []byte(v.URL), nil
	case UserURLFrame:
		return encodeUserURLFrame(v, version), nil
	case CommentFrame:
		return encodeCommentFrame(v, version), nil
	case AttachedPictureFrame:
		if version == V2 {
			return encodePIC(v), nil
		}
		return encodeAPIC(v, version), nil
	case PopularimeterFrame:
		return encodePOPM(v), nil
	case UniqueFileIdentifierFrame:
		return encodeUFID(v), nil
	case KeyValueListFrame:
		return encodeKeyValueList(v, version), nil
	case PrivateFrame:
		return encodePrivate(v), nil
	case BinaryFrame:
		return v.Data, nil
	default:
		return nil, fmt.Errorf("id3v2: unknown frame body type %T", f)
	}
}
