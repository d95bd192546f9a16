package id3v2

// Frame is the tagged-union member for a single ID3v2 frame. Concrete
// types below (TextFrame, UserTextFrame, ...) each implement Frame; the
// design notes (§9) call for exactly this shape over an inheritance
// hierarchy, since a frame is "one of N payload shapes" and nothing more.
type Frame interface {
	frameKind() string
}

// TextFrame covers every "T???" frame: a single (possibly multi-valued in
// v4) text string.
type TextFrame struct {
	Values []string // v4 multi-value text, joined with NUL on the wire
}

func (TextFrame) frameKind() string { return "text" }

// UserTextFrame is TXXX: identity is the Description (§4.3).
type UserTextFrame struct {
	Description string
	Values      []string
}

func (UserTextFrame) frameKind() string { return "userText" }

// URLFrame covers "W???" frames: a single Latin-1 URL, no encoding byte.
type URLFrame struct {
	URL string
}

func (URLFrame) frameKind() string { return "url" }

// UserURLFrame is WXXX.
type UserURLFrame struct {
	Description string
	URL         string
}

func (UserURLFrame) frameKind() string { return "userURL" }

// CommentFrame covers COMM and USLT: identity is (id, Language,
// Description).
type CommentFrame struct {
	Language    string
	Description string
	Text        string
}

func (CommentFrame) frameKind() string { return "comment" }

// AttachedPictureFrame covers APIC (v3/v4) and PIC (v2.2).
type AttachedPictureFrame struct {
	MIME        string // full MIME in APIC; mapped from/to the 3-char PIC format
	PictureType byte
	Description string
	Data        []byte
}

func (AttachedPictureFrame) frameKind() string { return "picture" }

// PopularimeterFrame is POPM: email identity, 0-255 rating, and a
// variable-length play counter (writers pick the smallest width that
// fits, typically 4 or 8 bytes).
type PopularimeterFrame struct {
	Email   string
	Rating  byte
	Counter uint64
}

func (PopularimeterFrame) frameKind() string { return "popm" }

// UniqueFileIdentifierFrame is UFID.
type UniqueFileIdentifierFrame struct {
	Owner      string
	Identifier []byte
}

func (UniqueFileIdentifierFrame) frameKind() string { return "ufid" }

// KeyValueListFrame covers TIPL (v4) / IPLS (v3): alternating role/name
// pairs.
type KeyValueListFrame struct {
	Pairs [][2]string
}

func (KeyValueListFrame) frameKind() string { return "keyValueList" }

// PrivateFrame is PRIV: an opaque owner-identified blob, preserved
// verbatim.
type PrivateFrame struct {
	Owner string
	Data  []byte
}

func (PrivateFrame) frameKind() string { return "private" }

// BinaryFrame is the catch-all for unknown, outdated, encrypted, or
// otherwise opaque frame payloads: preserved byte-for-byte.
type BinaryFrame struct {
	Data []byte
}

func (BinaryFrame) frameKind() string { return "binary" }

// frameEntry pairs a FrameID+Flags with its decoded payload, as stored in
// Tag.Frames in insertion order.
type frameEntry struct {
	ID    FrameID
	Flags FrameFlags
	Body  Frame
}
