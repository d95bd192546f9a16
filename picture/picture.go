// Package picture is the shared attached-picture model (C4): the 21-variant
// picture-type enumeration, MIME handling, and the auxiliary
// PictureInformation record kept by formats that store pixel geometry
// alongside the image bytes.
package picture

// Type is the closed picture-type enumeration shared by APIC, the v2.2 PIC
// frame, the FLAC picture block, ilst covr and METADATA_BLOCK_PICTURE.
type Type byte

const (
	Other Type = iota
	Icon32x32
	OtherIcon
	CoverFront
	CoverBack
	Leaflet
	Media
	LeadArtist
	Artist
	Conductor
	Band
	Composer
	Lyricist
	RecordingLocation
	DuringRecording
	DuringPerformance
	MovieScreenCapture
	BrightColouredFish
	Illustration
	BandLogo
	PublisherLogo
)

// MIME identifies a picture's encoding as either a recognised literal or
// an Unknown escape hatch, mirroring ItemKey's shape.
type MIME struct {
	known   string
	unknown string
}

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
	MIMEBMP  = "image/bmp"
)

func KnownMIME(s string) MIME { return MIME{known: s} }
func UnknownMIME(s string) MIME { return MIME{unknown: s} }

func (m MIME) String() string {
	if m.known != "" {
		return m.known
	}
	return m.unknown
}

// Information records the auxiliary pixel geometry some formats (FLAC,
// Vorbis Comments) store alongside a picture.
type Information struct {
	Width      uint32
	Height     uint32
	ColorDepth uint32
	NumColors  uint32
}

// Picture is the format-neutral representation of an attached image: raw,
// already-encoded bytes (PNG/JPEG/GIF/BMP) whose pixel content this
// package never inspects.
type Picture struct {
	Type        Type
	MIME        MIME
	Description string
	Data        []byte
}

// extToMIME maps the three-letter image-format codes used by ID3v2.2 PIC
// frames to a MIME type; mimeToExt maps back.
var extToMIME = map[string]string{
	"JPG": MIMEJPEG,
	"PNG": MIMEPNG,
	"BMP": MIMEBMP,
	"GIF": MIMEGIF,
}

var mimeToExt = map[string]string{
	MIMEJPEG: "JPG",
	MIMEPNG:  "PNG",
	MIMEBMP:  "BMP",
	MIMEGIF:  "GIF",
}

// ExtForMIME returns the v2.2 three-letter image format code for a MIME
// type, or "" if unrecognised (callers fall back to an Unknown variant).
func ExtForMIME(mime string) string { return mimeToExt[mime] }

// MIMEForExt is the inverse of ExtForMIME.
func MIMEForExt(ext string) (string, bool) {
	m, ok := extToMIME[ext]
	return m, ok
}

// SniffMIME detects PNG, JPEG, GIF and BMP from their magic bytes, used
// when a dialect (like MP4 ilst's "implicit" covr atom) doesn't carry an
// explicit type code.
func SniffMIME(b []byte) string {
	switch {
	case len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n":
		return MIMEPNG
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return MIMEJPEG
	case len(b) >= 6 && (string(b[:6]) == "GIF87a" || string(b[:6]) == "GIF89a"):
		return MIMEGIF
	case len(b) >= 2 && b[0] == 'B' && b[1] == 'M':
		return MIMEBMP
	}
	return ""
}
