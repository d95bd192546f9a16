package splitmerge

import (
	"strconv"
	"strings"

	"github.com/go-tagfmt/tagfmt/ape"
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/picture"
	"github.com/go-tagfmt/tagfmt/tag"
)

// apeKeyToItem maps an APEv2 item key (case-insensitive) to its generic
// ItemKey, following the de-facto key names APE/WavPack/Musepack taggers
// use (§4.5, §C6).
var apeKeyToItem = map[string]itemkey.ItemKey{
	"TITLE": itemkey.TrackTitle, "ARTIST": itemkey.TrackArtist,
	"ALBUM": itemkey.AlbumTitle, "ALBUM ARTIST": itemkey.AlbumArtist,
	"COMPOSER": itemkey.Composer, "GENRE": itemkey.Genre,
	"COMMENT": itemkey.Comment, "YEAR": itemkey.RecordingDate,
	"COPYRIGHT": itemkey.Copyright, "PUBLISHER": itemkey.Label,
	"ISRC": itemkey.ISRC, "LANGUAGE": itemkey.Language,
	"MEDIA": itemkey.Label, "BARCODE": itemkey.Barcode,
	"CATALOGNUMBER": itemkey.CatalogNumber, "LYRICS": itemkey.Lyrics,
	"CONDUCTOR": itemkey.Conductor, "MOOD": itemkey.Mood,
}

var itemToApeKey = invertItemKeyMap(apeKeyToItem)

type apeCompanion struct {
	unmapped []ape.Item
}

func (apeCompanion) TagType() string { return "ape" }

// SplitAPE converts tag into the generic model (§C7). "Track"/"Disc" items
// carry a "current/total" value directly, matching their on-disk form.
func SplitAPE(src *ape.Tag) *tag.Tag {
	out := &tag.Tag{TagType: "ape"}
	var unmapped []ape.Item

	for _, it := range src.Items {
		upper := strings.ToUpper(it.Key)
		switch upper {
		case "TRACK":
			if len(it.Values) > 0 {
				out.Set(itemkey.TrackNumber, tag.TextValue(tag.ParseNumberPair(it.Values[0]).String()))
			}
			continue
		case "DISC", "DISK":
			if len(it.Values) > 0 {
				out.Set(itemkey.DiscNumber, tag.TextValue(tag.ParseNumberPair(it.Values[0]).String()))
			}
			continue
		case "COVER ART (FRONT)", "COVER ART (BACK)":
			out.AddPicture(decodeApeCoverArt(it, upper == "COVER ART (BACK)"))
			continue
		}

		if key, ok := apeKeyToItem[upper]; ok && len(it.Values) > 0 {
			out.Set(key, tag.TextValue(strings.Join(it.Values, "; ")))
			continue
		}
		unmapped = append(unmapped, it)
	}

	if len(unmapped) > 0 {
		out.Companion = &apeCompanion{unmapped: unmapped}
	}
	return out
}

// decodeApeCoverArt splits an APE cover-art item's binary value into its
// NUL-terminated filename prefix and the image bytes (§4.5's convention,
// shared with the format's official spec addendum).
func decodeApeCoverArt(it ape.Item, isBack bool) picture.Picture {
	idx := indexByte(it.Binary, 0)
	var data []byte
	if idx >= 0 {
		data = it.Binary[idx+1:]
	} else {
		data = it.Binary
	}
	typ := picture.CoverFront
	if isBack {
		typ = picture.CoverBack
	}
	mime := picture.SniffMIME(data)
	return picture.Picture{Type: typ, MIME: picture.KnownMIME(mime), Data: data}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// MergeAPE converts t back into an ape.Tag.
func MergeAPE(t *tag.Tag, version int) *ape.Tag {
	out := &ape.Tag{Version: version}

	for _, it := range t.Items {
		switch it.Key {
		case itemkey.TrackNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			_ = out.Add(ape.Item{Key: "Track", Type: ape.ItemUTF8, Values: []string{p.String()}})
			continue
		case itemkey.DiscNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			_ = out.Add(ape.Item{Key: "Disc", Type: ape.ItemUTF8, Values: []string{p.String()}})
			continue
		}
		if key, ok := itemToApeKey[it.Key]; ok {
			_ = out.Add(ape.Item{Key: apeDisplayKey(key), Type: ape.ItemUTF8, Values: []string{it.Value.Text}})
			continue
		}
		if name, isUnknown := it.Key.IsUnknown(); isUnknown {
			_ = out.Add(ape.Item{Key: name, Type: ape.ItemUTF8, Values: []string{it.Value.Text}})
		}
	}

	for i, p := range t.Pictures {
		key := "Cover Art (Front)"
		if p.Type == picture.CoverBack {
			key = "Cover Art (Back)"
		} else if i > 0 {
			key = "Cover Art (Front)"
		}
		binary := append([]byte("cover"+strconv.Itoa(i)+"\x00"), p.Data...)
		_ = out.Add(ape.Item{Key: key, Type: ape.ItemBinary, Binary: binary})
	}

	if companion, ok := t.Companion.(*apeCompanion); ok {
		for _, it := range companion.unmapped {
			_ = out.Add(it)
		}
	}
	return out
}

// apeDisplayKey title-cases a well-known map key back into APE's
// conventional mixed-case item key form ("Title", "Album Artist", ...).
func apeDisplayKey(key string) string {
	words := strings.Fields(strings.ToLower(key))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
