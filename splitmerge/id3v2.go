package splitmerge

import (
	"github.com/go-tagfmt/tagfmt/id3v2"
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/picture"
	"github.com/go-tagfmt/tagfmt/tag"
)

// id3v2FrameToItem maps a well-known text-frame FrameID to its generic
// ItemKey (§4.3, §C6).
var id3v2FrameToItem = map[string]itemkey.ItemKey{
	"TIT2": itemkey.TrackTitle, "TIT3": itemkey.TrackSubtitle,
	"TPE1": itemkey.TrackArtist, "TPE2": itemkey.AlbumArtist,
	"TALB": itemkey.AlbumTitle, "TCOM": itemkey.Composer,
	"TPE3": itemkey.Conductor, "TPE4": itemkey.Remixer,
	"TCON": itemkey.Genre, "TLAN": itemkey.Language,
	"TPUB": itemkey.Label, "TSRC": itemkey.ISRC,
	"TDRC": itemkey.RecordingDate, "TDOR": itemkey.OriginalReleaseDate,
	"TDRL": itemkey.ReleaseDate, "TOFN": itemkey.OriginalFileName,
	"TOPE": itemkey.OriginalArtist, "TOAL": itemkey.OriginalAlbum,
	"TOLY": itemkey.OriginalLyricist, "TCOP": itemkey.Copyright,
	"TENC": itemkey.Encoder, "TSSE": itemkey.EncoderSettings,
	"TBPM": itemkey.BPM, "TKEY": itemkey.InitialKey,
	"TCMP": itemkey.Compilation, "TIT1": itemkey.ContentGroup,
	"TEXT": itemkey.Lyricist, "TMOO": itemkey.Mood,
	"MVNM": itemkey.MovementName, "MVIN": itemkey.MovementNumber,
	"GRP1": itemkey.GroupID,
	"TSOP": itemkey.ArtistSort, "TSO2": itemkey.AlbumArtistSort,
	"TSOC": itemkey.ComposerSort, "TSOT": itemkey.TitleSort,
	"TSOA": itemkey.AlbumSort,
}

var itemToID3v2Frame = invertItemKeyMap(id3v2FrameToItem)

// id3v2Companion preserves every frame split_tag had no generic mapping
// for (COMM/USLT frames that carry a description, PRIV, UFIDs of other
// owners, POPM, TIPL, and any frame ID or body type it doesn't recognise).
type id3v2Companion struct {
	frames []frameEntryCopy
}

// frameEntryCopy avoids exporting id3v2's unexported frameEntry type
// across the package boundary; it's a minimal copy sufficient for a
// round trip.
type frameEntryCopy struct {
	id    string
	flags id3v2.FrameFlags
	body  id3v2.Frame
}

func (id3v2Companion) TagType() string { return "id3v2" }

// SplitID3v2 converts tag into the generic model. TRCK/TPOS are decoded
// via P7's number-pair rule; every COMM/USLT frame without a description
// becomes a Comment/Lyrics item carrying its language, while those with a
// description (and every frame without a mapping) are kept in the
// Companion.
func SplitID3v2(src *id3v2.Tag) *tag.Tag {
	out := &tag.Tag{TagType: "id3v2"}
	var companion []frameEntryCopy

	for _, e := range src.Frames {
		name := e.ID.String()
		switch body := e.Body.(type) {
		case id3v2.TextFrame:
			if name == "TRCK" {
				if len(body.Values) > 0 {
					p := tag.ParseNumberPair(body.Values[0])
					out.Set(itemkey.TrackNumber, tag.TextValue(p.String()))
				}
				continue
			}
			if name == "TPOS" {
				if len(body.Values) > 0 {
					p := tag.ParseNumberPair(body.Values[0])
					out.Set(itemkey.DiscNumber, tag.TextValue(p.String()))
				}
				continue
			}
			if key, ok := id3v2FrameToItem[name]; ok && len(body.Values) > 0 {
				out.Set(key, tag.TextValue(body.Values[0]))
				continue
			}
		case id3v2.CommentFrame:
			if name == "COMM" && body.Description == "" {
				out.Add(tag.TagItem{Key: itemkey.Comment, Value: tag.TextValue(body.Text), Lang: body.Language})
				continue
			}
			if name == "USLT" && body.Description == "" {
				out.Add(tag.TagItem{Key: itemkey.Lyrics, Value: tag.TextValue(body.Text), Lang: body.Language})
				continue
			}
		case id3v2.AttachedPictureFrame:
			out.AddPicture(picture.Picture{
				Type:        picture.Type(body.PictureType),
				MIME:        picture.KnownMIME(body.MIME),
				Description: body.Description,
				Data:        body.Data,
			})
			continue
		case id3v2.UserTextFrame:
			out.Add(tag.TagItem{Key: itemkey.NewUnknown("TXXX:" + body.Description), Value: tag.TextValue(joinValues(body.Values)), Description: body.Description})
			continue
		case id3v2.UniqueFileIdentifierFrame:
			if body.Owner == id3v2.MusicBrainzOwner {
				out.Set(itemkey.MusicBrainzRecordingId, tag.BinaryValue(body.Identifier))
				continue
			}
		}
		companion = append(companion, frameEntryCopy{id: name, flags: e.Flags, body: e.Body})
	}

	if len(companion) > 0 {
		out.Companion = &id3v2Companion{frames: companion}
	}
	return out
}

func joinValues(values []string) string {
	if len(values) == 0 {
		return ""
	}
	s := values[0]
	for _, v := range values[1:] {
		s += "\x00" + v
	}
	return s
}

// MergeID3v2 converts t back into an id3v2.Tag, writing well-known items
// as their matching frame and splicing any preserved companion frames
// back in verbatim.
func MergeID3v2(t *tag.Tag, version id3v2.Version) *id3v2.Tag {
	out := &id3v2.Tag{Version: version}

	for _, it := range t.Items {
		switch it.Key {
		case itemkey.TrackNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			_ = out.Add(id3v2.MustValid("TRCK"), id3v2.FrameFlags{}, id3v2.TextFrame{Values: []string{p.String()}})
			continue
		case itemkey.DiscNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			_ = out.Add(id3v2.MustValid("TPOS"), id3v2.FrameFlags{}, id3v2.TextFrame{Values: []string{p.String()}})
			continue
		case itemkey.Comment:
			_ = out.Add(id3v2.MustValid("COMM"), id3v2.FrameFlags{}, id3v2.CommentFrame{Language: langOrDefault(it.Lang), Text: it.Value.Text})
			continue
		case itemkey.Lyrics:
			_ = out.Add(id3v2.MustValid("USLT"), id3v2.FrameFlags{}, id3v2.CommentFrame{Language: langOrDefault(it.Lang), Text: it.Value.Text})
			continue
		case itemkey.MusicBrainzRecordingId:
			_ = out.Add(id3v2.MustValid("UFID"), id3v2.FrameFlags{}, id3v2.UniqueFileIdentifierFrame{Owner: id3v2.MusicBrainzOwner, Identifier: it.Value.Binary})
			continue
		}
		if name, ok := itemToID3v2Frame[it.Key]; ok {
			_ = out.Add(id3v2.MustValid(name), id3v2.FrameFlags{}, id3v2.TextFrame{Values: []string{it.Value.Text}})
			continue
		}
		if _, isUnknown := it.Key.IsUnknown(); isUnknown && it.Description != "" {
			_ = out.Add(id3v2.MustValid("TXXX"), id3v2.FrameFlags{}, id3v2.UserTextFrame{Description: it.Description, Values: []string{it.Value.Text}})
		}
	}

	for _, p := range t.Pictures {
		_ = out.Add(id3v2.MustValid("APIC"), id3v2.FrameFlags{}, id3v2.AttachedPictureFrame{
			MIME: p.MIME.String(), PictureType: byte(p.Type), Description: p.Description, Data: p.Data,
		})
	}

	if companion, ok := t.Companion.(*id3v2Companion); ok {
		for _, f := range companion.frames {
			_ = out.Add(id3v2.MustValid(f.id), f.flags, f.body)
		}
	}
	return out
}

func langOrDefault(lang string) string {
	if lang == "" {
		return "XXX"
	}
	return lang
}
