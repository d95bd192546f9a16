package splitmerge

import (
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/mp4ilst"
	"github.com/go-tagfmt/tagfmt/tag"
)

// mp4FourCCToItem maps a well-known ilst FourCC to its generic ItemKey
// (§4.2, §C6). trkn/disk/covr are handled separately since they don't
// decode as plain text.
var mp4FourCCToItem = map[string]itemkey.ItemKey{
	"\xa9nam": itemkey.TrackTitle, "\xa9ART": itemkey.TrackArtist,
	"\xa9alb": itemkey.AlbumTitle, "aART": itemkey.AlbumArtist,
	"\xa9wrt": itemkey.Composer, "\xa9gen": itemkey.Genre,
	"\xa9day": itemkey.RecordingDate, "\xa9cmt": itemkey.Comment,
	"\xa9lyr": itemkey.Lyrics, "\xa9grp": itemkey.ContentGroup,
	"cprt": itemkey.Copyright, "\xa9too": itemkey.Encoder,
	"tmpo": itemkey.BPM, "\xa9mvn": itemkey.MovementName,
	"\xa9wrk": itemkey.Work,
	"soar":  itemkey.ArtistSort, "soaa": itemkey.AlbumArtistSort,
	"soco": itemkey.ComposerSort, "sonm": itemkey.TitleSort,
	"soal": itemkey.AlbumSort,
}

var itemToMP4FourCC = invertItemKeyMap(mp4FourCCToItem)

// mp4Companion preserves every ilst atom split_tag couldn't map (cpil
// handled as Compilation below is mapped; freeform "----" atoms and
// unrecognised FourCCs land here).
type mp4Companion struct {
	unmapped []mp4ilst.Atom
}

func (mp4Companion) TagType() string { return "mp4" }

// SplitMP4Ilst converts src into the generic model. trkn/disk decode via
// their packed binary layout into NumberPair text; covr atoms become
// generic pictures.
func SplitMP4Ilst(src *mp4ilst.Tag) *tag.Tag {
	out := &tag.Tag{TagType: "mp4"}
	var unmapped []mp4ilst.Atom

	for _, a := range src.Atoms {
		if a.Ident.FourCC == "" {
			unmapped = append(unmapped, a)
			continue
		}
		switch a.Ident.FourCC {
		case "trkn":
			if len(a.Values) > 0 {
				cur, tot := mp4ilst.TrackNumber(a.Values[0])
				out.Set(itemkey.TrackNumber, tag.TextValue(tag.FromMP4(cur, tot).String()))
			}
			continue
		case "disk":
			if len(a.Values) > 0 {
				cur, tot := mp4ilst.TrackNumber(a.Values[0])
				out.Set(itemkey.DiscNumber, tag.TextValue(tag.FromMP4(cur, tot).String()))
			}
			continue
		case "covr":
			for _, v := range a.Values {
				out.AddPicture(mp4ilst.DecodePicture(v))
			}
			continue
		case "cpil":
			if len(a.Values) > 0 && len(a.Values[0].Data) > 0 && a.Values[0].Data[0] != 0 {
				out.Set(itemkey.Compilation, tag.TextValue("1"))
			}
			continue
		}

		if key, ok := mp4FourCCToItem[a.Ident.FourCC]; ok && len(a.Values) > 0 {
			out.Set(key, tag.TextValue(a.Values[0].Text()))
			continue
		}
		unmapped = append(unmapped, a)
	}

	if len(unmapped) > 0 {
		out.Companion = &mp4Companion{unmapped: unmapped}
	}
	return out
}

// MergeMP4Ilst converts t back into an mp4ilst.Tag.
func MergeMP4Ilst(t *tag.Tag) *mp4ilst.Tag {
	out := &mp4ilst.Tag{}

	for _, it := range t.Items {
		switch it.Key {
		case itemkey.TrackNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			cur, tot := p.MP4Fields()
			out.Set(mp4ilst.AtomIdent{FourCC: "trkn"}, mp4ilst.EncodeTrackNumber(cur, tot))
			continue
		case itemkey.DiscNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			cur, tot := p.MP4Fields()
			out.Set(mp4ilst.AtomIdent{FourCC: "disk"}, mp4ilst.EncodeTrackNumber(cur, tot))
			continue
		case itemkey.Compilation:
			val := byte(0)
			if it.Value.Text == "1" || it.Value.Text == "true" {
				val = 1
			}
			out.Set(mp4ilst.AtomIdent{FourCC: "cpil"}, mp4ilst.AtomData{Type: mp4ilst.TypeBE16, Data: []byte{val}})
			continue
		}
		if fourCC, ok := itemToMP4FourCC[it.Key]; ok {
			out.Set(mp4ilst.AtomIdent{FourCC: fourCC}, mp4ilst.AtomData{Type: mp4ilst.TypeUTF8, Data: []byte(it.Value.Text)})
		}
	}

	for _, p := range t.Pictures {
		out.Add(mp4ilst.AtomIdent{FourCC: "covr"}, mp4ilst.EncodePicture(p))
	}

	if companion, ok := t.Companion.(*mp4Companion); ok {
		for _, a := range companion.unmapped {
			out.Atoms = append(out.Atoms, a)
		}
	}
	return out
}
