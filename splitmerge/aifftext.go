package splitmerge

import (
	"github.com/go-tagfmt/tagfmt/aifftext"
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/tag"
)

// aifftextCompanion preserves round-trip data the generic ItemKey
// vocabulary has no slot for: every annotation past the first (which
// becomes the Comment item), and COMT's structured comments, whose
// timestamp/marker fields don't fit a plain text item.
type aifftextCompanion struct {
	extraAnnotations []string
	comments         []aifftext.Comment
}

func (aifftextCompanion) TagType() string { return "aifftext" }

// SplitAIFFText converts src into the generic model (§4.6, §C7). The
// first annotation becomes the Comment item; any further ones, plus
// COMT's structured comments, are kept verbatim in the Companion so a
// later merge restores them all.
func SplitAIFFText(src *aifftext.Tag) *tag.Tag {
	out := &tag.Tag{TagType: "aifftext"}

	if src.Name != "" {
		out.Set(itemkey.TrackTitle, tag.TextValue(src.Name))
	}
	if src.Author != "" {
		out.Set(itemkey.TrackArtist, tag.TextValue(src.Author))
	}
	if src.Copyright != "" {
		out.Set(itemkey.Copyright, tag.TextValue(src.Copyright))
	}
	if len(src.Annotations) > 0 {
		out.Set(itemkey.Comment, tag.TextValue(src.Annotations[0]))
	}

	var extra []string
	if len(src.Annotations) > 1 {
		extra = src.Annotations[1:]
	}
	if len(extra) > 0 || len(src.Comments) > 0 {
		out.Companion = &aifftextCompanion{extraAnnotations: extra, comments: src.Comments}
	}
	return out
}

// MergeAIFFText converts t back into an aifftext.Tag.
func MergeAIFFText(t *tag.Tag) *aifftext.Tag {
	out := &aifftext.Tag{}

	if it, ok := t.Get(itemkey.TrackTitle); ok {
		out.Name = it.Value.Text
	}
	if it, ok := t.Get(itemkey.TrackArtist); ok {
		out.Author = it.Value.Text
	}
	if it, ok := t.Get(itemkey.Copyright); ok {
		out.Copyright = it.Value.Text
	}
	if it, ok := t.Get(itemkey.Comment); ok {
		out.Annotations = append(out.Annotations, it.Value.Text)
	}
	if companion, ok := t.Companion.(*aifftextCompanion); ok {
		out.Annotations = append(out.Annotations, companion.extraAnnotations...)
		out.Comments = companion.comments
	}
	return out
}
