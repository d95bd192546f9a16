package id3v2

// Tag is the decoded form of an ID3v2 tag: an ordered list of frames plus
// the header flags that governed how it was read. Lookup is by FrameID
// string since a handful of IDs (invariant 2) are constrained to at most
// one instance while most are repeatable.
type Tag struct {
	Version           Version
	Unsynchronisation bool
	Frames            []frameEntry
}

// New returns an empty v4 tag, the version new tags are written as unless
// the caller overrides it.
func New() *Tag {
	return &Tag{Version: V4}
}

// All returns every frame entry matching id, in insertion order.
func (t *Tag) All(id string) []frameEntry {
	var out []frameEntry
	for _, e := range t.Frames {
		if e.ID.String() == id {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first frame entry matching id, or false if none exists.
func (t *Tag) First(id string) (frameEntry, bool) {
	for _, e := range t.Frames {
		if e.ID.String() == id {
			return e, true
		}
	}
	return frameEntry{}, false
}

// Add appends a frame, enforcing invariant 1 (outdated v2.2 IDs are
// read-only: never constructible here, only decodable by readFrames) and
// invariant 2: inserting a singleton-only ID replaces any existing
// instance rather than creating a duplicate.
func (t *Tag) Add(id FrameID, flags FrameFlags, body Frame) error {
	if id.IsOutdated() {
		return ErrBadFrameId
	}
	t.add(id, flags, body)
	return nil
}

// add appends a frame without Add's outdated-ID rejection, for readFrames
// decoding an ID3v2.2 tag: its 3-char IDs are valid to read, only invalid
// to construct fresh through the public Add.
func (t *Tag) add(id FrameID, flags FrameFlags, body Frame) {
	name := id.String()
	if MustBeUnique(name) {
		t.removeAll(name)
	}
	if name == "APIC" || name == "PIC" {
		if ap, ok := body.(AttachedPictureFrame); ok {
			t.enforcePictureUniqueness(ap.PictureType)
		}
	}
	t.Frames = append(t.Frames, frameEntry{ID: id, Flags: flags, Body: body})
}

// enforcePictureUniqueness drops any existing picture frame sharing
// newType when newType is Icon (1) or OtherIcon (2): invariant 3 allows at
// most one of each across the tag.
func (t *Tag) enforcePictureUniqueness(newType byte) {
	if newType != 1 && newType != 2 {
		return
	}
	kept := t.Frames[:0]
	for _, e := range t.Frames {
		if ap, ok := e.Body.(AttachedPictureFrame); ok && ap.PictureType == newType {
			continue
		}
		kept = append(kept, e)
	}
	t.Frames = kept
}

func (t *Tag) removeAll(id string) {
	kept := t.Frames[:0]
	for _, e := range t.Frames {
		if e.ID.String() != id {
			kept = append(kept, e)
		}
	}
	t.Frames = kept
}

// RemoveAll deletes every frame with the given ID, returning the count
// removed.
func (t *Tag) RemoveAll(id string) int {
	before := len(t.Frames)
	t.removeAll(id)
	return before - len(t.Frames)
}

// Pictures returns every decoded APIC/PIC frame in the tag.
func (t *Tag) Pictures() []AttachedPictureFrame {
	var out []AttachedPictureFrame
	for _, e := range t.Frames {
		if ap, ok := e.Body.(AttachedPictureFrame); ok {
			out = append(out, ap)
		}
	}
	return out
}
