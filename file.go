package tagfmt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/aifftext"
	"github.com/go-tagfmt/tagfmt/ape"
	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/container/ebml"
	"github.com/go-tagfmt/tagfmt/container/flacblock"
	"github.com/go-tagfmt/tagfmt/container/ogg"
	"github.com/go-tagfmt/tagfmt/container/riff"
	"github.com/go-tagfmt/tagfmt/id3v1"
	"github.com/go-tagfmt/tagfmt/id3v2"
	"github.com/go-tagfmt/tagfmt/matroska"
	"github.com/go-tagfmt/tagfmt/mp4ilst"
	"github.com/go-tagfmt/tagfmt/picture"
	"github.com/go-tagfmt/tagfmt/probe"
	"github.com/go-tagfmt/tagfmt/riffinfo"
	"github.com/go-tagfmt/tagfmt/splitmerge"
	"github.com/go-tagfmt/tagfmt/tag"
	"github.com/go-tagfmt/tagfmt/vorbis"
	"github.com/go-tagfmt/tagfmt/writer"
)

// tagSlot is one tag type TaggedFile found on disk: the generic view plus
// closures that know how to splice it back in or strip it out, capturing
// whatever positional bookkeeping (byte offsets, container paths, vendor
// strings) the read step collected so Save never re-walks the container.
type tagSlot struct {
	tagType TagType
	tag     *tag.Tag
	save    func(f FileLike, t *tag.Tag, opts config.WriteOptions) error
	remove  func(f FileLike) error
}

// TaggedFile is the handle ReadFrom returns: a probed container plus every
// tag dialect found on it, ready for Save without re-probing (§4.11).
type TaggedFile struct {
	f        FileLike
	fileType FileType
	slots    []tagSlot
	primary  TagType
}

// FileType reports the container kind Probe identified.
func (tf *TaggedFile) FileType() FileType { return tf.fileType }

// Tag returns the generic view of the primary tag, or nil if the file
// carries no tag at all.
func (tf *TaggedFile) Tag() *tag.Tag {
	return tf.TagFor(tf.primary)
}

// PrimaryTagType reports which tag type Tag() exposes: ID3v2 over ID3v1
// for MPEG/AAC/AIFF/WAV, APE over ID3v1 for APE/WavPack/Musepack (§4.11).
func (tf *TaggedFile) PrimaryTagType() TagType { return tf.primary }

// Tags reports every tag type actually present, in primary-first order
// (§4.12).
func (tf *TaggedFile) Tags() []TagType {
	out := make([]TagType, 0, len(tf.slots))
	for _, s := range tf.slots {
		out = append(out, s.tagType)
	}
	return out
}

// TagFor returns the generic view of a specific tag type, or nil if that
// type isn't present on this file.
func (tf *TaggedFile) TagFor(t TagType) *tag.Tag {
	for _, s := range tf.slots {
		if s.tagType == t {
			return s.tag
		}
	}
	return nil
}

// ReadFrom probes f, dispatches to the container walker and dialect codec
// its FileType implies, and returns a TaggedFile wrapping every tag found
// (§4.11).
func ReadFrom(f FileLike, opts config.ParseOptions) (*TaggedFile, error) {
	res, err := probe.Guess(f, "", opts)
	if err != nil {
		return nil, err
	}
	ft, ok := fileTypeByName(res.FileType)
	if !ok {
		return nil, &ErrUnknownFormat{Detail: res.FileType}
	}

	tf := &TaggedFile{f: f, fileType: ft}
	if !opts.ReadTags {
		return tf, nil
	}

	switch ft {
	case MPEG, AAC:
		err = tf.readMPEGFamily(opts)
	case MP4:
		err = tf.readMP4(opts)
	case FLAC:
		err = tf.readFLAC(res.Offset, opts)
	case OggVorbis, OggOpus, OggSpeex, OggFLAC:
		err = tf.readOgg(ft, res.Offset, opts)
	case WAV:
		err = tf.readWAVFamily(opts)
	case AIFF:
		err = tf.readAIFFFamily(opts)
	case APE, WavPack, Musepack:
		err = tf.readAPEFamily(opts)
	case DSF:
		err = tf.readDSF(opts)
	case Matroska:
		err = tf.readMatroska(opts)
	case DSDIFF:
		return tf, nil // recognised by Probe, but no dialect codec targets it (§5, known gap)
	default:
		return nil, &ErrUnknownFormat{Detail: res.FileType}
	}
	if err != nil {
		return nil, err
	}

	if len(tf.slots) > 0 {
		tf.primary = tf.slots[0].tagType
	}
	return tf, nil
}

func fileTypeByName(name string) (FileType, bool) {
	for _, ft := range []FileType{
		MPEG, AAC, MP4, FLAC, OggVorbis, OggOpus, OggSpeex, OggFLAC,
		WAV, AIFF, APE, WavPack, Musepack, DSF, DSDIFF, Matroska,
	} {
		if ft.name == name {
			return ft, true
		}
	}
	return Unknown, false
}

// Save merges every slot's generic Tag back into its dialect form and
// splices it into the handle ReadFrom was given. With opts.RemoveOthers,
// every non-primary slot is stripped instead of rewritten (§4.11).
func (tf *TaggedFile) Save(opts config.WriteOptions) error {
	for _, s := range tf.slots {
		if opts.RemoveOthers && s.tagType != tf.primary {
			if err := s.remove(tf.f); err != nil {
				return fmt.Errorf("tagfmt: removing %s tag: %w", s.tagType, err)
			}
			continue
		}
		if err := s.save(tf.f, s.tag, opts); err != nil {
			return fmt.Errorf("tagfmt: saving %s tag: %w", s.tagType, err)
		}
	}
	return nil
}

func id3v2ReadOptions(opts config.ParseOptions) id3v2.ReadOptions {
	return id3v2.ReadOptions{
		Strict:     opts.ParsingMode == config.Strict,
		Relaxed:    opts.ParsingMode == config.Relaxed,
		AllocLimit: config.Current().AllocationLimit,
	}
}

// readTrailingID3v1 peeks the last 128 bytes of the file, returning the
// decoded tag and true if a "TAG"-prefixed trailer is present there.
func (tf *TaggedFile) readTrailingID3v1() (*id3v1.Tag, bool, error) {
	fileLen, err := tf.f.Len()
	if err != nil {
		return nil, false, err
	}
	if fileLen < id3v1.Size {
		return nil, false, nil
	}
	buf := make([]byte, id3v1.Size)
	if _, err := tf.f.ReadAt(buf, fileLen-id3v1.Size); err != nil && err != io.EOF {
		return nil, false, err
	}
	if string(buf[0:3]) != "TAG" {
		return nil, false, nil
	}
	t, err := id3v1.Parse(buf)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (tf *TaggedFile) addID3v1TailSlot(v1 *id3v1.Tag) {
	tf.slots = append(tf.slots, tagSlot{
		tagType: TagID3v1,
		tag:     splitmerge.SplitID3v1(v1),
		save: func(f FileLike, t *tag.Tag, opts config.WriteOptions) error {
			return writer.WriteID3v1AtTail(f, splitmerge.MergeID3v1(t), true)
		},
		remove: writer.RemoveID3v1AtTail,
	})
}

// readMPEGFamily reads MP3 (MPEG) and raw AAC/ADTS streams: an optional
// ID3v2 tag at the head, an optional ID3v1 trailer at the tail (§4.7,
// §4.12). ID3v2 is pushed first so it becomes the primary tag whenever
// both are present.
func (tf *TaggedFile) readMPEGFamily(opts config.ParseOptions) error {
	size, present, err := writer.DetectID3v2Size(tf.f, config.Current().AllocationLimit)
	if err != nil {
		return err
	}
	if present {
		sr := io.NewSectionReader(tf.f, 0, size)
		v2, _, err := id3v2.ReadTag(sr, id3v2ReadOptions(opts))
		if err != nil {
			return err
		}
		oldSize := size
		tf.slots = append(tf.slots, tagSlot{
			tagType: TagID3v2,
			tag:     splitmerge.SplitID3v2(v2),
			save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
				return writer.WriteID3v2AtHead(f, splitmerge.MergeID3v2(t, v2.Version), oldSize, wopts)
			},
			remove: func(f FileLike) error {
				return writer.RemoveID3v2AtHead(f, oldSize)
			},
		})
	}

	v1, hadV1, err := tf.readTrailingID3v1()
	if err != nil {
		return err
	}
	if hadV1 {
		tf.addID3v1TailSlot(v1)
	}
	return nil
}

// readMP4 reads the moov/udta/meta/ilst chain MP4/M4A files carry their
// single tag in (§4.2).
func (tf *TaggedFile) readMP4(opts config.ParseOptions) error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	path, err := writer.LocateIlst(tf.f, fileLen)
	if err != nil {
		return err
	}
	start, end := path.IlstBounds()
	ilstTag, err := mp4ilst.Parse(tf.f, start, end)
	if err != nil {
		return err
	}
	tf.slots = append(tf.slots, tagSlot{
		tagType: TagMP4Ilst,
		tag:     splitmerge.SplitMP4Ilst(ilstTag),
		save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
			return writer.WriteMP4Ilst(f, path, splitmerge.MergeMP4Ilst(t))
		},
		remove: func(f FileLike) error {
			return writer.WriteMP4Ilst(f, path, &mp4ilst.Tag{})
		},
	})
	return nil
}

// readFLAC reads the VORBIS_COMMENT and every PICTURE block of a FLAC
// stream's metadata block chain (§4.4). Pictures are carried as their own
// blocks, never as base64 METADATA_BLOCK_PICTURE fields, so the generic
// Tag's picture list is attached after Split and stripped again before
// Merge to avoid double-encoding them back into the comment block.
func (tf *TaggedFile) readFLAC(offset int64, opts config.ParseOptions) error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	allocLimit := config.Current().AllocationLimit
	sr := io.NewSectionReader(tf.f, offset, fileLen-offset)
	blocks, err := flacblock.ReadChain(sr, allocLimit)
	if err != nil {
		return err
	}

	var comments *vorbis.Comments
	var pictures []picture.Picture
	for _, b := range blocks {
		switch b.Type {
		case flacblock.VorbisComment:
			comments, err = vorbis.Parse(b.Data, allocLimit)
			if err != nil {
				return err
			}
		case flacblock.Picture:
			p, err := vorbis.DecodeFlacPictureBlock(b.Data, allocLimit)
			if err != nil {
				return err
			}
			pictures = append(pictures, p)
		}
	}
	if comments == nil {
		return nil
	}

	generic := splitmerge.SplitVorbisComments(comments)
	generic.Pictures = pictures
	vendor := comments.Vendor

	tf.slots = append(tf.slots, tagSlot{
		tagType: TagVorbisComments,
		tag:     generic,
		save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
			pics := t.Pictures
			textOnly := *t
			textOnly.Pictures = nil
			merged := splitmerge.MergeVorbisComments(&textOnly, vendor)
			return writer.WriteFLACComments(f, offset, merged, pics, allocLimit)
		},
		remove: func(f FileLike) error {
			return writer.WriteFLACComments(f, offset, &vorbis.Comments{Vendor: vendor}, nil, allocLimit)
		},
	})
	return nil
}

// readOgg reads the comment-header packet (logical packet index 1) of an
// Ogg Vorbis/Opus/Speex/FLAC stream, stripping whichever codec-specific
// framing that packet carries before handing the bare vendor/fields
// stream to vorbis.Parse (§4.8). OggFLAC's comment packet is itself
// shaped like a native FLAC metadata block; only the common case where it
// occupies header-packet slot 1 is handled, matching the same
// best-effort posture Probe already takes for OggFLAC disambiguation.
func (tf *TaggedFile) readOgg(ft FileType, offset int64, opts config.ParseOptions) error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}

	wantPackets := 2
	if ft == OggVorbis {
		wantPackets = 3
	}

	sr := io.NewSectionReader(tf.f, offset, fileLen-offset)
	packets, _, err := ogg.ReadPackets(sr, wantPackets)
	if err != nil {
		return err
	}
	raw := packets[1]

	var body []byte
	var flacIsLast bool
	switch ft {
	case OggVorbis:
		if len(raw) < 7 || raw[0] != 0x03 || string(raw[1:7]) != "vorbis" {
			return fmt.Errorf("tagfmt: malformed vorbis comment header packet")
		}
		body = raw[7:]
	case OggOpus:
		if len(raw) < 8 || string(raw[0:8]) != "OpusTags" {
			return fmt.Errorf("tagfmt: malformed opus comment header packet")
		}
		body = raw[8:]
	case OggSpeex:
		body = raw
	case OggFLAC:
		blk, err := decodeOggFLACMetadataPacket(raw)
		if err != nil || blk.Type != flacblock.VorbisComment {
			return nil // best-effort: comment block isn't where this layout expects it
		}
		body = blk.Data
		flacIsLast = blk.IsLast
	}

	allocLimit := config.Current().AllocationLimit
	comments, err := vorbis.Parse(body, allocLimit)
	if err != nil {
		return err
	}
	vendor := comments.Vendor

	tf.slots = append(tf.slots, tagSlot{
		tagType: TagVorbisComments,
		tag:     splitmerge.SplitVorbisComments(comments),
		save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
			newBody := vorbis.Serialize(splitmerge.MergeVorbisComments(t, vendor))
			var framed []byte
			switch ft {
			case OggVorbis:
				framed = append([]byte{0x03}, append([]byte("vorbis"), newBody...)...)
			case OggOpus:
				framed = append([]byte("OpusTags"), newBody...)
			case OggSpeex:
				framed = newBody
			case OggFLAC:
				framed = flacblock.Marshal(flacblock.Block{Type: flacblock.VorbisComment, Data: newBody}, flacIsLast)
			}
			return writer.WriteOggComments(f, offset, wantPackets, framed)
		},
		remove: func(f FileLike) error {
			return &ErrUnsupportedTag{Container: ft.String(), TagType: string(TagVorbisComments)}
		},
	})
	return nil
}

// decodeOggFLACMetadataPacket parses an Ogg FLAC header packet shaped like
// a native FLAC metadata block: a 4-byte header (top bit the last-block
// flag, low 7 bits the block type, then a 24-bit big-endian length)
// followed by the payload.
func decodeOggFLACMetadataPacket(pkt []byte) (flacblock.Block, error) {
	if len(pkt) < 4 {
		return flacblock.Block{}, fmt.Errorf("tagfmt: short oggflac metadata packet")
	}
	isLast := pkt[0]&0x80 != 0
	typ := flacblock.BlockType(pkt[0] &^ 0x80)
	length := int(pkt[1])<<16 | int(pkt[2])<<8 | int(pkt[3])
	if 4+length > len(pkt) {
		return flacblock.Block{}, fmt.Errorf("tagfmt: oggflac metadata block length exceeds packet")
	}
	return flacblock.Block{Type: typ, IsLast: isLast, Data: pkt[4 : 4+length]}, nil
}

// readWAVFamily reads a WAV file's two independently addressable tag
// types: a "LIST"/"INFO" chunk and a plain "ID3 "/"id3 " chunk (§4.6,
// §4.12). ID3v2 is pushed first so it becomes primary whenever both
// coexist.
func (tf *TaggedFile) readWAVFamily(opts config.ParseOptions) error {
	if err := tf.readChunkID3v2(riff.LittleEndian, opts); err != nil {
		return err
	}
	return tf.readRiffInfo()
}

// readAIFFFamily mirrors readWAVFamily for AIFF's big-endian chunk
// layout, coexisting with the NAME/AUTH/(c) /ANNO text chunks.
func (tf *TaggedFile) readAIFFFamily(opts config.ParseOptions) error {
	if err := tf.readChunkID3v2(riff.BigEndian, opts); err != nil {
		return err
	}
	return tf.readAiffText()
}

func (tf *TaggedFile) readRiffInfo() error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	sr := io.NewSectionReader(tf.f, 12, fileLen-12)
	w := riff.NewWalker(sr, riff.LittleEndian)
	for {
		c, err := w.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c.ID != "LIST" || c.Size < 4 {
			continue
		}
		payload, err := w.ReadPayload(config.Current().AllocationLimit)
		if err != nil {
			return err
		}
		if string(payload[0:4]) != riffinfo.ListTypeInfo {
			continue
		}
		rt, err := riffinfo.Parse(payload[4:], config.Current().AllocationLimit)
		if err != nil {
			return err
		}
		tf.slots = append(tf.slots, tagSlot{
			tagType: TagRIFFInfo,
			tag:     splitmerge.SplitRiffInfo(rt),
			save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
				return writer.WriteRiffInfo(f, riffinfo.Serialize(splitmerge.MergeRiffInfo(t)))
			},
			remove: writer.RemoveRiffInfo,
		})
		return nil
	}
}

func (tf *TaggedFile) readAiffText() error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	sr := io.NewSectionReader(tf.f, 12, fileLen-12)
	w := riff.NewWalker(sr, riff.BigEndian)
	at := &aifftext.Tag{}
	found := false
	for {
		c, err := w.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch c.ID {
		case aifftext.ChunkName, aifftext.ChunkAuthor, aifftext.ChunkCopyright, aifftext.ChunkAnnotation, aifftext.ChunkComment:
			payload, err := w.ReadPayload(config.Current().AllocationLimit)
			if err != nil {
				return err
			}
			at.Apply(c.ID, string(payload))
			found = true
		}
	}
	if !found {
		return nil
	}
	tf.slots = append(tf.slots, tagSlot{
		tagType: TagAIFFText,
		tag:     splitmerge.SplitAIFFText(at),
		save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
			return writer.WriteAiffText(f, splitmerge.MergeAIFFText(t).Chunks())
		},
		remove: writer.RemoveAiffText,
	})
	return nil
}

// readChunkID3v2 locates a plain top-level "ID3 "/"id3 " chunk (WAV and
// AIFF both allow either casing on read; opts.UppercaseID3v2Chunk governs
// which one Save writes) and decodes it as an ordinary ID3v2 tag (§4.6,
// §4.12).
func (tf *TaggedFile) readChunkID3v2(endian riff.Endian, opts config.ParseOptions) error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	sr := io.NewSectionReader(tf.f, 12, fileLen-12)
	w := riff.NewWalker(sr, endian)
	for {
		c, err := w.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c.ID != "ID3 " && c.ID != "id3 " {
			continue
		}
		foundID := c.ID
		payload, err := w.ReadPayload(config.Current().AllocationLimit)
		if err != nil {
			return err
		}
		v2, _, err := id3v2.ReadTag(bytes.NewReader(payload), id3v2ReadOptions(opts))
		if err != nil {
			return err
		}
		tf.slots = append(tf.slots, tagSlot{
			tagType: TagID3v2,
			tag:     splitmerge.SplitID3v2(v2),
			save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
				var buf bytes.Buffer
				if err := id3v2.WriteTag(&buf, splitmerge.MergeID3v2(t, v2.Version), wopts); err != nil {
					return err
				}
				newID := "id3 "
				if wopts.UppercaseID3v2Chunk {
					newID = "ID3 "
				}
				if newID != foundID {
					if err := writer.RemoveID3Chunk(f, endian, foundID); err != nil {
						return err
					}
				}
				return writer.WriteID3Chunk(f, endian, newID, buf.Bytes())
			},
			remove: func(f FileLike) error {
				return writer.RemoveID3Chunk(f, endian, foundID)
			},
		})
		return nil
	}
}

// readAPEFamily reads the APE tag of an APE, WavPack or Musepack stream
// plus the ID3v1 block that may follow it at the very end of the file
// (§4.5, §4.12). APE is pushed first so it becomes primary whenever both
// are present.
func (tf *TaggedFile) readAPEFamily(opts config.ParseOptions) error {
	start, totalLen, found, err := writer.LocateAPETag(tf.f)
	if err != nil {
		return err
	}
	if found {
		buf := make([]byte, totalLen)
		if _, err := tf.f.ReadAt(buf, start); err != nil && err != io.EOF {
			return err
		}
		footer, err := ape.ParseFooter(buf[len(buf)-ape.FooterSize:])
		if err != nil {
			return err
		}
		itemsAndFooter := buf
		if footer.HasHeader {
			itemsAndFooter = buf[ape.FooterSize:]
		}
		apeTag, err := ape.Parse(itemsAndFooter, config.Current().AllocationLimit)
		if err != nil {
			return err
		}
		includeHeader := footer.HasHeader
		version := apeTag.Version
		tf.slots = append(tf.slots, tagSlot{
			tagType: TagAPE,
			tag:     splitmerge.SplitAPE(apeTag),
			save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
				return writer.WriteAPETag(f, splitmerge.MergeAPE(t, version), includeHeader)
			},
			remove: writer.RemoveAPETag,
		})
	}

	v1, hadV1, err := tf.readTrailingID3v1()
	if err != nil {
		return err
	}
	if hadV1 {
		tf.addID3v1TailSlot(v1)
	}
	return nil
}

// readDSF reads the trailing ID3v2 chunk a DSF stream's fixed header
// points to, if any (§4.9's DSF writer invariant).
func (tf *TaggedFile) readDSF(opts config.ParseOptions) error {
	pointer, err := writer.DSFMetaPointer(tf.f)
	if err != nil || pointer == 0 {
		return err
	}
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	sr := io.NewSectionReader(tf.f, pointer, fileLen-pointer)
	v2, _, err := id3v2.ReadTag(sr, id3v2ReadOptions(opts))
	if err != nil {
		return err
	}
	tf.slots = append(tf.slots, tagSlot{
		tagType: TagID3v2,
		tag:     splitmerge.SplitID3v2(v2),
		save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
			return writer.WriteDSFID3v2(f, splitmerge.MergeID3v2(t, v2.Version), wopts)
		},
		remove: writer.RemoveDSFID3v2,
	})
	return nil
}

// locatedElement is a top-level EBML element's position, split into its
// own ID+size header length and payload extent, so a later rewrite can
// patch an ancestor's size field without re-walking the tree (§4.10).
type locatedElement struct {
	start        int64
	headerLen    int64
	payloadStart int64
	payloadEnd   int64
	unknownSize  bool
}

// locateTopLevelElement scans sibling elements between start and end for
// the first one whose ID is targetID, without descending into any
// element that isn't itself the target. A sibling with unknown size
// aborts the scan (its true extent can't be determined without decoding
// its payload), matching this module's best-effort posture elsewhere.
func locateTopLevelElement(f FileLike, start, end int64, targetID uint32) (*locatedElement, error) {
	pos := start
	for pos < end {
		sr := io.NewSectionReader(f, pos, end-pos)
		el, err := ebml.ReadElement(sr)
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		headerEnd := pos + int64(el.PayloadSize)
		if el.ID == targetID {
			if el.Unknown {
				return &locatedElement{start: pos, headerLen: int64(el.PayloadSize), payloadStart: headerEnd, payloadEnd: end, unknownSize: true}, nil
			}
			return &locatedElement{start: pos, headerLen: int64(el.PayloadSize), payloadStart: headerEnd, payloadEnd: headerEnd + int64(el.Size)}, nil
		}
		if el.Unknown {
			return nil, nil
		}
		pos = headerEnd + int64(el.Size)
	}
	return nil, nil
}

// readMatroska walks the top-level element run for \Segment, then the
// elements nested directly under it for \Tags, since matroska.Parse only
// decodes an already-located Tags payload (§4.10).
func (tf *TaggedFile) readMatroska(opts config.ParseOptions) error {
	fileLen, err := tf.f.Len()
	if err != nil {
		return err
	}
	seg, err := locateTopLevelElement(tf.f, 0, fileLen, matroska.IDSegment)
	if err != nil || seg == nil {
		return err
	}
	tagsEl, err := locateTopLevelElement(tf.f, seg.payloadStart, seg.payloadEnd, matroska.IDTags)
	if err != nil || tagsEl == nil {
		return err
	}

	payload := make([]byte, tagsEl.payloadEnd-tagsEl.payloadStart)
	if _, err := tf.f.ReadAt(payload, tagsEl.payloadStart); err != nil && err != io.EOF {
		return err
	}
	tags, err := matroska.Parse(payload, config.Current().AllocationLimit)
	if err != nil {
		return err
	}

	const segmentIDLen = 4
	const tagsIDLen = 4
	oldElementLen := tagsEl.payloadEnd - tagsEl.start

	tf.slots = append(tf.slots, tagSlot{
		tagType: TagMatroska,
		tag:     splitmerge.SplitMatroska(tags),
		save: func(f FileLike, t *tag.Tag, wopts config.WriteOptions) error {
			newPayload := matroska.Serialize(splitmerge.MergeMatroska(t))
			newElement := append(encodeEBMLElementHeader(matroska.IDTags, tagsIDLen, uint64(len(newPayload))), newPayload...)
			if err := writer.Splice(f, tagsEl.start, oldElementLen, newElement); err != nil {
				return err
			}
			return patchSegmentSizeIfKnown(f, seg, segmentIDLen, int64(len(newElement))-oldElementLen)
		},
		remove: func(f FileLike) error {
			if err := writer.Splice(f, tagsEl.start, oldElementLen, nil); err != nil {
				return err
			}
			return patchSegmentSizeIfKnown(f, seg, segmentIDLen, -oldElementLen)
		},
	})
	return nil
}

// encodeEBMLElementHeader serializes an element's ID (written at its
// already-known fixed byte width, carrying the VINT marker bit that's
// already folded into id per ebml.ReadElement's convention) followed by
// a freshly minimal-length size VINT.
func encodeEBMLElementHeader(id uint32, idLen int, payloadSize uint64) []byte {
	idBytes := make([]byte, idLen)
	v := id
	for i := idLen - 1; i >= 0; i-- {
		idBytes[i] = byte(v)
		v >>= 8
	}
	return append(idBytes, ebml.WriteVINT(payloadSize, 0)...)
}

// patchSegmentSizeIfKnown adjusts \Segment's own declared size in place
// by delta, reusing its existing size-field byte width, when Segment
// wasn't written with the "unknown size" sentinel (which needs no
// patching at all, being open-ended by definition).
func patchSegmentSizeIfKnown(f FileLike, seg *locatedElement, idLen int, delta int64) error {
	if seg.unknownSize || delta == 0 {
		return nil
	}
	sizeLen := int(seg.headerLen) - idLen
	newSize := uint64(seg.payloadEnd-seg.payloadStart) + uint64(delta)
	maxVal := uint64(1)<<uint(7*sizeLen) - 1
	if newSize > maxVal {
		return &ErrTooMuchData{Detail: "matroska: Segment's size field is too narrow to grow in place"}
	}
	newSizeBytes := ebml.WriteVINT(newSize, sizeLen)
	if _, err := f.Seek(seg.start+int64(idLen), io.SeekStart); err != nil {
		return err
	}
	_, err := f.Write(newSizeBytes)
	return err
}
