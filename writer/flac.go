package writer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/container/flacblock"
	"github.com/go-tagfmt/tagfmt/picture"
	"github.com/go-tagfmt/tagfmt/vorbis"
)

// ChainLen reports the total on-disk byte length of a FLAC metadata block
// chain (the "fLaC" marker plus every block's 4-byte header and payload).
func ChainLen(blocks []flacblock.Block) int64 {
	n := int64(len(flacblock.StreamMarker))
	for _, b := range blocks {
		n += 4 + int64(len(b.Data))
	}
	return n
}

// WriteFLACComments rewrites the VORBIS_COMMENT block (and every PICTURE
// block) of a FLAC stream whose metadata block chain starts at offset in
// f. If the new comments fit within an existing PADDING block's budget,
// the chain's total length -- and therefore every byte after it -- is
// left untouched (§4.9's padding-reuse invariant); otherwise the whole
// chain is spliced in at its new length.
func WriteFLACComments(f FileLike, offset int64, comments *vorbis.Comments, pictures []picture.Picture, allocLimit uint64) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	sr := io.NewSectionReader(f, offset, fileLen-offset)
	blocks, err := flacblock.ReadChain(sr, allocLimit)
	if err != nil {
		return fmt.Errorf("writer: reading FLAC block chain: %w", err)
	}
	oldLen := ChainLen(blocks)

	kept := blocks[:0:0]
	for _, b := range blocks {
		if b.Type != flacblock.Picture {
			kept = append(kept, b)
		}
	}
	blocks = kept

	newData := vorbis.Serialize(comments)
	vorbisIdx := -1
	for i, b := range blocks {
		if b.Type == flacblock.VorbisComment {
			vorbisIdx = i
			break
		}
	}

	var newBlocks []flacblock.Block
	if vorbisIdx < 0 {
		newBlocks = append(append([]flacblock.Block(nil), blocks...), flacblock.Block{Type: flacblock.VorbisComment, Data: newData})
	} else if replaced, ok := flacblock.ReplacePadding(blocks, vorbisIdx, newData); ok {
		newBlocks = replaced
	} else {
		newBlocks = append([]flacblock.Block(nil), blocks...)
		newBlocks[vorbisIdx].Data = newData
	}

	for _, p := range pictures {
		newBlocks = append(newBlocks, flacblock.Block{
			Type: flacblock.Picture,
			Data: vorbis.EncodeFlacPictureBlock(p, picture.Information{}),
		})
	}

	var buf bytes.Buffer
	if err := flacblock.WriteChain(&buf, newBlocks); err != nil {
		return err
	}
	return Splice(f, offset, oldLen, buf.Bytes())
}
