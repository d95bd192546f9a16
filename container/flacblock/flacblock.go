// Package flacblock reads and writes the FLAC metadata block chain: a
// sequence of 4-byte-header blocks (last-block flag in the high bit of the
// type byte, 24-bit big-endian size) following the "fLaC" stream marker
// (§4.4). Grounded on go-flac's MetaDataBlock.Marshal, as vendored into
// the pack's player client.
package flacblock

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

const StreamMarker = "fLaC"

// BlockType is METADATA_BLOCK_HEADER's 7-bit block type.
type BlockType byte

const (
	StreamInfo BlockType = iota
	Padding
	Application
	SeekTable
	VorbisComment
	CueSheet
	Picture
	blockTypeReserved
)

// Block is one metadata block: its type and raw, undecoded payload.
type Block struct {
	Type    BlockType
	IsLast  bool
	Data    []byte
}

// ReadChain reads the "fLaC" marker and every metadata block following it,
// stopping after (and including) the block with IsLast set.
func ReadChain(r io.Reader, allocLimit uint64) ([]Block, error) {
	marker, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return nil, fmt.Errorf("flacblock: reading stream marker: %w", err)
	}
	if string(marker) != StreamMarker {
		return nil, fmt.Errorf("flacblock: missing %q marker", StreamMarker)
	}

	var blocks []Block
	for {
		header, err := binutil.ReadBytes(r, 4, 0)
		if err != nil {
			return nil, fmt.Errorf("flacblock: reading block header: %w", err)
		}
		isLast := binutil.GetBit(header[0], 7)
		blockType := BlockType(header[0] & 0x7F)
		size := binutil.BEUint24(header[1:4])
		data, err := binutil.ReadBytes(r, uint64(size), allocLimit)
		if err != nil {
			return nil, fmt.Errorf("flacblock: reading block body: %w", err)
		}
		blocks = append(blocks, Block{Type: blockType, IsLast: isLast, Data: data})
		if isLast {
			break
		}
	}
	return blocks, nil
}

// WriteChain serializes the "fLaC" marker followed by blocks, forcing the
// IsLast flag of the final block in the slice (the last-block flag on any
// earlier block is ignored and written false).
func WriteChain(w io.Writer, blocks []Block) error {
	if _, err := w.Write([]byte(StreamMarker)); err != nil {
		return err
	}
	for i, b := range blocks {
		if _, err := w.Write(Marshal(b, i == len(blocks)-1)); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes a single block's 4-byte header plus payload, per
// go-flac's MetaDataBlock.Marshal.
func Marshal(b Block, isFinal bool) []byte {
	var buf bytes.Buffer
	typeByte := byte(b.Type)
	if isFinal {
		typeByte |= 1 << 7
	}
	buf.WriteByte(typeByte)
	sizeField := make([]byte, 3)
	binutil.PutBEUint24(sizeField, uint32(len(b.Data)))
	buf.Write(sizeField)
	buf.Write(b.Data)
	return buf.Bytes()
}

// ReplacePadding returns a copy of blocks with the block at vorbisIndex
// given newVorbisData and the first PADDING block resized to absorb the
// size delta, reusing free space instead of rewriting the whole file when
// it fits (§4.9's FLAC writer invariant). When the new data is no larger
// than the old, ok is always true: the freed bytes go to the padding block
// if there is one, otherwise the chain simply shrinks. When it is larger,
// ok is false unless a padding block exists with room for the growth, and
// the caller must fall back to a full rewrite.
func ReplacePadding(blocks []Block, vorbisIndex int, newVorbisData []byte) (out []Block, ok bool) {
	delta := len(newVorbisData) - len(blocks[vorbisIndex].Data)
	if delta <= 0 {
		out = append([]Block(nil), blocks...)
		out[vorbisIndex].Data = newVorbisData
		paddingIdx := findPadding(out)
		if paddingIdx >= 0 {
			out[paddingIdx].Data = append(out[paddingIdx].Data, make([]byte, -delta)...)
		}
		return out, true
	}
	paddingIdx := findPadding(blocks)
	if paddingIdx < 0 || len(blocks[paddingIdx].Data) < delta {
		return nil, false
	}
	out = append([]Block(nil), blocks...)
	out[vorbisIndex].Data = newVorbisData
	out[paddingIdx].Data = out[paddingIdx].Data[:len(out[paddingIdx].Data)-delta]
	return out, true
}

func findPadding(blocks []Block) int {
	for i, b := range blocks {
		if b.Type == Padding {
			return i
		}
	}
	return -1
}
