package writer

import (
	"io"

	"github.com/go-tagfmt/tagfmt/aifftext"
	"github.com/go-tagfmt/tagfmt/container/riff"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// WriteRiffInfo splices newInfoBody (riffinfo.Serialize's output: the
// "INFO" FourCC followed by its sub-chunks) in as a WAV file's top-level
// "LIST"/"INFO" chunk, replacing any existing one or inserting a new
// chunk immediately before the "data" chunk (or, failing that, at the end
// of the chunk list) (§4.6).
func WriteRiffInfo(f FileLike, newInfoBody []byte) error {
	return spliceOrInsertChunk(f, riff.LittleEndian, "LIST", "INFO", newInfoBody, "data")
}

// WriteAiffText splices the encoded NAME/AUTH/(c) /ANNO/COMT chunks in as
// an AIFF file's top-level text chunks, removing every existing occurrence
// of those five chunk IDs and inserting the new set as a contiguous run
// immediately after the 12-byte FORM/AIFF file header (§4.6).
func WriteAiffText(f FileLike, chunks []aifftext.ChunkValue) error {
	ids := map[string]bool{
		aifftext.ChunkName: true, aifftext.ChunkAuthor: true,
		aifftext.ChunkCopyright: true, aifftext.ChunkAnnotation: true,
		aifftext.ChunkComment: true,
	}
	if err := removeTopLevelChunks(f, riff.BigEndian, ids); err != nil {
		return err
	}

	var body []byte
	for _, c := range chunks {
		body = append(body, encodeChunk(riff.BigEndian, c.ID, []byte(c.Value))...)
	}
	if len(body) == 0 {
		return nil
	}
	return insertChunkBytes(f, riff.BigEndian, 12, body)
}

// RemoveRiffInfo deletes an existing "LIST"/"INFO" chunk, leaving any
// other LIST sub-chunk (e.g. an "adtl" cue-label list) untouched.
func RemoveRiffInfo(f FileLike) error {
	return removeSubtypedChunk(f, riff.LittleEndian, "LIST", "INFO")
}

// RemoveAiffText deletes every existing NAME/AUTH/(c) /ANNO/COMT chunk.
func RemoveAiffText(f FileLike) error {
	ids := map[string]bool{
		aifftext.ChunkName: true, aifftext.ChunkAuthor: true,
		aifftext.ChunkCopyright: true, aifftext.ChunkAnnotation: true,
		aifftext.ChunkComment: true,
	}
	return removeTopLevelChunks(f, riff.BigEndian, ids)
}

// WriteID3Chunk splices tag in as a top-level "ID3 " (or "id3 ", per
// opts.UppercaseID3v2Chunk) chunk, replacing any existing chunk of that
// name or inserting a new one at the end of the chunk list. Used by both
// WAV (RIFF, little-endian) and AIFF (FORM, big-endian) to carry a
// secondary ID3v2 tag alongside their native text chunks (§4.6, §4.12).
func WriteID3Chunk(f FileLike, endian riff.Endian, chunkID string, payload []byte) error {
	return spliceOrInsertChunk(f, endian, chunkID, "", payload, "")
}

// RemoveID3Chunk deletes a top-level "ID3 "/"id3 " chunk if present.
func RemoveID3Chunk(f FileLike, endian riff.Endian, chunkID string) error {
	return removeTopLevelChunks(f, endian, map[string]bool{chunkID: true})
}

// encodeChunk serializes one chunk: its 8-byte FourCC+size header, the
// payload, and a trailing pad byte if the payload length is odd.
func encodeChunk(endian riff.Endian, id string, payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload)+1)
	copy(out[0:4], id)
	putChunkSize(endian, out[4:8], uint32(len(payload)))
	out = append(out, payload...)
	if len(payload)%2 != 0 {
		out = append(out, 0)
	}
	return out
}

func putChunkSize(endian riff.Endian, b []byte, size uint32) {
	if endian == riff.BigEndian {
		binutil.PutBEUint32(b, size)
		return
	}
	binutil.PutLEUint32(b, size)
}

func chunkSize(endian riff.Endian, b []byte) uint32 {
	if endian == riff.BigEndian {
		return binutil.BEUint32(b)
	}
	return binutil.LEUint32(b)
}

// spliceOrInsertChunk replaces the top-level chunk with FourCC id whose
// payload begins with subtype (the "LIST" wrapper's own 4-byte form
// FourCC) with id+newPayload, or -- if none exists -- inserts a new chunk
// of that shape immediately before the first chunk named beforeID (or at
// the end of the chunk list if beforeID never occurs). Only the first 4
// payload bytes of each chunk are ever read, so a multi-gigabyte "data"
// chunk is skipped over, never loaded. An empty subtype matches the
// chunk by FourCC alone, for plain (non-LIST-wrapped) chunks such as a
// top-level "ID3 "/"id3 " chunk.
func spliceOrInsertChunk(f FileLike, endian riff.Endian, id, subtype string, newPayload []byte, beforeID string) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	r := io.NewSectionReader(f, 12, fileLen-12)
	w := riff.NewWalker(r, endian)

	insertPos := int64(-1)
	for {
		c, err := w.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		payloadStart := 12 + w.PayloadOffset()
		headerStart := payloadStart - 8

		if c.ID == id && (subtype == "" || c.Size >= 4) {
			matched := subtype == ""
			if !matched {
				head := make([]byte, 4)
				if _, err := f.ReadAt(head, payloadStart); err != nil && err != io.EOF {
					return err
				}
				matched = string(head) == subtype
			}
			if matched {
				total := int64(8 + c.Size)
				if c.Size%2 != 0 {
					total++
				}
				newChunk := encodeChunk(endian, id, newPayload)
				if err := Splice(f, headerStart, total, newChunk); err != nil {
					return err
				}
				return patchRiffHeaderSize(f, endian, int64(len(newChunk))-total)
			}
		}
		if c.ID == beforeID && insertPos < 0 {
			insertPos = headerStart
		}
	}

	if insertPos < 0 {
		insertPos = fileLen
	}
	return insertChunkBytes(f, endian, insertPos, encodeChunk(endian, id, newPayload))
}

// removeTopLevelChunks deletes every top-level chunk whose FourCC is in
// ids, shrinking the file and patching the outer header's size field.
func removeTopLevelChunks(f FileLike, endian riff.Endian, ids map[string]bool) error {
	for {
		fileLen, err := f.Len()
		if err != nil {
			return err
		}
		r := io.NewSectionReader(f, 12, fileLen-12)
		w := riff.NewWalker(r, endian)
		removed := false
		for {
			c, err := w.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if !ids[c.ID] {
				continue
			}
			headerStart := 12 + w.PayloadOffset() - 8
			total := int64(8 + c.Size)
			if c.Size%2 != 0 {
				total++
			}
			if err := Splice(f, headerStart, total, nil); err != nil {
				return err
			}
			if err := patchRiffHeaderSize(f, endian, -total); err != nil {
				return err
			}
			removed = true
			break
		}
		if !removed {
			return nil
		}
	}
}

// removeSubtypedChunk deletes the top-level chunk named id whose payload
// begins with subtype, leaving any other chunk sharing id but a different
// subtype (e.g. a non-"INFO" "LIST" chunk) alone.
func removeSubtypedChunk(f FileLike, endian riff.Endian, id, subtype string) error {
	for {
		fileLen, err := f.Len()
		if err != nil {
			return err
		}
		r := io.NewSectionReader(f, 12, fileLen-12)
		w := riff.NewWalker(r, endian)
		removed := false
		for {
			c, err := w.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if c.ID != id || c.Size < 4 {
				continue
			}
			payloadStart := 12 + w.PayloadOffset()
			head := make([]byte, 4)
			if _, err := f.ReadAt(head, payloadStart); err != nil && err != io.EOF {
				return err
			}
			if string(head) != subtype {
				continue
			}
			headerStart := payloadStart - 8
			total := int64(8 + c.Size)
			if c.Size%2 != 0 {
				total++
			}
			if err := Splice(f, headerStart, total, nil); err != nil {
				return err
			}
			if err := patchRiffHeaderSize(f, endian, -total); err != nil {
				return err
			}
			removed = true
			break
		}
		if !removed {
			return nil
		}
	}
}

// insertChunkBytes splices body in at pos without removing anything,
// patching the outer header's size field by the inserted length.
func insertChunkBytes(f FileLike, endian riff.Endian, pos int64, body []byte) error {
	if err := Splice(f, pos, 0, body); err != nil {
		return err
	}
	return patchRiffHeaderSize(f, endian, int64(len(body)))
}

// patchRiffHeaderSize adjusts the 4-byte size field at offset 4 (the
// RIFF/FORM container's declared size, covering everything after its own
// 8-byte FourCC+size prefix) by delta.
func patchRiffHeaderSize(f FileLike, endian riff.Endian, delta int64) error {
	b := make([]byte, 4)
	if _, err := f.ReadAt(b, 4); err != nil && err != io.EOF {
		return err
	}
	newSize := int64(chunkSize(endian, b)) + delta
	putChunkSize(endian, b, uint32(newSize))
	if _, err := f.Seek(4, io.SeekStart); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}
