// Package serialize encodes and decodes an index.Image to and from the
// compact binary envelope spec.md §6 defines.
package serialize

import (
	"bytes"
	"encoding/binary"
	"math"

	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/aggregate"
	"github.com/docfind-go/docfind/pkg/index"
)

// magic is the 4-byte envelope header identifying a docfind image.
var magic = [4]byte{'D', 'F', 'N', 'D'}

// Encode writes img to its binary envelope: magic, version, reserved,
// then length-prefixed fst_bytes, postings, compressor_blob, strings, and
// docs sections, all little-endian.
func Encode(img *index.Image) []byte {
	var buf bytes.Buffer

	buf.Write(magic[:])
	writeU16(&buf, img.Version)
	writeU16(&buf, 0) // reserved

	writeBytes(&buf, img.FST)

	writeU32(&buf, uint32(len(img.Postings)))
	for _, postings := range img.Postings {
		writeU32(&buf, uint32(len(postings)))
		for _, p := range postings {
			writeU32(&buf, p.DocID)
			writeU32(&buf, math.Float32bits(p.Score))
		}
	}

	writeBytes(&buf, img.CompressorBlob)

	writeU32(&buf, uint32(len(img.Strings)))
	for _, s := range img.Strings {
		writeBytes(&buf, s)
	}

	writeU32(&buf, uint32(len(img.Docs)))
	for _, d := range img.Docs {
		writeU32(&buf, d.Title)
		writeU32(&buf, d.Category)
		writeU32(&buf, d.Href)
		writeU32(&buf, d.Body)
	}

	return buf.Bytes()
}

// Decode parses a binary envelope produced by Encode. A version other
// than index.CurrentVersion fails with IndexVersionMismatch; any other
// structural problem (truncation, bad magic, malformed counts) fails with
// IndexCorrupt.
func Decode(data []byte) (*index.Image, error) {
	r := &reader{data: data}

	var m [4]byte
	if !r.readInto(m[:]) {
		return nil, dferrors.IndexCorrupt("image truncated before magic", nil)
	}
	if m != magic {
		return nil, dferrors.IndexCorrupt("image has invalid magic bytes", nil)
	}

	version, ok := r.readU16()
	if !ok {
		return nil, dferrors.IndexCorrupt("image truncated before version", nil)
	}
	if version != index.CurrentVersion {
		return nil, dferrors.IndexVersionMismatch(version, index.CurrentVersion)
	}

	if _, ok := r.readU16(); !ok { // reserved
		return nil, dferrors.IndexCorrupt("image truncated before reserved field", nil)
	}

	fstBytes, ok := r.readBytes()
	if !ok {
		return nil, dferrors.IndexCorrupt("image truncated in fst_bytes section", nil)
	}

	postingsCount, ok := r.readU32()
	if !ok {
		return nil, dferrors.IndexCorrupt("image truncated in postings section", nil)
	}
	postings := make([][]aggregate.Posting, postingsCount)
	for i := range postings {
		n, ok := r.readU32()
		if !ok {
			return nil, dferrors.IndexCorrupt("image truncated in postings list", nil)
		}
		list := make([]aggregate.Posting, n)
		for j := range list {
			docID, ok := r.readU32()
			if !ok {
				return nil, dferrors.IndexCorrupt("image truncated in posting", nil)
			}
			scoreBits, ok := r.readU32()
			if !ok {
				return nil, dferrors.IndexCorrupt("image truncated in posting", nil)
			}
			list[j] = aggregate.Posting{DocID: docID, Score: math.Float32frombits(scoreBits)}
		}
		postings[i] = list
	}

	compressorBlob, ok := r.readBytes()
	if !ok {
		return nil, dferrors.IndexCorrupt("image truncated in compressor_blob section", nil)
	}

	stringsCount, ok := r.readU32()
	if !ok {
		return nil, dferrors.IndexCorrupt("image truncated in strings section", nil)
	}
	strings := make([][]byte, stringsCount)
	for i := range strings {
		s, ok := r.readBytes()
		if !ok {
			return nil, dferrors.IndexCorrupt("image truncated in strings section", nil)
		}
		strings[i] = s
	}

	docsCount, ok := r.readU32()
	if !ok {
		return nil, dferrors.IndexCorrupt("image truncated in docs section", nil)
	}
	docs := make([]index.DocRecord, docsCount)
	for i := range docs {
		title, ok1 := r.readU32()
		category, ok2 := r.readU32()
		href, ok3 := r.readU32()
		body, ok4 := r.readU32()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, dferrors.IndexCorrupt("image truncated in doc record", nil)
		}
		docs[i] = index.DocRecord{Title: title, Category: category, Href: href, Body: body}
	}

	if !r.atEnd() {
		return nil, dferrors.IndexCorrupt("image has trailing bytes after docs section", nil)
	}

	img := &index.Image{
		Version:        version,
		FST:            fstBytes,
		Postings:       postings,
		CompressorBlob: compressorBlob,
		Strings:        strings,
		Docs:           docs,
	}

	if err := index.Validate(img); err != nil {
		return nil, dferrors.IndexCorrupt("decoded image failed invariant validation", err)
	}

	return img, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeU32(buf, uint32(len(b)))
	buf.Write(b)
}

// reader walks data sequentially, reporting failure instead of panicking
// on truncated input so Decode can turn every malformed-input shape into
// an IndexCorrupt error.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) readInto(dst []byte) bool {
	if r.pos+len(dst) > len(r.data) {
		return false
	}
	copy(dst, r.data[r.pos:r.pos+len(dst)])
	r.pos += len(dst)
	return true
}

func (r *reader) readU16() (uint16, bool) {
	var b [2]byte
	if !r.readInto(b[:]) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b[:]), true
}

func (r *reader) readU32() (uint32, bool) {
	var b [4]byte
	if !r.readInto(b[:]) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[:]), true
}

func (r *reader) readBytes() ([]byte, bool) {
	n, ok := r.readU32()
	if !ok {
		return nil, false
	}
	if r.pos+int(n) > len(r.data) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, true
}

func (r *reader) atEnd() bool {
	return r.pos == len(r.data)
}
