// Package embed patches a pre-built WebAssembly template module: it grows
// linear memory, rewrites two exported globals to point at an embedded
// image, and appends the image as an active data segment — byte-for-byte
// deterministic given the same template and image.
package embed

import (
	"bytes"
	"strconv"

	dferrors "github.com/docfind-go/docfind/internal/errors"
)

var wasmMagic = [4]byte{0x00, 0x61, 0x73, 0x6D}
var wasmVersion = [4]byte{0x01, 0x00, 0x00, 0x00}

const (
	sectionImport    = 2
	sectionMemory    = 5
	sectionGlobal    = 6
	sectionExport    = 7
	sectionCode      = 10
	sectionData      = 11
	sectionDataCount = 12
)

// section is one raw module section: its id and undecoded content bytes
// (not including the id byte or the size prefix).
type section struct {
	id      byte
	content []byte
}

// Module is a WebAssembly binary module as an ordered list of sections.
// Sections this package doesn't need to inspect are kept as opaque bytes
// and re-emitted unchanged, so Encode never reorders or touches the code
// section.
type Module struct {
	sections []section
}

// ParseModule parses data's magic, version, and section list. It does not
// validate section contents beyond what's needed to locate byte
// boundaries; semantic validation happens when a specific section is
// decoded.
func ParseModule(data []byte) (*Module, error) {
	if len(data) < 8 {
		return nil, dferrors.TemplateError(malformedCode, "module shorter than the wasm header", nil)
	}
	var magic, version [4]byte
	copy(magic[:], data[0:4])
	copy(version[:], data[4:8])
	if magic != wasmMagic {
		return nil, dferrors.TemplateError(malformedCode, "module has invalid wasm magic bytes", nil)
	}
	if version != wasmVersion {
		return nil, dferrors.TemplateError(malformedCode, "module has unsupported wasm version", nil)
	}

	m := &Module{}
	pos := 8
	for pos < len(data) {
		id := data[pos]
		pos++
		size, newPos, ok := readULEB128(data, pos)
		if !ok {
			return nil, dferrors.TemplateError(malformedCode, "truncated section size", nil).
				WithDetail("module_offset", offsetDetail(pos))
		}
		pos = newPos
		if pos+int(size) > len(data) {
			return nil, dferrors.TemplateError(malformedCode, "section content extends past end of module", nil).
				WithDetail("module_offset", offsetDetail(pos))
		}
		content := data[pos : pos+int(size)]
		pos += int(size)
		m.sections = append(m.sections, section{id: id, content: content})
	}

	return m, nil
}

// find returns the index of the first section with the given id, or -1.
func (m *Module) find(id byte) int {
	for i, s := range m.sections {
		if s.id == id {
			return i
		}
	}
	return -1
}

// Encode re-serializes the module: magic, version, then every section in
// its current order with a recomputed size prefix.
func (m *Module) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(wasmMagic[:])
	buf.Write(wasmVersion[:])
	for _, s := range m.sections {
		buf.WriteByte(s.id)
		buf.Write(appendULEB128(nil, uint64(len(s.content))))
		buf.Write(s.content)
	}
	return buf.Bytes()
}

func offsetDetail(pos int) string {
	return strconv.Itoa(pos)
}
