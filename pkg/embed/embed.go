package embed

import dferrors "github.com/docfind-go/docfind/internal/errors"

// Embed patches template (a compiled WebAssembly module satisfying the
// contract in spec.md §6) to carry image in its linear memory, per the
// six steps in spec.md §4.6:
//
//  1. parse the module section-by-section
//  2. compute the page-aligned offset and required page count
//  3. grow the memory section's initial (and maximum, if present) page count
//  4. rewrite the INDEX_BASE/INDEX_LEN globals' init expressions
//  5. append an active data segment carrying image at that offset
//  6. re-emit every other section unchanged
//
// Embed is deterministic: the same template and image bytes always
// produce the same output.
func Embed(template []byte, image []byte) ([]byte, error) {
	module, err := ParseModule(template)
	if err != nil {
		return nil, err
	}
	if err := checkNoImportedGlobals(module); err != nil {
		return nil, err
	}

	memIdx := module.find(sectionMemory)
	if memIdx == -1 {
		return nil, dferrors.TemplateError(noMemoryCode, "template declares no memory section", nil)
	}
	memLimits, err := parseMemorySection(module.sections[memIdx].content)
	if err != nil {
		return nil, err
	}

	exportIdx := module.find(sectionExport)
	if exportIdx == -1 {
		return nil, dferrors.TemplateError(missingGlobalCode, "template has no export section", nil)
	}
	baseIdx, lenIdx, err := resolveIndexGlobals(module.sections[exportIdx].content)
	if err != nil {
		return nil, err
	}

	var segments []dataSegment
	dataIdx := module.find(sectionData)
	if dataIdx != -1 {
		segments, err = parseDataSection(module.sections[dataIdx].content)
		if err != nil {
			return nil, err
		}
	}

	highWaterMark := staticDataHighWaterMark(segments)
	imageOffset := alignUp(highWaterMark, wasmPageSize)
	imageLen := uint32(len(image))
	pagesNeeded := ceilDivPages(imageOffset + imageLen)

	newLimits := memLimits
	if pagesNeeded > newLimits.min {
		newLimits.min = pagesNeeded
	}
	if newLimits.hasMax && pagesNeeded > newLimits.max {
		newLimits.max = pagesNeeded
	}
	module.sections[memIdx].content = encodeMemorySection(newLimits)

	globalIdx := module.find(sectionGlobal)
	if globalIdx == -1 {
		return nil, dferrors.TemplateError(missingGlobalCode, "template has no global section", nil)
	}
	entries, err := parseGlobalSection(module.sections[globalIdx].content)
	if err != nil {
		return nil, err
	}
	if int(baseIdx) >= len(entries) || int(lenIdx) >= len(entries) {
		return nil, dferrors.TemplateError(missingGlobalCode,
			"exported global index has no matching global declaration", nil)
	}
	overrides := map[uint32]int32{
		baseIdx: int32(imageOffset),
		lenIdx:  int32(imageLen),
	}
	module.sections[globalIdx].content = encodeGlobalSection(
		module.sections[globalIdx].content, entries, overrides)

	newSegment := buildActiveSegment(imageOffset, image)
	if dataIdx != -1 {
		module.sections[dataIdx].content = encodeDataSection(segments, newSegment)
	} else {
		module.insertSection(sectionData, encodeDataSection(nil, newSegment))
	}

	if dcIdx := module.find(sectionDataCount); dcIdx != -1 {
		module.sections[dcIdx].content = bumpDataCount(module.sections[dcIdx].content)
	}

	return module.Encode(), nil
}

// insertSection inserts a new section with the given id and content at
// the position its id implies in module-section order: immediately after
// the last existing section whose id is numerically less than or equal
// to it (custom sections, id 0, are ignored for ordering purposes), or at
// the end if none qualifies. This is only ever used to add the data
// section (11) when a template carries no prior data, so it lands right
// after the code section as the wasm binary format requires.
func (m *Module) insertSection(id byte, content []byte) {
	insertAt := len(m.sections)
	for i, s := range m.sections {
		if s.id != 0 && s.id > id {
			insertAt = i
			break
		}
	}
	m.sections = append(m.sections, section{})
	copy(m.sections[insertAt+1:], m.sections[insertAt:])
	m.sections[insertAt] = section{id: id, content: content}
}

func bumpDataCount(content []byte) []byte {
	count, _, ok := readULEB128(content, 0)
	if !ok {
		return content
	}
	return appendULEB128(nil, count+1)
}

func alignUp(v, align uint32) uint32 {
	if v%align == 0 {
		return v
	}
	return (v/align + 1) * align
}

func ceilDivPages(bytes uint32) uint32 {
	if bytes == 0 {
		return 0
	}
	return (bytes + wasmPageSize - 1) / wasmPageSize
}
