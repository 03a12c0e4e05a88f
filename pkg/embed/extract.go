package embed

import dferrors "github.com/docfind-go/docfind/internal/errors"

// ExtractImage reads back the serialized image bytes Embed wrote into a
// patched wasm module: it resolves the INDEX_BASE/INDEX_LEN globals and
// returns the data segment payload at that offset. This is the inverse of
// Embed, used by `docfind inspect` to summarize an artifact without a
// browser host.
func ExtractImage(patched []byte) ([]byte, error) {
	module, err := ParseModule(patched)
	if err != nil {
		return nil, err
	}
	if err := checkNoImportedGlobals(module); err != nil {
		return nil, err
	}

	exportIdx := module.find(sectionExport)
	if exportIdx == -1 {
		return nil, dferrors.TemplateError(missingGlobalCode, "artifact has no export section", nil)
	}
	baseIdx, lenIdx, err := resolveIndexGlobals(module.sections[exportIdx].content)
	if err != nil {
		return nil, err
	}

	globalIdx := module.find(sectionGlobal)
	if globalIdx == -1 {
		return nil, dferrors.TemplateError(missingGlobalCode, "artifact has no global section", nil)
	}
	entries, err := parseGlobalSection(module.sections[globalIdx].content)
	if err != nil {
		return nil, err
	}
	if int(baseIdx) >= len(entries) || int(lenIdx) >= len(entries) {
		return nil, dferrors.TemplateError(missingGlobalCode,
			"exported global index has no matching global declaration", nil)
	}

	content := module.sections[globalIdx].content
	base, _, ok := readSLEB128(content, entries[baseIdx].exprStart+1)
	if !ok {
		return nil, dferrors.TemplateError(malformedCode, "failed to read INDEX_BASE init expression", nil)
	}
	length, _, ok := readSLEB128(content, entries[lenIdx].exprStart+1)
	if !ok {
		return nil, dferrors.TemplateError(malformedCode, "failed to read INDEX_LEN init expression", nil)
	}
	if base < 0 || length < 0 {
		return nil, dferrors.TemplateError(malformedCode, "INDEX_BASE/INDEX_LEN must be non-negative", nil)
	}

	dataIdx := module.find(sectionData)
	if dataIdx == -1 {
		return nil, dferrors.TemplateError(malformedCode, "artifact has no data section", nil)
	}
	segments, err := parseDataSection(module.sections[dataIdx].content)
	if err != nil {
		return nil, err
	}

	for _, seg := range segments {
		if !seg.hasOffset {
			continue
		}
		if int64(seg.offset) == base && int64(len(seg.payload)) >= length {
			return seg.payload[:length], nil
		}
	}
	return nil, dferrors.TemplateError(malformedCode, "no data segment found at INDEX_BASE", nil)
}
