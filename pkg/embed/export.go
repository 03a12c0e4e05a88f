package embed

import dferrors "github.com/docfind-go/docfind/internal/errors"

const exportKindGlobal = 0x03

// exportedGlobal is one export-section entry naming a global.
type exportedGlobal struct {
	name      string
	globalIdx uint32
}

// parseExportedGlobals decodes every export in the export section that
// names a global, ignoring exported functions, tables, and memories.
func parseExportedGlobals(content []byte) ([]exportedGlobal, error) {
	count, pos, ok := readULEB128(content, 0)
	if !ok {
		return nil, dferrors.TemplateError(malformedCode, "truncated export section count", nil)
	}

	var globals []exportedGlobal
	for i := uint64(0); i < count; i++ {
		nameLen, newPos, ok := readULEB128(content, pos)
		if !ok {
			return nil, dferrors.TemplateError(malformedCode, "truncated export name length", nil)
		}
		pos = newPos
		if pos+int(nameLen) > len(content) {
			return nil, dferrors.TemplateError(malformedCode, "truncated export name", nil)
		}
		name := string(content[pos : pos+int(nameLen)])
		pos += int(nameLen)

		if pos >= len(content) {
			return nil, dferrors.TemplateError(malformedCode, "truncated export kind", nil)
		}
		kind := content[pos]
		pos++

		idx, newPos, ok := readULEB128(content, pos)
		if !ok {
			return nil, dferrors.TemplateError(malformedCode, "truncated export index", nil)
		}
		pos = newPos

		if kind == exportKindGlobal {
			globals = append(globals, exportedGlobal{name: name, globalIdx: uint32(idx)})
		}
	}

	return globals, nil
}

// resolveIndexGlobals finds the module-indexed globals exported as
// INDEX_BASE and INDEX_LEN. Either missing is TemplateMissingGlobal.
func resolveIndexGlobals(content []byte) (baseIdx, lenIdx uint32, err error) {
	globals, err := parseExportedGlobals(content)
	if err != nil {
		return 0, 0, err
	}

	var haveBase, haveLen bool
	for _, g := range globals {
		switch g.name {
		case "INDEX_BASE":
			baseIdx, haveBase = g.globalIdx, true
		case "INDEX_LEN":
			lenIdx, haveLen = g.globalIdx, true
		}
	}

	if !haveBase || !haveLen {
		missing := "INDEX_BASE"
		if haveBase {
			missing = "INDEX_LEN"
		}
		return 0, 0, dferrors.TemplateError(missingGlobalCode,
			"template does not export required global "+missing, nil)
	}

	return baseIdx, lenIdx, nil
}

// checkNoImportedGlobals rejects modules with an import section. Both Embed
// and ExtractImage treat baseIdx/lenIdx (from resolveIndexGlobals) as direct
// indices into the global section's own declarations, which only holds when
// the module imports no globals — an imported global occupies an index
// below every module-declared global, shifting the index space. No template
// we build or accept ever imports anything, but a hand-authored or
// third-party-toolchain template could, so this is checked rather than
// assumed.
func checkNoImportedGlobals(m *Module) error {
	if m.find(sectionImport) != -1 {
		return dferrors.TemplateError(missingGlobalCode,
			"template imports globals, which is not supported: INDEX_BASE/INDEX_LEN must be module-declared globals", nil)
	}
	return nil
}
