package embed

import dferrors "github.com/docfind-go/docfind/internal/errors"

const (
	missingGlobalCode = dferrors.ErrCodeTemplateMissingGlobal
	noMemoryCode      = dferrors.ErrCodeTemplateNoMemory
	malformedCode     = dferrors.ErrCodeTemplateMalformed

	wasmPageSize = 65536
)

// limits is a wasm memtype's resizable limits: a required minimum and an
// optional maximum, both in 64 KiB pages.
type limits struct {
	min     uint32
	max     uint32
	hasMax  bool
}

// parseMemorySection decodes the module's single memory's limits from its
// memory section content. The template contract (spec.md §6) guarantees
// exactly one memory; any other count is malformed.
func parseMemorySection(content []byte) (limits, error) {
	count, pos, ok := readULEB128(content, 0)
	if !ok {
		return limits{}, dferrors.TemplateError(malformedCode, "truncated memory section count", nil)
	}
	if count != 1 {
		return limits{}, dferrors.TemplateError(noMemoryCode,
			"template must declare exactly one memory", nil)
	}

	l, _, err := parseLimits(content, pos)
	if err != nil {
		return limits{}, err
	}
	return l, nil
}

func parseLimits(content []byte, pos int) (limits, int, error) {
	if pos >= len(content) {
		return limits{}, pos, dferrors.TemplateError(malformedCode, "truncated memory limits flag", nil)
	}
	flag := content[pos]
	pos++

	min, newPos, ok := readULEB128(content, pos)
	if !ok {
		return limits{}, pos, dferrors.TemplateError(malformedCode, "truncated memory limits minimum", nil)
	}
	pos = newPos

	l := limits{min: uint32(min)}
	if flag == 1 {
		max, newPos, ok := readULEB128(content, pos)
		if !ok {
			return limits{}, pos, dferrors.TemplateError(malformedCode, "truncated memory limits maximum", nil)
		}
		pos = newPos
		l.max = uint32(max)
		l.hasMax = true
	} else if flag != 0 {
		return limits{}, pos, dferrors.TemplateError(malformedCode, "invalid memory limits flag", nil)
	}

	return l, pos, nil
}

// encodeMemorySection re-encodes a single-memory memory section with l's
// limits.
func encodeMemorySection(l limits) []byte {
	out := appendULEB128(nil, 1) // one memory
	out = encodeLimits(out, l)
	return out
}

func encodeLimits(out []byte, l limits) []byte {
	if l.hasMax {
		out = append(out, 1)
		out = appendULEB128(out, uint64(l.min))
		out = appendULEB128(out, uint64(l.max))
	} else {
		out = append(out, 0)
		out = appendULEB128(out, uint64(l.min))
	}
	return out
}
