package embed

import dferrors "github.com/docfind-go/docfind/internal/errors"

const (
	opI32Const   = 0x41
	opI64Const   = 0x42
	opF32Const   = 0x43
	opF64Const   = 0x44
	opGlobalGet  = 0x23
	opRefNull    = 0xD0
	opRefFunc    = 0xD2
	opEnd        = 0x0B
)

// globalEntry is one decoded entry in the global section: its declared
// type/mutability bytes (copied through unchanged) and the byte range of
// its init expression within the section content.
type globalEntry struct {
	valType    byte
	mutability byte
	exprStart  int
	exprEnd    int // exclusive, includes the terminating 0x0B
}

// parseGlobalSection decodes every global declaration's type/mutability
// and locates its init expression's byte range, without evaluating the
// expression.
func parseGlobalSection(content []byte) ([]globalEntry, error) {
	count, pos, ok := readULEB128(content, 0)
	if !ok {
		return nil, dferrors.TemplateError(malformedCode, "truncated global section count", nil)
	}

	entries := make([]globalEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		if pos+2 > len(content) {
			return nil, dferrors.TemplateError(malformedCode, "truncated global declaration", nil)
		}
		valType := content[pos]
		mutability := content[pos+1]
		pos += 2

		exprStart := pos
		newPos, err := skipConstExpr(content, pos)
		if err != nil {
			return nil, err
		}
		entries = append(entries, globalEntry{
			valType:    valType,
			mutability: mutability,
			exprStart:  exprStart,
			exprEnd:    newPos,
		})
		pos = newPos
	}

	return entries, nil
}

// skipConstExpr returns the position immediately after a single
// instruction followed by the 0x0B end opcode — the shape every global
// init expression and active-data-segment offset expression takes in
// practice. Any other instruction is rejected as malformed rather than
// guessed at.
func skipConstExpr(content []byte, pos int) (int, error) {
	if pos >= len(content) {
		return pos, dferrors.TemplateError(malformedCode, "truncated init expression", nil)
	}
	op := content[pos]
	pos++

	switch op {
	case opI32Const, opI64Const:
		_, newPos, ok := readSLEB128(content, pos)
		if !ok {
			return pos, dferrors.TemplateError(malformedCode, "truncated const immediate", nil)
		}
		pos = newPos
	case opF32Const:
		pos += 4
	case opF64Const:
		pos += 8
	case opGlobalGet, opRefFunc:
		_, newPos, ok := readULEB128(content, pos)
		if !ok {
			return pos, dferrors.TemplateError(malformedCode, "truncated index immediate", nil)
		}
		pos = newPos
	case opRefNull:
		pos++ // reftype byte
	default:
		return pos, dferrors.TemplateError(malformedCode, "unsupported init expression opcode", nil)
	}

	if pos >= len(content) || content[pos] != opEnd {
		return pos, dferrors.TemplateError(malformedCode, "init expression missing end opcode", nil)
	}
	return pos + 1, nil
}

// encodeGlobalSection re-emits the global section, overwriting the init
// expressions at the given global indices with canonical
// "i32.const value; end" sequences and copying everything else through
// unchanged.
func encodeGlobalSection(content []byte, entries []globalEntry, overrides map[uint32]int32) []byte {
	out := appendULEB128(nil, uint64(len(entries)))

	for i, e := range entries {
		out = append(out, e.valType, e.mutability)

		if value, ok := overrides[uint32(i)]; ok {
			out = append(out, opI32Const)
			out = appendSLEB128(out, int64(value))
			out = append(out, opEnd)
		} else {
			out = append(out, content[e.exprStart:e.exprEnd]...)
		}
	}

	return out
}
