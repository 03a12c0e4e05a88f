package embed

import dferrors "github.com/docfind-go/docfind/internal/errors"

const (
	dataFlagActiveImplicitMem = 0
	dataFlagPassive           = 1
	dataFlagActiveExplicitMem = 2
)

// dataSegment is one decoded data-section entry: its raw encoded bytes
// (kept verbatim for passthrough) plus, for active segments, the constant
// offset and payload needed to compute the static-data high-water mark.
type dataSegment struct {
	raw       []byte
	hasOffset bool
	offset    int32
	payload   []byte
}

// parseDataSection decodes every segment in a data section. Passive
// segments (flag 1) carry no offset and don't contribute to the static
// memory layout; active segments (flags 0 and 2) must use a constant
// i32.const offset, the only form the template contract permits.
func parseDataSection(content []byte) ([]dataSegment, error) {
	count, pos, ok := readULEB128(content, 0)
	if !ok {
		return nil, dferrors.TemplateError(malformedCode, "truncated data section count", nil)
	}

	segments := make([]dataSegment, 0, count)
	for i := uint64(0); i < count; i++ {
		segStart := pos

		flag, newPos, ok := readULEB128(content, pos)
		if !ok {
			return nil, dferrors.TemplateError(malformedCode, "truncated data segment flag", nil)
		}
		pos = newPos

		seg := dataSegment{}

		switch flag {
		case dataFlagActiveImplicitMem:
			val, newPos, err := evalI32ConstExpr(content, pos)
			if err != nil {
				return nil, err
			}
			pos = newPos
			seg.hasOffset = true
			seg.offset = val
		case dataFlagPassive:
			// no memory index, no offset
		case dataFlagActiveExplicitMem:
			if _, newPos, ok := readULEB128(content, pos); ok {
				pos = newPos
			} else {
				return nil, dferrors.TemplateError(malformedCode, "truncated data segment memory index", nil)
			}
			val, newPos, err := evalI32ConstExpr(content, pos)
			if err != nil {
				return nil, err
			}
			pos = newPos
			seg.hasOffset = true
			seg.offset = val
		default:
			return nil, dferrors.TemplateError(malformedCode, "unsupported data segment flag", nil)
		}

		size, newPos, ok := readULEB128(content, pos)
		if !ok {
			return nil, dferrors.TemplateError(malformedCode, "truncated data segment size", nil)
		}
		pos = newPos
		if pos+int(size) > len(content) {
			return nil, dferrors.TemplateError(malformedCode, "data segment payload truncated", nil)
		}
		seg.payload = content[pos : pos+int(size)]
		pos += int(size)

		seg.raw = content[segStart:pos]
		segments = append(segments, seg)
	}

	return segments, nil
}

// evalI32ConstExpr reads a constant offset expression of the only shape
// the template contract allows: i32.const <value> end.
func evalI32ConstExpr(content []byte, pos int) (int32, int, error) {
	if pos >= len(content) || content[pos] != opI32Const {
		return 0, pos, dferrors.TemplateError(malformedCode,
			"data segment offset must be a constant i32.const expression", nil)
	}
	pos++
	val, newPos, ok := readSLEB128(content, pos)
	if !ok {
		return 0, pos, dferrors.TemplateError(malformedCode, "truncated data segment offset immediate", nil)
	}
	pos = newPos
	if pos >= len(content) || content[pos] != opEnd {
		return 0, pos, dferrors.TemplateError(malformedCode, "data segment offset missing end opcode", nil)
	}
	return int32(val), pos + 1, nil
}

// staticDataHighWaterMark returns the byte offset immediately after the
// highest-addressed active segment, the point new data must be placed at
// or after.
func staticDataHighWaterMark(segments []dataSegment) uint32 {
	var hw uint32
	for _, s := range segments {
		if !s.hasOffset {
			continue
		}
		end := uint32(s.offset) + uint32(len(s.payload))
		if end > hw {
			hw = end
		}
	}
	return hw
}

// buildActiveSegment encodes a new active data segment targeting memory 0
// with a constant i32.const offset, the form spec.md §4.6 describes.
func buildActiveSegment(offset uint32, payload []byte) []byte {
	out := appendULEB128(nil, dataFlagActiveImplicitMem)
	out = append(out, opI32Const)
	out = appendSLEB128(out, int64(int32(offset)))
	out = append(out, opEnd)
	out = appendULEB128(out, uint64(len(payload)))
	out = append(out, payload...)
	return out
}

// encodeDataSection re-emits the section: every existing segment verbatim,
// followed by the new one.
func encodeDataSection(existing []dataSegment, newSegment []byte) []byte {
	out := appendULEB128(nil, uint64(len(existing))+1)
	for _, s := range existing {
		out = append(out, s.raw...)
	}
	out = append(out, newSegment...)
	return out
}
