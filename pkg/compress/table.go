// Package compress implements a static symbol-table text compressor in
// the FSST family: a dictionary of frequent byte strings is trained once
// over a sample of the corpus, then every string is compressed by greedy
// longest-symbol matching against that dictionary, with a one-byte escape
// for bytes the dictionary does not cover.
package compress

import (
	"encoding/binary"
	"sort"

	dferrors "github.com/docfind-go/docfind/internal/errors"
)

const (
	// escapeByte marks a literal byte that follows, uncompressed.
	escapeByte = 0xFF

	// maxSymbols is the largest dictionary the one-byte code space allows:
	// 255 symbol codes (0..254) plus the escape byte (255).
	maxSymbols = 255

	minSymbolLen = 2
	maxSymbolLen = 8

	// maxCandidates bounds the frequency table built during training so a
	// large sample doesn't grow it unboundedly; once full, new substrings
	// are only tracked if they're already present.
	maxCandidates = 200_000
)

// Table is a trained symbol table: compress(bytes) and decompress(bytes)
// are pure functions of its contents, so two tables built from identical
// samples behave identically.
type Table struct {
	symbols [][]byte          // code -> symbol bytes, len(symbols) <= maxSymbols
	index   map[string]byte   // symbol bytes -> code, for encode lookups
	lengths []int             // distinct symbol lengths, descending, for longest-match search
}

// Train builds a Table from sample by greedily selecting the
// highest-scoring byte substrings of length 2..8, where a substring's
// score is its frequency in the sample times the bytes it saves per
// occurrence (length - 1). Ties are broken lexicographically so training
// is deterministic for a given sample.
func Train(sample []byte) *Table {
	freq := make(map[string]int, maxCandidates)

	for length := minSymbolLen; length <= maxSymbolLen; length++ {
		if len(sample) < length {
			continue
		}
		for i := 0; i+length <= len(sample); i++ {
			sub := string(sample[i : i+length])
			if _, exists := freq[sub]; !exists && len(freq) >= maxCandidates {
				continue
			}
			freq[sub]++
		}
	}

	type candidate struct {
		symbol string
		score  int
	}
	candidates := make([]candidate, 0, len(freq))
	for sym, count := range freq {
		if count < 2 {
			continue // a symbol that appears once saves nothing over a literal run
		}
		candidates = append(candidates, candidate{symbol: sym, score: count * (len(sym) - 1)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].symbol < candidates[j].symbol
	})

	n := len(candidates)
	if n > maxSymbols {
		n = maxSymbols
	}

	t := &Table{
		symbols: make([][]byte, n),
		index:   make(map[string]byte, n),
	}
	lengthSet := make(map[int]struct{})
	for i := 0; i < n; i++ {
		sym := []byte(candidates[i].symbol)
		t.symbols[i] = sym
		t.index[candidates[i].symbol] = byte(i)
		lengthSet[len(sym)] = struct{}{}
	}
	for l := range lengthSet {
		t.lengths = append(t.lengths, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(t.lengths)))

	return t
}

// Compress encodes data against the table: at each position the longest
// matching symbol is emitted as a single code byte; unmatched bytes are
// emitted as an escape byte followed by the literal.
func (t *Table) Compress(data []byte) []byte {
	out := make([]byte, 0, len(data))
	pos := 0
	for pos < len(data) {
		matched := false
		for _, l := range t.lengths {
			if pos+l > len(data) {
				continue
			}
			if code, ok := t.index[string(data[pos:pos+l])]; ok {
				out = append(out, code)
				pos += l
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, escapeByte, data[pos])
			pos++
		}
	}
	return out
}

// Decompress reverses Compress. It fails with IndexCorrupt if a code
// byte references a symbol the table doesn't have, or an escape byte
// appears without a following literal.
func (t *Table) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	pos := 0
	for pos < len(data) {
		b := data[pos]
		if b == escapeByte {
			if pos+1 >= len(data) {
				return nil, dferrors.IndexCorrupt("truncated escape sequence in compressed string", nil)
			}
			out = append(out, data[pos+1])
			pos += 2
			continue
		}
		if int(b) >= len(t.symbols) {
			return nil, dferrors.IndexCorrupt("compressed string references unknown symbol code", nil).
				WithDetail("code", string(rune(b)))
		}
		out = append(out, t.symbols[b]...)
		pos++
	}
	return out, nil
}

// Marshal serializes the table into compressor_blob's on-disk form:
// u16 symbol count, then each symbol as u8 length + its bytes.
func (t *Table) Marshal() []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, uint16(len(t.symbols)))
	for _, sym := range t.symbols {
		out = append(out, byte(len(sym)))
		out = append(out, sym...)
	}
	return out
}

// Unmarshal reconstructs a Table from a compressor_blob produced by
// Marshal.
func Unmarshal(blob []byte) (*Table, error) {
	if len(blob) < 2 {
		return nil, dferrors.IndexCorrupt("compressor blob too short", nil)
	}
	count := binary.LittleEndian.Uint16(blob)
	t := &Table{
		symbols: make([][]byte, 0, count),
		index:   make(map[string]byte, count),
	}
	lengthSet := make(map[int]struct{})

	pos := 2
	for i := 0; i < int(count); i++ {
		if pos >= len(blob) {
			return nil, dferrors.IndexCorrupt("compressor blob truncated", nil)
		}
		length := int(blob[pos])
		pos++
		if pos+length > len(blob) {
			return nil, dferrors.IndexCorrupt("compressor blob truncated", nil)
		}
		sym := blob[pos : pos+length]
		pos += length

		t.symbols = append(t.symbols, sym)
		t.index[string(sym)] = byte(i)
		lengthSet[length] = struct{}{}
	}
	for l := range lengthSet {
		t.lengths = append(t.lengths, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(t.lengths)))

	return t, nil
}
