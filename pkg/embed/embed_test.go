package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dferrors "github.com/docfind-go/docfind/internal/errors"
)

// buildTemplate assembles a minimal synthetic wasm module satisfying the
// template contract: one memory (initial=memMin pages, no maximum unless
// withMax), two mutable i32 globals initialized to zero and exported as
// INDEX_BASE/INDEX_LEN.
func buildTemplate(t *testing.T, memMin uint32, withMax bool, maxVal uint32) []byte {
	t.Helper()

	memContent := appendULEB128(nil, 1)
	if withMax {
		memContent = append(memContent, 1)
		memContent = appendULEB128(memContent, uint64(memMin))
		memContent = appendULEB128(memContent, uint64(maxVal))
	} else {
		memContent = append(memContent, 0)
		memContent = appendULEB128(memContent, uint64(memMin))
	}

	oneGlobal := func() []byte {
		g := []byte{0x7F, 0x01, opI32Const, 0x00, opEnd} // i32, mutable, = 0
		return g
	}
	globalContent := appendULEB128(nil, 2)
	globalContent = append(globalContent, oneGlobal()...)
	globalContent = append(globalContent, oneGlobal()...)

	exportEntry := func(name string, kind byte, idx uint32) []byte {
		e := appendULEB128(nil, uint64(len(name)))
		e = append(e, []byte(name)...)
		e = append(e, kind)
		e = appendULEB128(e, uint64(idx))
		return e
	}
	exportContent := appendULEB128(nil, 2)
	exportContent = append(exportContent, exportEntry("INDEX_BASE", exportKindGlobal, 0)...)
	exportContent = append(exportContent, exportEntry("INDEX_LEN", exportKindGlobal, 1)...)

	m := &Module{sections: []section{
		{id: sectionMemory, content: memContent},
		{id: sectionGlobal, content: globalContent},
		{id: sectionExport, content: exportContent},
		{id: sectionCode, content: []byte{0}}, // empty function vector, placeholder
	}}

	return m.Encode()
}

func TestEmbedRewritesGlobalsAndGrowsMemory(t *testing.T) {
	template := buildTemplate(t, 17, false, 0)
	image := make([]byte, 2*1024*1024) // 2 MiB: 32 pages, more than the template's 17
	for i := range image {
		image[i] = byte(i)
	}

	patched, err := Embed(template, image)
	require.NoError(t, err)

	m, err := ParseModule(patched)
	require.NoError(t, err)

	memIdx := m.find(sectionMemory)
	require.NotEqual(t, -1, memIdx)
	lim, err := parseMemorySection(m.sections[memIdx].content)
	require.NoError(t, err)

	expectedOffset := uint32(0) // high-water mark 0, page-aligned
	expectedPages := ceilDivPages(expectedOffset + uint32(len(image)))
	assert.Equal(t, expectedPages, lim.min)

	globalIdx := m.find(sectionGlobal)
	entries, err := parseGlobalSection(m.sections[globalIdx].content)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	baseVal, _, ok := readSLEB128(m.sections[globalIdx].content, entries[0].exprStart+1)
	require.True(t, ok)
	assert.Equal(t, int64(expectedOffset), baseVal)

	lenVal, _, ok := readSLEB128(m.sections[globalIdx].content, entries[1].exprStart+1)
	require.True(t, ok)
	assert.Equal(t, int64(len(image)), lenVal)

	dataIdx := m.find(sectionData)
	require.NotEqual(t, -1, dataIdx)
	segments, err := parseDataSection(m.sections[dataIdx].content)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, expectedOffset, uint32(segments[0].offset))
	assert.Equal(t, image, segments[0].payload)
}

func TestEmbedIsDeterministic(t *testing.T) {
	template := buildTemplate(t, 1, true, 100)
	image := []byte("a small serialized index image")

	a, err := Embed(template, image)
	require.NoError(t, err)
	b, err := Embed(template, image)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedRaisesMaximumWhenPresent(t *testing.T) {
	template := buildTemplate(t, 1, true, 1)
	image := make([]byte, 200*1024)

	patched, err := Embed(template, image)
	require.NoError(t, err)

	m, err := ParseModule(patched)
	require.NoError(t, err)
	memIdx := m.find(sectionMemory)
	lim, err := parseMemorySection(m.sections[memIdx].content)
	require.NoError(t, err)
	assert.True(t, lim.hasMax)
	assert.GreaterOrEqual(t, lim.max, lim.min)
}

func TestEmbedFailsOnMissingMemory(t *testing.T) {
	m := &Module{sections: []section{
		{id: sectionGlobal, content: appendULEB128(nil, 0)},
		{id: sectionExport, content: appendULEB128(nil, 0)},
	}}
	_, err := Embed(m.Encode(), []byte("x"))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeTemplateNoMemory, de.Code)
}

func TestEmbedFailsOnMissingGlobalExport(t *testing.T) {
	memContent := appendULEB128(nil, 1)
	memContent = append(memContent, 0)
	memContent = appendULEB128(memContent, 1)

	m := &Module{sections: []section{
		{id: sectionMemory, content: memContent},
		{id: sectionExport, content: appendULEB128(nil, 0)},
	}}
	_, err := Embed(m.Encode(), []byte("x"))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeTemplateMissingGlobal, de.Code)
}

func TestParseModuleRejectsBadMagic(t *testing.T) {
	_, err := ParseModule([]byte("not-a-wasm-module-at-all"))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeTemplateMalformed, de.Code)
}

func TestEmbedRejectsModuleWithImportSection(t *testing.T) {
	template := buildTemplate(t, 4, false, 0)
	m, err := ParseModule(template)
	require.NoError(t, err)
	m.sections = append([]section{{id: sectionImport, content: []byte{0}}}, m.sections...)

	_, err = Embed(m.Encode(), []byte("image"))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeTemplateMissingGlobal, de.Code)
}

func TestLEB128RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40} {
		enc := appendULEB128(nil, v)
		got, pos, ok := readULEB128(enc, 0)
		require.True(t, ok)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), pos)
	}

	for _, v := range []int64{0, -1, 1, 63, -64, 64, -65, 1 << 20, -(1 << 20)} {
		enc := appendSLEB128(nil, v)
		got, pos, ok := readSLEB128(enc, 0)
		require.True(t, ok)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), pos)
	}
}
