package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactRendererRender(t *testing.T) {
	var buf bytes.Buffer
	r := NewArtifactRenderer(&buf, true)

	err := r.Render(ArtifactInfo{
		Path:       "docfind_bg.wasm",
		Version:    1,
		Documents:  12,
		Keywords:   340,
		ImageSize:  4096,
		ModuleSize: 65536,
		IndexBase:  1024,
		IndexLen:   4096,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "docfind_bg.wasm")
	assert.Contains(t, out, "Version:    1")
	assert.Contains(t, out, "Documents:  12")
	assert.Contains(t, out, "4.0 KB")
	assert.Contains(t, out, "INDEX_BASE: 1024")
}

func TestArtifactRendererRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewArtifactRenderer(&buf, true)

	info := ArtifactInfo{Path: "docfind_bg.wasm", Version: 1, Documents: 5}
	require.NoError(t, r.RenderJSON(info))

	var decoded ArtifactInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, info, decoded)
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{500, "500 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatBytes(tc.bytes))
	}
}
