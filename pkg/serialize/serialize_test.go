package serialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfind-go/docfind/internal/config"
	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/aggregate"
	"github.com/docfind-go/docfind/pkg/extract"
	"github.com/docfind-go/docfind/pkg/index"
	"github.com/docfind-go/docfind/pkg/ingest"
)

func buildImage(t *testing.T, raw string) *index.Image {
	t.Helper()
	docs, err := ingest.Ingest([]byte(raw))
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	contribs, err := extract.All(context.Background(), docs, cfg.Extract, 1)
	require.NoError(t, err)
	postings, err := aggregate.Aggregate(contribs)
	require.NoError(t, err)
	img, err := index.Build(docs, postings, *cfg)
	require.NoError(t, err)
	return img
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := buildImage(t, `[
		{"title":"Getting Started","href":"/a","body":"intro guide"},
		{"title":"API Reference","href":"/b","body":"search functions"}
	]`)

	encoded := Encode(img)
	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, img.Version, decoded.Version)
	assert.Equal(t, img.FST, decoded.FST)
	assert.Equal(t, img.Postings, decoded.Postings)
	assert.Equal(t, img.CompressorBlob, decoded.CompressorBlob)
	assert.Equal(t, img.Strings, decoded.Strings)
	assert.Equal(t, img.Docs, decoded.Docs)
}

func TestEncodeDecodeEmptyImage(t *testing.T) {
	img := buildImage(t, `[]`)
	decoded, err := Decode(Encode(img))
	require.NoError(t, err)
	assert.Empty(t, decoded.Docs)
	assert.Empty(t, decoded.Postings)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := []byte("XXXX\x01\x00\x00\x00")
	_, err := Decode(data)
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeIndexCorrupt, de.Code)
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	img := buildImage(t, `[{"title":"x","href":"/a"}]`)
	img.Version = 99
	encoded := Encode(img)

	_, err := Decode(encoded)
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeIndexVersionMismatch, de.Code)
}

func TestDecodeRejectsCorruptFST(t *testing.T) {
	img := buildImage(t, `[
		{"title":"Getting Started","href":"/a","body":"intro guide"},
		{"title":"API Reference","href":"/b","body":"search functions"}
	]`)
	encoded := Encode(img)

	// Flip a byte inside the fst_bytes section (offset 12 is just past the
	// 8-byte header and the 4-byte fst_bytes length prefix).
	corrupt := append([]byte(nil), encoded...)
	corrupt[12] ^= 0xFF

	_, err := Decode(corrupt)
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeIndexCorrupt, de.Code)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	img := buildImage(t, `[{"title":"x","href":"/a"}]`)
	encoded := Encode(img)
	_, err := Decode(encoded[:len(encoded)-3])
	require.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	img := buildImage(t, `[{"title":"x","href":"/a"}]`)
	encoded := append(Encode(img), 0xAB)
	_, err := Decode(encoded)
	require.Error(t, err)
}
