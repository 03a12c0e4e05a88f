package ingest

import (
	"testing"

	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestEmptyArray(t *testing.T) {
	docs, err := Ingest([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestAssignsSequentialDocIDs(t *testing.T) {
	docs, err := Ingest([]byte(`[{"title":"A"},{"title":"B"},{"title":"C"}]`))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, d := range docs {
		assert.Equal(t, uint32(i), d.DocID)
	}
}

func TestIngestNormalizesCase(t *testing.T) {
	docs, err := Ingest([]byte(`[{"title":"Getting Started","body":"Intro Guide"}]`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Getting Started", docs[0].Title)
	assert.Equal(t, "getting started", docs[0].LowerTitle)
	assert.Equal(t, "Intro Guide", docs[0].Body)
	assert.Equal(t, "intro guide", docs[0].LowerBody)
}

func TestIngestCategoryAsArray(t *testing.T) {
	docs, err := Ingest([]byte(`[{"title":"x","category":["Docs","Guides"]}]`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Docs Guides", docs[0].Category)
}

func TestIngestCategoryAsString(t *testing.T) {
	docs, err := Ingest([]byte(`[{"title":"x","category":"Docs"}]`))
	require.NoError(t, err)
	assert.Equal(t, "Docs", docs[0].Category)
}

func TestIngestHrefOnlyDocument(t *testing.T) {
	docs, err := Ingest([]byte(`[{"href":"/only"}]`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "/only", docs[0].Href)
	assert.Empty(t, docs[0].Title)
}

func TestIngestRejectsNonArrayInput(t *testing.T) {
	_, err := Ingest([]byte(`{"title":"x"}`))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeInputMalformed, de.Code)
}

func TestIngestRejectsDocumentWithNoTextualFields(t *testing.T) {
	_, err := Ingest([]byte(`[{}]`))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeInputMalformed, de.Code)
}

func TestIngestRejectsNonStringField(t *testing.T) {
	_, err := Ingest([]byte(`[{"title":42}]`))
	require.Error(t, err)
	de, ok := err.(*dferrors.DocfindError)
	require.True(t, ok)
	assert.Equal(t, dferrors.ErrCodeInputMalformed, de.Code)
}

func TestIngestRejectsMalformedJSON(t *testing.T) {
	_, err := Ingest([]byte(`[{"title":`))
	require.Error(t, err)
}

func TestIngestIgnoresUnknownFields(t *testing.T) {
	docs, err := Ingest([]byte(`[{"title":"x","unknown":"field","extra":123}]`))
	require.NoError(t, err)
	assert.Equal(t, "x", docs[0].Title)
}
