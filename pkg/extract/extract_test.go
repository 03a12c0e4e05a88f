package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfind-go/docfind/internal/config"
	"github.com/docfind-go/docfind/pkg/ingest"
)

func defaultExtractConfig() config.ExtractConfig {
	return config.DefaultConfig().Extract
}

func TestDocumentProducesContributions(t *testing.T) {
	doc := ingest.Document{
		DocID:      0,
		LowerTitle: "getting started",
		LowerBody:  "intro guide",
	}
	contribs := Document(doc, defaultExtractConfig())
	require.NotEmpty(t, contribs)
	for _, c := range contribs {
		assert.Equal(t, uint32(0), c.DocID)
		assert.Greater(t, c.Value, 0.0)
	}
}

func TestDocumentWithNoTextFieldsYieldsNoContributions(t *testing.T) {
	doc := ingest.Document{DocID: 0}
	contribs := Document(doc, defaultExtractConfig())
	assert.Empty(t, contribs)
}

func TestDocumentIsDeterministic(t *testing.T) {
	doc := ingest.Document{
		DocID:         1,
		LowerTitle:    "api reference guide",
		LowerCategory: "docs",
		LowerBody:     "search functions and indexing guide for developers",
	}
	cfg := defaultExtractConfig()
	a := Document(doc, cfg)
	b := Document(doc, cfg)
	assert.Equal(t, a, b)
}

func TestDocumentDropsShortAndNumericPhrases(t *testing.T) {
	doc := ingest.Document{
		DocID:      0,
		LowerTitle: "a 123 report",
	}
	contribs := Document(doc, defaultExtractConfig())
	for _, c := range contribs {
		assert.NotEqual(t, "123", c.Phrase)
		assert.Greater(t, len(c.Phrase), 1)
	}
}

func TestDocumentHighestBodyPhraseGetsBodyWeight(t *testing.T) {
	cfg := defaultExtractConfig()
	doc := ingest.Document{
		DocID:     0,
		LowerBody: "unique keyword phrase",
	}
	contribs := Document(doc, cfg)
	require.NotEmpty(t, contribs)
	maxVal := 0.0
	for _, c := range contribs {
		if c.Value > maxVal {
			maxVal = c.Value
		}
	}
	assert.InDelta(t, cfg.TierWeightBody, maxVal, 1e-9)
}

func TestAllGroupsByDocIDRegardlessOfWorkerCount(t *testing.T) {
	docs := []ingest.Document{
		{DocID: 0, LowerTitle: "getting started"},
		{DocID: 1, LowerTitle: "api reference"},
		{DocID: 2, LowerBody: "search functions"},
	}
	cfg := defaultExtractConfig()

	single, err := All(context.Background(), docs, cfg, 1)
	require.NoError(t, err)
	parallel, err := All(context.Background(), docs, cfg, 4)
	require.NoError(t, err)

	assert.ElementsMatch(t, single, parallel)
}

func TestAllEmptyDocsReturnsEmpty(t *testing.T) {
	out, err := All(context.Background(), nil, defaultExtractConfig(), 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCandidatePhrasesSplitsOnStopWordsAndPunctuation(t *testing.T) {
	phrases := candidatePhrases("the quick, brown fox jumps over the lazy dog", 4)
	require.NotEmpty(t, phrases)
	for _, p := range phrases {
		assert.LessOrEqual(t, len(p), 4)
	}
}

func TestCandidatePhrasesRespectsMaxTokens(t *testing.T) {
	phrases := candidatePhrases("aaa bbb ccc ddd eee fff", 2)
	for _, p := range phrases {
		assert.LessOrEqual(t, len(p), 2)
	}
}
