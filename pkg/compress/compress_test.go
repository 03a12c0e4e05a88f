package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfind-go/docfind/pkg/ingest"
)

func TestTrainAndRoundTrip(t *testing.T) {
	sample := []byte("the quick brown fox jumps over the lazy dog the quick brown fox again and again")
	table := Train(sample)

	for _, s := range []string{"the quick brown fox", "lazy dog", "", "z", "unseen string entirely"} {
		compressed := table.Compress([]byte(s))
		decompressed, err := table.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, s, string(decompressed))
	}
}

func TestCompressShrinksRepeatedSubstrings(t *testing.T) {
	sample := []byte("documentation documentation documentation documentation documentation")
	table := Train(sample)
	compressed := table.Compress([]byte("documentation documentation"))
	assert.Less(t, len(compressed), len("documentation documentation"))
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	sample := []byte("search functions and indexing guide for developers building search")
	table := Train(sample)

	blob := table.Marshal()
	restored, err := Unmarshal(blob)
	require.NoError(t, err)

	for _, s := range []string{"search functions", "indexing guide", ""} {
		a := table.Compress([]byte(s))
		b := restored.Compress([]byte(s))
		assert.Equal(t, a, b)
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	sample := []byte("alpha beta gamma delta alpha beta gamma delta alpha beta")
	a := Train(sample)
	b := Train(sample)
	assert.Equal(t, a.Marshal(), b.Marshal())
}

func TestInternerDedupsIdenticalStrings(t *testing.T) {
	table := Train([]byte("shared body text shared body text"))
	in := NewInterner(table)

	id1 := in.Intern("shared body text")
	id2 := in.Intern("shared body text")
	assert.Equal(t, id1, id2)
	assert.Len(t, in.Strings(), 1)
}

func TestInternerEmptyStringIsZero(t *testing.T) {
	table := Train([]byte("anything"))
	in := NewInterner(table)
	assert.Equal(t, uint32(0), in.Intern(""))
	assert.Empty(t, in.Strings())
}

func TestInternerAssignsSequentialIDs(t *testing.T) {
	table := Train([]byte("one two three"))
	in := NewInterner(table)
	id1 := in.Intern("one")
	id2 := in.Intern("two")
	assert.Equal(t, uint32(1), id1)
	assert.Equal(t, uint32(2), id2)
}

func TestBuildSampleRespectsCap(t *testing.T) {
	docs := []ingest.Document{
		{Title: "hello", Body: "world of documents"},
	}
	sample := BuildSample(docs, 5)
	assert.Len(t, sample, 5)
}

func TestBuildSampleConcatenatesFields(t *testing.T) {
	docs := []ingest.Document{
		{Title: "t1", Category: "c1", Href: "/h1", Body: "b1"},
	}
	sample := BuildSample(docs, 1<<20)
	assert.Equal(t, "t1c1/h1b1", string(sample))
}
