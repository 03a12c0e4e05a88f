// Package query implements the query-time engine: fuzzy keyword lookup
// over the deserialized index image, score accumulation, and ranking.
package query

import (
	"sort"
	"strings"
	"unicode"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"

	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/compress"
	"github.com/docfind-go/docfind/pkg/index"
)

const (
	// DefaultMaxResults is used when a caller requests the default top-N.
	DefaultMaxResults = 10
	// MaxResultsCap is the upper bound max_results is clamped to.
	MaxResultsCap = 1000
)

// Result is one ranked, fully-materialized document match.
type Result struct {
	DocID    uint32
	Title    string
	Category string
	Href     string
	Body     string
	Score    float32
}

// Engine holds a deserialized image and answers queries against it. The
// zero value is Uninit; it becomes usable only through NewEngine.
type Engine struct {
	img   *index.Image
	fst   *vellum.FST
	table *compress.Table
}

// NewEngine builds a ready Engine directly from a decoded image — used
// by the host bridge (C9) once it has successfully deserialized the
// embedded bytes.
func NewEngine(img *index.Image) (*Engine, error) {
	fst, err := vellum.Load(img.FST)
	if err != nil {
		return nil, dferrors.IndexCorrupt("failed to load FST from image", err)
	}
	table, err := compress.Unmarshal(img.CompressorBlob)
	if err != nil {
		return nil, err
	}
	return &Engine{img: img, fst: fst, table: table}, nil
}

// editBudget chooses the Levenshtein edit distance a token is matched
// with, per spec.md §4.7: short tokens tolerate no edits, medium tokens
// tolerate one, long tokens tolerate two.
func editBudget(tokenLen int) uint8 {
	switch {
	case tokenLen <= 3:
		return 0
	case tokenLen <= 7:
		return 1
	default:
		return 2
	}
}

// tokenize lowercases needle and splits it on non-alphanumeric runes,
// dropping empty tokens.
func tokenize(needle string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(needle) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// clampMaxResults applies spec.md §4.7/§6's default and cap: 0 stays 0
// (an explicit empty result set), an unset caller default is 10, and
// anything above 1000 is clamped to 1000.
func clampMaxResults(maxResults uint32, explicit bool) uint32 {
	if !explicit {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxResultsCap {
		return MaxResultsCap
	}
	return maxResults
}

// Search runs the query algorithm in spec.md §4.7 and returns ranked,
// materialized results. A query with zero effective tokens, or a
// max_results of zero, returns an empty (non-nil-safe) slice rather than
// an error — per spec.md §7 "QueryOk with zero results" is not an error.
func (e *Engine) Search(needle string, maxResults uint32, explicitMaxResults bool) ([]Result, error) {
	limit := clampMaxResults(maxResults, explicitMaxResults)
	if limit == 0 {
		return nil, nil
	}

	tokens := tokenize(needle)
	if len(tokens) == 0 {
		return nil, nil
	}

	acc := make(map[uint32]float32)
	for _, tok := range tokens {
		edits := editBudget(len(tok))
		if err := e.accumulateToken(tok, edits, acc); err != nil {
			return nil, err
		}
	}

	type scored struct {
		docID uint32
		score float32
	}
	ranked := make([]scored, 0, len(acc))
	for docID, score := range acc {
		ranked = append(ranked, scored{docID: docID, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].docID < ranked[j].docID
	})
	if uint32(len(ranked)) > limit {
		ranked = ranked[:limit]
	}

	results := make([]Result, 0, len(ranked))
	for _, s := range ranked {
		r, err := e.materialize(s.docID, s.score)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// accumulateToken streams the FST through a bounded-edit Levenshtein
// automaton built over tok, loading the matched postings lists and
// accumulating each posting's weighted score into acc.
func (e *Engine) accumulateToken(tok string, edits uint8, acc map[uint32]float32) error {
	builder, err := levenshtein.NewLevenshteinAutomatonBuilder(edits, false)
	if err != nil {
		return dferrors.IndexCorrupt("failed to build levenshtein automaton builder", err)
	}
	dfa, err := builder.BuildDfa(tok, edits)
	if err != nil {
		return dferrors.IndexCorrupt("failed to build levenshtein automaton", err)
	}

	itr, err := e.fst.Search(dfa, nil, nil)
	tokenWeight := float32(1) / float32(1+edits)

	for err == nil {
		_, slot := itr.Current()
		if int(slot) < len(e.img.Postings) {
			for _, p := range e.img.Postings[slot] {
				acc[p.DocID] += p.Score * tokenWeight
			}
		}
		err = itr.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return dferrors.IndexCorrupt("failed to iterate FST during search", err)
	}
	return nil
}

// materialize resolves a matched doc_id's string_ids through the
// compressor into display-ready fields.
func (e *Engine) materialize(docID uint32, score float32) (Result, error) {
	rec := e.img.Docs[docID]

	title, err := e.decompressField(rec.Title)
	if err != nil {
		return Result{}, err
	}
	category, err := e.decompressField(rec.Category)
	if err != nil {
		return Result{}, err
	}
	href, err := e.decompressField(rec.Href)
	if err != nil {
		return Result{}, err
	}
	body, err := e.decompressField(rec.Body)
	if err != nil {
		return Result{}, err
	}

	return Result{
		DocID:    docID,
		Title:    title,
		Category: category,
		Href:     href,
		Body:     body,
		Score:    score,
	}, nil
}

func (e *Engine) decompressField(stringID uint32) (string, error) {
	if stringID == 0 {
		return "", nil
	}
	if int(stringID) > len(e.img.Strings) {
		return "", dferrors.IndexCorrupt("doc record references out-of-range string_id", nil)
	}
	raw, err := e.table.Decompress(e.img.Strings[stringID-1])
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
