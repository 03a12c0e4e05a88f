package index

import (
	"bytes"
	"fmt"
	"math"

	"github.com/blevesearch/vellum"

	"github.com/docfind-go/docfind/internal/config"
	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/aggregate"
	"github.com/docfind-go/docfind/pkg/compress"
	"github.com/docfind-go/docfind/pkg/ingest"
)

// Build assembles an Image from ingested documents and their aggregated
// keyword postings. keywordPostings must already be sorted by phrase
// bytes ascending (aggregate.Aggregate guarantees this); Build fails
// loudly with BuilderInvariant rather than silently re-sorting, per
// spec.md's FST construction requirement.
func Build(docs []ingest.Document, keywordPostings []aggregate.KeywordPostings, cfg config.Config) (*Image, error) {
	table := compress.Train(compress.BuildSample(docs, cfg.Build.SampleBytes))
	interner := compress.NewInterner(table)

	// Deterministic string_id assignment: doc_id ascending, then a fixed
	// field order within each document (spec.md's parallel-build
	// determinism note).
	docRecords := make([]DocRecord, len(docs))
	for i, doc := range docs {
		docRecords[i] = DocRecord{
			Title:    interner.Intern(doc.Title),
			Category: interner.Intern(doc.Category),
			Href:     interner.Intern(doc.Href),
			Body:     interner.Intern(doc.Body),
		}
	}

	fstBytes, err := buildFST(keywordPostings)
	if err != nil {
		return nil, err
	}

	postings := make([][]aggregate.Posting, len(keywordPostings))
	for i, kp := range keywordPostings {
		postings[i] = kp.Postings
	}

	img := &Image{
		Version:        CurrentVersion,
		FST:            fstBytes,
		Postings:       postings,
		CompressorBlob: table.Marshal(),
		Strings:        interner.Strings(),
		Docs:           docRecords,
	}

	if err := Validate(img); err != nil {
		return nil, err
	}

	return img, nil
}

// buildFST streams keywordPostings into a vellum FST, mapping each
// keyword to its zero-based slot index in the postings list. vellum
// requires keys inserted in byte-lex order and returns an error if that
// order is violated, which Build surfaces as a BuilderInvariant.
func buildFST(keywordPostings []aggregate.KeywordPostings) ([]byte, error) {
	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, dferrors.BuilderInvariant("failed to create FST builder", err)
	}

	for slot, kp := range keywordPostings {
		if err := builder.Insert([]byte(kp.Phrase), uint64(slot)); err != nil {
			return nil, dferrors.BuilderInvariant(
				fmt.Sprintf("failed to insert keyword %q into FST", kp.Phrase), err)
		}
	}

	if err := builder.Close(); err != nil {
		return nil, dferrors.BuilderInvariant("failed to finalize FST", err)
	}

	return buf.Bytes(), nil
}

// Validate checks the image invariants spec.md §3 pins: every posting's
// doc_id is in range and its score is a positive finite number, every
// DocRecord field is a valid string_id, and the FST's keys enumerate in
// strictly increasing order.
func Validate(img *Image) error {
	for slot, postings := range img.Postings {
		for _, p := range postings {
			if int(p.DocID) >= len(img.Docs) {
				return dferrors.BuilderInvariant("posting doc_id out of range", nil).
					WithDetail("slot", fmt.Sprintf("%d", slot)).
					WithDetail("doc_id", fmt.Sprintf("%d", p.DocID))
			}
			if !(p.Score > 0) || math.IsInf(float64(p.Score), 0) || math.IsNaN(float64(p.Score)) {
				return dferrors.BuilderInvariant("posting score must be positive and finite", nil).
					WithDetail("slot", fmt.Sprintf("%d", slot)).
					WithDetail("score", fmt.Sprintf("%v", p.Score))
			}
		}
	}

	for i, rec := range img.Docs {
		for name, id := range map[string]uint32{
			"title": rec.Title, "category": rec.Category, "href": rec.Href, "body": rec.Body,
		} {
			if int(id) > len(img.Strings) {
				return dferrors.BuilderInvariant("doc record references out-of-range string_id", nil).
					WithDetail("doc_id", fmt.Sprintf("%d", i)).
					WithDetail("field", name)
			}
		}
	}

	fst, err := vellum.Load(img.FST)
	if err != nil {
		return dferrors.BuilderInvariant("failed to load FST for validation", err)
	}
	itr, err := fst.Iterator(nil, nil)
	var prev []byte
	for err == nil {
		key, val := itr.Current()
		if prev != nil && bytes.Compare(prev, key) >= 0 {
			return dferrors.BuilderInvariant("FST keys are not strictly increasing", nil)
		}
		if int(val) >= len(img.Postings) {
			return dferrors.BuilderInvariant("FST value references out-of-range postings slot", nil).
				WithDetail("keyword", string(key))
		}
		prev = append([]byte(nil), key...)
		err = itr.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return dferrors.BuilderInvariant("failed to iterate FST during validation", err)
	}

	return nil
}
