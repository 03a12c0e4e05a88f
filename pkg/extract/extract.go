// Package extract produces scored keyphrases from ingested documents using
// the RAKE algorithm over three fixed source tiers.
package extract

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/docfind-go/docfind/internal/config"
	"github.com/docfind-go/docfind/pkg/ingest"
)

// Tier identifies which document field a contribution was extracted from.
type Tier int

const (
	TierMetadata Tier = iota
	TierTitle
	TierBody
)

func (t Tier) String() string {
	switch t {
	case TierMetadata:
		return "metadata"
	case TierTitle:
		return "title"
	case TierBody:
		return "body"
	default:
		return "unknown"
	}
}

// Contribution is one (phrase, doc_id, tier, contribution) triple, the raw
// material the posting aggregator (C3) groups and sums.
type Contribution struct {
	Phrase string
	DocID  uint32
	Tier   Tier
	Value  float64
}

// Document extracts every surviving keyphrase contribution from a single
// document. It is deterministic: the same document always yields the same
// contributions in the same order.
func Document(doc ingest.Document, cfg config.ExtractConfig) []Contribution {
	type candidate struct {
		phrase string
		tier   Tier
		raw    float64
	}

	var candidates []candidate

	tiers := []struct {
		tier Tier
		text string
	}{
		{TierMetadata, doc.LowerCategory},
		{TierTitle, doc.LowerTitle},
		{TierBody, doc.LowerBody},
	}

	for _, t := range tiers {
		if strings.TrimSpace(t.text) == "" {
			continue
		}
		phrases := candidatePhrases(t.text, cfg.MaxPhraseTokens)
		scores := rakeScores(phrases)
		for phrase, raw := range scores {
			if !keepPhrase(phrase) {
				continue
			}
			candidates = append(candidates, candidate{phrase: phrase, tier: t.tier, raw: raw})
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	docMax := 0.0
	for _, c := range candidates {
		if c.raw > docMax {
			docMax = c.raw
		}
	}
	if docMax <= 0 {
		return nil
	}

	contributions := make([]Contribution, 0, len(candidates))
	for _, c := range candidates {
		weight := tierWeight(cfg, c.tier)
		contributions = append(contributions, Contribution{
			Phrase: c.phrase,
			DocID:  doc.DocID,
			Tier:   c.tier,
			Value:  weight * (c.raw / docMax),
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Tier != contributions[j].Tier {
			return contributions[i].Tier < contributions[j].Tier
		}
		return contributions[i].Phrase < contributions[j].Phrase
	})

	return contributions
}

// keepPhrase applies the two unconditional phrase filters: drop anything
// shorter than two characters after trimming, and drop all-digit phrases.
func keepPhrase(phrase string) bool {
	trimmed := strings.TrimSpace(phrase)
	if len(trimmed) < 2 {
		return false
	}
	onlyDigits := true
	for _, r := range trimmed {
		if r == ' ' {
			continue
		}
		if r < '0' || r > '9' {
			onlyDigits = false
			break
		}
	}
	return !onlyDigits
}

func tierWeight(cfg config.ExtractConfig, tier Tier) float64 {
	switch tier {
	case TierMetadata:
		return cfg.TierWeightMetadata
	case TierTitle:
		return cfg.TierWeightTitle
	case TierBody:
		return cfg.TierWeightBody
	default:
		return 0
	}
}

// All extracts contributions for every document, fanning work out across
// workers goroutines (0 means runtime.NumCPU()). Output order is always
// grouped by doc_id regardless of completion order, so the result is
// identical no matter how many workers ran it — the posting aggregator
// re-sorts by phrase anyway, but this keeps each stage independently
// deterministic per spec.md §5.
func All(ctx context.Context, docs []ingest.Document, cfg config.ExtractConfig, workers int) ([]Contribution, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([][]Contribution, len(docs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = Document(doc, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Contribution
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
