// Package aggregate merges per-document keyphrase contributions into the
// sorted, unique keyword list with per-keyword posting lists the FST
// builder requires.
package aggregate

import (
	"sort"

	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/extract"
)

// Posting is one (doc_id, score) record attached to a keyword.
type Posting struct {
	DocID uint32
	Score float32
}

// KeywordPostings is one keyword and its posting list, sorted by doc_id
// ascending.
type KeywordPostings struct {
	Phrase   string
	Postings []Posting
}

// Aggregate groups contributions by phrase, summing contributions sharing
// a doc_id within each phrase group, then returns the groups sorted by
// phrase bytes ascending — the order the FST builder requires. Sorting
// here happens regardless of how many workers produced the contributions
// (spec.md §5), so the result is deterministic independent of C2's
// parallelism.
func Aggregate(contributions []extract.Contribution) ([]KeywordPostings, error) {
	type key struct {
		phrase string
		docID  uint32
	}
	sums := make(map[key]float64)
	order := make(map[string][]uint32) // first-seen doc_id order per phrase, for stable posting assembly
	seenDoc := make(map[key]bool)

	for _, c := range contributions {
		k := key{phrase: c.Phrase, docID: c.DocID}
		sums[k] += c.Value
		if !seenDoc[k] {
			seenDoc[k] = true
			order[c.Phrase] = append(order[c.Phrase], c.DocID)
		}
	}

	phrases := make([]string, 0, len(order))
	for p := range order {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)

	result := make([]KeywordPostings, 0, len(phrases))
	for _, phrase := range phrases {
		docIDs := append([]uint32(nil), order[phrase]...)
		sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

		postings := make([]Posting, 0, len(docIDs))
		for _, docID := range docIDs {
			postings = append(postings, Posting{
				DocID: docID,
				Score: float32(sums[key{phrase: phrase, docID: docID}]),
			})
		}
		result = append(result, KeywordPostings{Phrase: phrase, Postings: postings})
	}

	if err := validateOrder(result); err != nil {
		return nil, err
	}

	return result, nil
}

// validateOrder enforces the FST's strictly-increasing key requirement.
// A violation here indicates a programmer error in Aggregate itself, not a
// malformed input — per spec.md §7 this is a BuilderInvariant.
func validateOrder(result []KeywordPostings) error {
	for i := 1; i < len(result); i++ {
		if result[i-1].Phrase >= result[i].Phrase {
			return dferrors.BuilderInvariant("keyword table is not strictly increasing after sort", nil).
				WithDetail("prev", result[i-1].Phrase).
				WithDetail("next", result[i].Phrase)
		}
	}
	for _, kp := range result {
		if len(kp.Postings) == 0 {
			return dferrors.BuilderInvariant("keyword has an empty posting list", nil).
				WithDetail("phrase", kp.Phrase)
		}
		for i := 1; i < len(kp.Postings); i++ {
			if kp.Postings[i-1].DocID >= kp.Postings[i].DocID {
				return dferrors.BuilderInvariant("posting list is not sorted by doc_id ascending", nil).
					WithDetail("phrase", kp.Phrase)
			}
		}
	}
	return nil
}
