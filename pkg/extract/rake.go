package extract

import (
	"strings"
	"unicode"
)

// candidatePhrases splits lowercased text into RAKE candidate phrases:
// maximal runs of non-stop-words, with punctuation and stop words acting
// as delimiters. maxTokens bounds how many tokens a candidate may carry;
// longer runs are cut into maxTokens-sized windows rather than discarded
// wholesale, so a long stop-word-free run still yields phrases.
func candidatePhrases(text string, maxTokens int) [][]string {
	words := splitWords(text)

	var phrases [][]string
	var current []string

	flush := func() {
		for len(current) > 0 {
			n := len(current)
			if n > maxTokens {
				n = maxTokens
			}
			phrases = append(phrases, current[:n])
			current = current[n:]
		}
	}

	for _, w := range words {
		if w == "" {
			flush()
			continue
		}
		if _, stop := englishStopWords[w]; stop {
			flush()
			continue
		}
		current = append(current, w)
	}
	flush()

	return phrases
}

// splitWords tokenizes on runs of non-letter-non-digit runes, emitting an
// empty string for each punctuation delimiter so candidatePhrases can tell
// "stop word boundary" (no emitted delimiter) from "punctuation boundary"
// (delimiter present) without losing delimiter positions.
func splitWords(text string) []string {
	var words []string
	var b strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
		words = append(words, "")
	}
	if b.Len() > 0 {
		words = append(words, b.String())
	}

	return words
}

// rakeScores computes word degree/frequency scores and sums them into a
// phrase score for each candidate phrase, per the RAKE algorithm: a word's
// score is its degree (co-occurrence count across all candidate phrases,
// including with itself) divided by its frequency; a phrase's score is the
// sum of its words' scores.
func rakeScores(phrases [][]string) map[string]float64 {
	freq := make(map[string]int)
	degree := make(map[string]int)

	for _, phrase := range phrases {
		n := len(phrase)
		for _, w := range phrase {
			freq[w]++
			degree[w] += n - 1 // co-occurrence with the other words in the phrase
		}
	}
	for w := range freq {
		degree[w] += freq[w] // a word co-occurs with itself once per occurrence
	}

	wordScore := make(map[string]float64, len(freq))
	for w, f := range freq {
		wordScore[w] = float64(degree[w]) / float64(f)
	}

	scores := make(map[string]float64)
	for _, phrase := range phrases {
		key := strings.Join(phrase, " ")
		var s float64
		for _, w := range phrase {
			s += wordScore[w]
		}
		if existing, ok := scores[key]; !ok || s > existing {
			scores[key] = s
		}
	}

	return scores
}
