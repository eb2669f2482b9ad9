package extract

import (
	"strings"
)

const (
	minClaimLength = 30
	maxClaimLength = 500
)

// claimKeywords mark sentences that state something checkable
var claimKeywords = []string{
	"according to", "said", "says", "reported", "announced", "confirmed",
	"found", "study", "research", "survey", "percent", "%", "million",
	"billion", "first", "record", "will", "must", "is required",
	"established", "discovered", "revealed",
}

// Claims returns sentences from text that look like checkable factual claims,
// in order of appearance and without duplicates
func Claims(text string) []string {
	var claims []string
	seen := make(map[string]bool)

	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, keyword := range claimKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			if !seen[lower] {
				seen[lower] = true
				claims = append(claims, sentence)
			}
			break // Only match once per sentence
		}
	}

	return claims
}

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	keep := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= minClaimLength && len(sentence) <= maxClaimLength {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on abbreviations and decimals
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				keep()
			}
		}
	}

	if current.Len() > 0 {
		keep()
	}

	return sentences
}
