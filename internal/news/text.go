package news

import (
	"regexp"
	"sort"
	"strings"
)

const maxKeywords = 10

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "about": true,
	"of": true,
}

var punctuation = regexp.MustCompile(`[^A-Za-z0-9_\s]`)

type categoryKeywords struct {
	name     string
	keywords []string
}

// checked in this order; an article can match several
var categoryTable = []categoryKeywords{
	{"politics", []string{"government", "president", "election", "congress", "senate", "vote", "political", "policy", "democrat", "republican"}},
	{"business", []string{"economy", "market", "stock", "company", "industry", "financial", "investment", "corporate", "trade", "economic"}},
	{"technology", []string{"tech", "software", "hardware", "digital", "internet", "app", "computer", "ai", "artificial intelligence", "innovation"}},
	{"health", []string{"medical", "health", "disease", "treatment", "doctor", "patient", "hospital", "medicine", "vaccine", "healthcare"}},
	{"science", []string{"research", "scientist", "study", "discovery", "experiment", "physics", "biology", "chemistry", "space", "climate"}},
	{"sports", []string{"game", "team", "player", "championship", "tournament", "match", "coach", "athlete", "score", "win"}},
	{"entertainment", []string{"movie", "film", "music", "celebrity", "actor", "actress", "director", "show", "television", "hollywood"}},
}

// Categorize tags an article with every category whose keywords appear in
// its title or content (substring match), or "general" when none do
func Categorize(title, content string) []string {
	text := strings.ToLower(title + " " + content)

	var matched []string
	for _, c := range categoryTable {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, c.name)
				break
			}
		}
	}

	if len(matched) == 0 {
		return []string{"general"}
	}
	return matched
}

// Keywords returns up to ten of the most frequent words longer than three
// characters, ties broken by first appearance
func Keywords(text string) []string {
	if text == "" {
		return []string{}
	}

	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), "")

	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(cleaned) {
		if stopWords[w] || len(w) <= 3 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}
