package credibility

import (
	"regexp"
	"strings"
)

// Indicator is a fixed lexical rule. When Pattern matches anywhere in the
// lower-cased article text, Impact is added to the score once.
type Indicator struct {
	Pattern *regexp.Regexp
	Impact  int
	Reason  string
}

// Expression returns the alternation the indicator matches, for explanations
func (i Indicator) Expression() string {
	return strings.TrimPrefix(i.Pattern.String(), "(?i)")
}

// claimThreshold is the minimum absolute impact that earns a claim
const claimThreshold = 5

var indicators = []Indicator{
	{
		Pattern: regexp.MustCompile(`(?i)\b(breaking|exclusive|shocking)\b`),
		Impact:  -5,
		Reason:  "Sensationalist language",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(allegedly|reportedly|sources say|anonymous source)\b`),
		Impact:  -3,
		Reason:  "Unverified sources",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(study shows|research indicates|according to experts|data reveals)\b`),
		Impact:  5,
		Reason:  "Reference to research or experts",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(all|every|always|never|no one|everyone)\b`),
		Impact:  -4,
		Reason:  "Absolute language",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(may|might|could|suggests|appears|seems)\b`),
		Impact:  3,
		Reason:  "Nuanced language",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(conspiracy|coverup|they don't want you to know|secret plan)\b`),
		Impact:  -8,
		Reason:  "Conspiracy theory language",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(miracle|cure|revolutionary|breakthrough|game-changer)\b`),
		Impact:  -6,
		Reason:  "Exaggerated claims",
	},
}

// Indicators returns a copy of the fixed indicator table in evaluation order
func Indicators() []Indicator {
	out := make([]Indicator, len(indicators))
	copy(out, indicators)
	return out
}

var (
	citationPattern  = regexp.MustCompile(`according to|said|reported|study|research|survey`)
	clickbaitPattern = regexp.MustCompile(`(?i)you won't believe|shocking|mind-blowing|amazing|incredible|unbelievable|secret|trick|hack|this is why|here's why|the truth about|what they don't want you to know`)
)

var perspectiveMarkers = []string{"however", "on the other hand", "critics say"}
