package credibility

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/ppiankov/newsmania/internal/model"
)

const (
	neutralPrior = 50.0

	// detailedContentChars is the body length, in UTF-16 code units, above which
	// an article without multiple perspectives still counts as detailed reporting
	detailedContentChars = 500
)

// Scorer assigns a 0-100 credibility score to an article from a fixed set of
// additive signals. It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	trust *TrustTable
}

// NewScorer creates a scorer backed by the given trust table.
// A nil table means the built-in one.
func NewScorer(trust *TrustTable) *Scorer {
	if trust == nil {
		trust = DefaultTrustTable()
	}
	return &Scorer{trust: trust}
}

// Score evaluates every signal in a fixed order, clamps the sum to 0-100 and
// attaches the tier narrative of the clamped, unrounded sum. Claims are
// returned in evaluation order.
func (s *Scorer) Score(article model.Article) model.CredibilityVerdict {
	score := neutralPrior
	claims := make([]model.Claim, 0, 8)

	// 1. Source reputation
	delta, claim := s.sourceSignal(article.Source.Name)
	score += delta
	claims = append(claims, claim)

	text := strings.ToLower(article.Title + " " + article.Description + " " + article.Content)

	// 2. Lexical indicators
	for _, ind := range indicators {
		if !ind.Pattern.MatchString(text) {
			continue
		}
		score += float64(ind.Impact)
		if abs(ind.Impact) >= claimThreshold {
			claims = append(claims, lexicalClaim(ind))
		}
	}

	// 3. Balance
	delta, claim = balanceSignal(text, article.Content)
	score += delta
	claims = append(claims, claim)

	// 4. Citations
	delta, claim = citationSignal(text)
	score += delta
	claims = append(claims, claim)

	// 5. Clickbait title
	if clickbaitPattern.MatchString(article.Title) {
		score -= 15
		claims = append(claims, model.Claim{
			Claim:       "Clickbait title",
			Verdict:     model.VerdictFalse,
			Explanation: "The article uses sensationalist language in its title, which is often associated with less credible content.",
		})
	}

	clamped := clamp(score)

	return model.CredibilityVerdict{
		IsFactChecked:    true,
		CredibilityScore: int(math.Round(clamped)),
		FactCheckResult:  Narrative(clamped),
		ClaimsAnalyzed:   claims,
	}
}

// Annotate returns a copy of the article carrying its credibility score
func (s *Scorer) Annotate(article model.Article) model.Article {
	v := s.Score(article)
	score := v.CredibilityScore
	article.CredibilityScore = &score
	article.IsFactChecked = v.IsFactChecked
	article.FactCheckResult = v.FactCheckResult
	return article
}

// Clamp bounds a raw score to 0-100 and rounds it to the nearest integer
func Clamp(raw float64) int {
	return int(math.Round(clamp(raw)))
}

// clamp bounds a raw score to 0-100; tiers are picked from this unrounded value
func clamp(raw float64) float64 {
	return math.Max(0, math.Min(100, raw))
}

func (s *Scorer) sourceSignal(name string) (float64, model.Claim) {
	trust := s.trust.Trust(name)
	delta := float64(trust-50) / 5

	verdict := model.VerdictFalse
	switch {
	case trust >= 70:
		verdict = model.VerdictTrue
	case trust >= 50:
		verdict = model.VerdictPartiallyTrue
	}

	return delta, model.Claim{
		Claim:       fmt.Sprintf("Source reliability: %s", name),
		Verdict:     verdict,
		Explanation: fmt.Sprintf("%s has a trust score of %d/100 based on historical accuracy and journalistic standards.", name, trust),
	}
}

func lexicalClaim(ind Indicator) model.Claim {
	verdict := model.VerdictPartiallyTrue
	quality := "less credible"
	if ind.Impact > 0 {
		verdict = model.VerdictTrue
		quality = "credible"
	}

	return model.Claim{
		Claim:       "Language analysis: " + ind.Reason,
		Verdict:     verdict,
		Explanation: fmt.Sprintf("The article contains language patterns associated with %s reporting: \"%s\"", quality, ind.Expression()),
	}
}

// balanceSignal fires exactly one of three branches
func balanceSignal(text, content string) (float64, model.Claim) {
	if hasMultiplePerspectives(text) {
		return 15, model.Claim{
			Claim:       "Multiple perspectives",
			Verdict:     model.VerdictTrue,
			Explanation: "The article presents multiple perspectives on the topic, showing balanced reporting.",
		}
	}

	if utf16Len(content) > detailedContentChars {
		return 5, model.Claim{
			Claim:       "Detailed reporting",
			Verdict:     model.VerdictPartiallyTrue,
			Explanation: "The article provides detailed information but may not present all perspectives on the topic.",
		}
	}

	return -10, model.Claim{
		Claim:       "Limited perspective",
		Verdict:     model.VerdictPartiallyTrue,
		Explanation: "The article presents a limited perspective and lacks depth on the topic.",
	}
}

func hasMultiplePerspectives(text string) bool {
	for _, marker := range perspectiveMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return strings.Contains(text, "according to") && strings.Contains(text, "while")
}

// citationSignal fires exactly one of three branches
func citationSignal(text string) (float64, model.Claim) {
	count := len(citationPattern.FindAllStringIndex(text, -1))

	switch {
	case count > 2:
		return 15, model.Claim{
			Claim:       "Multiple sources cited",
			Verdict:     model.VerdictTrue,
			Explanation: "The article cites multiple specific sources for its claims, enhancing credibility.",
		}
	case count >= 1:
		return 8, model.Claim{
			Claim:       "Cites sources",
			Verdict:     model.VerdictTrue,
			Explanation: "The article cites specific sources for its claims.",
		}
	default:
		return -12, model.Claim{
			Claim:       "Lack of sources",
			Verdict:     model.VerdictFalse,
			Explanation: "The article makes claims without citing specific sources, reducing credibility.",
		}
	}
}

// utf16Len counts UTF-16 code units, so characters outside the BMP count twice
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
