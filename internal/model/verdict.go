package model

// Verdict is the outcome attached to a single claim
type Verdict string

const (
	VerdictTrue          Verdict = "true"
	VerdictFalse         Verdict = "false"
	VerdictPartiallyTrue Verdict = "partially true"
	VerdictUnverified    Verdict = "unverified"
)

// Valid reports whether v is one of the four known verdicts
func (v Verdict) Valid() bool {
	switch v {
	case VerdictTrue, VerdictFalse, VerdictPartiallyTrue, VerdictUnverified:
		return true
	}
	return false
}

// Claim explains why one signal moved the credibility score
type Claim struct {
	Claim       string   `json:"claim"`
	Verdict     Verdict  `json:"verdict"`
	Explanation string   `json:"explanation"`
	Sources     []string `json:"sources,omitempty"`
}

// CredibilityVerdict is the result of scoring one article.
// A new value is built on every call and never mutated afterwards.
type CredibilityVerdict struct {
	IsFactChecked    bool    `json:"isFactChecked"`
	CredibilityScore int     `json:"credibilityScore"` // 0-100
	FactCheckResult  string  `json:"factCheckResult"`
	ClaimsAnalyzed   []Claim `json:"claimsAnalyzed"`
}

// ClaimCheck is the result of checking a single free-text claim
type ClaimCheck struct {
	Claim       string   `json:"claim"`
	Verdict     Verdict  `json:"verdict"`
	Explanation string   `json:"explanation"`
	Sources     []string `json:"sources"`
}
