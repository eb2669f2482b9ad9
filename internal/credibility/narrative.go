package credibility

// Narrative returns the canned assessment for a clamped score.
// The score is not rounded first, so 89.6 still reads as generally reliable.
func Narrative(score float64) string {
	switch {
	case score < 30:
		return "This article contains potentially misleading information. Multiple claims could not be verified, and the source has a history of inaccurate reporting. Readers should seek additional sources to verify the information presented."
	case score < 50:
		return "This article contains some questionable claims and may lack proper context. The reporting shows signs of bias or incomplete information. Consider consulting additional sources for a more complete understanding."
	case score < 70:
		return "This article contains some accurate information, but certain claims require additional context or verification. The source generally adheres to journalistic standards but may have some limitations in its reporting."
	case score < 90:
		return "This article appears to be generally reliable, with most claims supported by evidence or credible sources. The reporting demonstrates good journalistic practices including balanced perspectives and proper sourcing."
	default:
		return "This article appears to be highly reliable, with claims well-supported by evidence and credible sources. The reporting is thorough, balanced, and adheres to high journalistic standards."
	}
}

// Tier returns a short label for the score band, used in CLI summaries
func Tier(score int) string {
	switch {
	case score < 30:
		return "low"
	case score < 50:
		return "questionable"
	case score < 70:
		return "mixed"
	case score < 90:
		return "reliable"
	default:
		return "highly reliable"
	}
}
