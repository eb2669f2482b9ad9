package credibility

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTrust is the score given to sources missing from the table
const DefaultTrust = 45

// ErrInvalidTrust is returned when a trust override falls outside 0-100
var ErrInvalidTrust = errors.New("trust score must be between 0 and 100")

// builtinTrust maps publisher names (exact, case-sensitive) to a 0-100 score
var builtinTrust = map[string]int{
	"Reuters":                 92,
	"Associated Press":        91,
	"BBC News":                88,
	"The New York Times":      82,
	"The Washington Post":     81,
	"The Guardian":            80,
	"NPR":                     83,
	"CNN":                     72,
	"The Wall Street Journal": 84,
	"Bloomberg":               83,
	"The Economist":           87,
	"Al Jazeera":              76,
	"USA Today":               70,
	"Fox News":                58,
	"Buzzfeed News":           65,
	"Daily Mail":              40,
	"The Sun":                 35,
	"National Enquirer":       20,
	"InfoWars":                10,
	"Newsmania":               75,
	"Unknown Source":          DefaultTrust,
}

// TrustTable is an immutable source-name to trust-score mapping.
// Safe for concurrent reads.
type TrustTable struct {
	scores map[string]int
}

// NewTrustTable builds the table from the built-in scores plus overrides.
// Overrides replace built-in entries with the same name.
func NewTrustTable(overrides map[string]int) (*TrustTable, error) {
	scores := make(map[string]int, len(builtinTrust)+len(overrides))
	for name, score := range builtinTrust {
		scores[name] = score
	}

	for name, score := range overrides {
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("source %q: %w (got %d)", name, ErrInvalidTrust, score)
		}
		scores[name] = score
	}

	return &TrustTable{scores: scores}, nil
}

// DefaultTrustTable returns the built-in table without overrides
func DefaultTrustTable() *TrustTable {
	t, _ := NewTrustTable(nil)
	return t
}

// LoadTrustFile reads a YAML mapping of source name to score
func LoadTrustFile(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trust file: %w", err)
	}

	var overrides map[string]int
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse trust file %s: %w", path, err)
	}

	return overrides, nil
}

// Lookup returns the score for an exact source name and whether it is listed
func (t *TrustTable) Lookup(name string) (int, bool) {
	score, ok := t.scores[name]
	return score, ok
}

// Trust returns the score for name, or DefaultTrust when unlisted
func (t *TrustTable) Trust(name string) int {
	if score, ok := t.scores[name]; ok {
		return score
	}
	return DefaultTrust
}

// Sources returns the number of listed sources
func (t *TrustTable) Sources() int {
	return len(t.scores)
}
