package model

// Source identifies the publisher of an article
type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Article is a news article as served by the feed endpoints.
// The credibility scorer only reads Title, Description, Content and Source.Name.
type Article struct {
	ID          string `json:"id"`
	Source      Source `json:"source"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	URLToImage  string `json:"urlToImage,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Content     string `json:"content"`

	// Filled by credibility annotation
	CredibilityScore *int   `json:"credibilityScore,omitempty"`
	IsFactChecked    bool   `json:"isFactChecked,omitempty"`
	FactCheckResult  string `json:"factCheckResult,omitempty"`
}

// UserPreferences holds per-user feed preferences
type UserPreferences struct {
	PreferredTopics      []string `json:"preferredTopics"`
	PreferredSources     []string `json:"preferredSources"`
	ExcludedSources      []string `json:"excludedSources"`
	Language             string   `json:"language"`
	Region               string   `json:"region"`
	DarkMode             bool     `json:"darkMode"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
}

// DefaultPreferences returns the preferences applied to new users
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredTopics:      []string{"general", "technology", "science"},
		PreferredSources:     []string{},
		ExcludedSources:      []string{},
		Language:             "en",
		Region:               "us",
		NotificationsEnabled: true,
	}
}

// Excludes reports whether articles from the named source should be hidden
func (p UserPreferences) Excludes(sourceName string) bool {
	for _, s := range p.ExcludedSources {
		if s == sourceName {
			return true
		}
	}
	return false
}
