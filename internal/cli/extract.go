package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsmania/internal/news"
)

var (
	extractJSON    bool
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract a web article and score its credibility",
	Long: `Extract fetches a page (respecting robots.txt), pulls the readable article
text and scores it like any other article:
- Title from <title> or the first <h1>
- Content from the article body, summary from its first 200 characters
- Claim-like sentences and outbound links
- Topic tags and the most frequent keywords

Example:
  newsmania extract https://example.com/story
  newsmania extract https://example.com/story --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var rssScore bool

// rssCmd represents the rss command
var rssCmd = &cobra.Command{
	Use:   "rss <url>",
	Short: "Parse an RSS or Atom feed",
	Long: `Rss fetches and parses an RSS 2.0, RSS 1.0 or Atom feed. With --score every
item is scored concurrently.

Example:
  newsmania rss https://example.com/feed.xml
  newsmania rss https://example.com/feed.xml --score`,
	Args: cobra.ExactArgs(1),
	RunE: runRSS,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(rssCmd)

	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print the extraction and verdict as JSON")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", time.Minute, "overall timeout")

	rssCmd.Flags().BoolVar(&rssScore, "score", false, "score every item")
	rssCmd.Flags().BoolVar(&newsJSON, "json", false, "print the feed as JSON")
	rssCmd.Flags().DurationVar(&extractTimeout, "timeout", time.Minute, "overall timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}

	page, err := a.extractor().Extract(ctx, args[0])
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	article := page.Article()
	verdict := a.scorer.Score(article)

	topics := news.Categorize(page.Title, page.Content)
	keywords := news.Keywords(page.Content)

	if extractJSON {
		return writeJSON(cmd.OutOrStdout(), "-", map[string]any{
			"page":     page,
			"topics":   topics,
			"keywords": keywords,
			"verdict":  verdict,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Title:   %s\n", page.Title)
	fmt.Fprintf(w, "Source:  %s\n", page.Source)
	fmt.Fprintf(w, "Summary: %s\n", page.Summary)
	fmt.Fprintf(w, "Topics:  %s\n", strings.Join(topics, ", "))
	fmt.Fprintf(w, "Keywords: %s\n", strings.Join(keywords, ", "))
	fmt.Fprintf(w, "Claims:  %d, links: %d\n", len(page.Claims), len(page.Links))
	printVerdict(w, article, verdict)
	return nil
}

func runRSS(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}

	parsed, err := a.feedParser().ParseURL(ctx, args[0])
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	if !rssScore {
		if newsJSON {
			return writeJSON(cmd.OutOrStdout(), "-", parsed)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s (%d items)\n", parsed.Title, len(parsed.Items))
		for _, item := range parsed.Items {
			fmt.Fprintf(w, "  %s\n", item.Title)
		}
		return nil
	}

	results := a.batchScorer(0).ScoreArticles(ctx, parsed.Articles())
	if newsJSON {
		return writeJSON(cmd.OutOrStdout(), "-", results)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%d items)\n", parsed.Title, len(parsed.Items))
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "  -  %s (%s)\n", r.Article.Title, r.Error)
			continue
		}
		fmt.Fprintf(w, "%3d  %s\n", r.Verdict.CredibilityScore, r.Article.Title)
	}
	return nil
}
