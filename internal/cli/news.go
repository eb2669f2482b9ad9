package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/news"
)

var (
	newsJSON     bool
	fetchExclude []string
	searchPage   int
	searchSize   int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <category>",
	Short: "Fetch top headlines for a category with credibility scores",
	Long: fmt.Sprintf(`Fetch prints the top headlines for a category, each with its credibility score.

Categories: %s

Example:
  newsmania fetch technology
  newsmania fetch general --exclude "Daily Buzz" --json`, strings.Join(news.Categories(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search all news with credibility scores",
	Long: `Search queries the news provider across all sources and scores each result.

Example:
  newsmania search "climate summit"
  newsmania search election --page 2 --page-size 50`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(searchCmd)

	fetchCmd.Flags().BoolVar(&newsJSON, "json", false, "print articles as JSON")
	fetchCmd.Flags().StringSliceVar(&fetchExclude, "exclude", nil, "source names to hide")

	searchCmd.Flags().BoolVar(&newsJSON, "json", false, "print articles as JSON")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page")
	searchCmd.Flags().IntVar(&searchSize, "page-size", 20, "results per page (max 100)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	articles, err := a.newsService().Feed(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetch %s: %w", args[0], err)
	}
	if len(fetchExclude) > 0 {
		articles = news.Filter(articles, model.UserPreferences{ExcludedSources: fetchExclude})
	}
	return printArticles(cmd.OutOrStdout(), articles)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	articles, err := a.newsService().Search(cmd.Context(), query, searchPage, searchSize)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}
	return printArticles(cmd.OutOrStdout(), articles)
}

func printArticles(w io.Writer, articles []model.Article) error {
	if newsJSON {
		return writeJSON(w, "-", articles)
	}
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}
	for _, a := range articles {
		fmt.Fprintf(w, "%s  %-20s  %s\n", scoreText(a.CredibilityScore), truncate(a.Source.Name, 20), a.Title)
		if verbose && a.URL != "" {
			fmt.Fprintf(w, "     %s\n", a.URL)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
