package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsmania/internal/credibility"
	"github.com/ppiankov/newsmania/internal/model"
)

var scoreJSON string

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [file|-]",
	Short: "Score the credibility of one article",
	Long: `Score reads one article as JSON (NewsAPI shape) and rates its credibility:
- Source reputation from the trust table
- Sensational, emotional and hedging language
- Balance and level of detail
- Citations and quoted sources
- Clickbait titles

The verdict is written as JSON and a short summary goes to stderr.

Example:
  newsmania score article.json
  cat article.json | newsmania score
  newsmania score article.json --json verdict.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

var checkJSON bool

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Check a single claim",
	Long: `Check rates a free-text claim with the same language indicators used for
articles and reports true, false, partially true or unverified.

Example:
  newsmania check "Officials confirmed the bridge reopened, according to the city"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(checkCmd)

	scoreCmd.Flags().StringVar(&scoreJSON, "json", "-", "output JSON path (- for stdout)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	in, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	article, err := readArticle(in)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	verdict := a.scorer.Score(article)

	if err := writeJSON(cmd.OutOrStdout(), scoreJSON, verdict); err != nil {
		return err
	}
	printVerdict(cmd.ErrOrStderr(), article, verdict)
	return nil
}

func readArticle(r io.Reader) (model.Article, error) {
	var article model.Article
	if err := json.NewDecoder(r).Decode(&article); err != nil {
		return model.Article{}, fmt.Errorf("decode article: %w", err)
	}
	return article, nil
}

func printVerdict(w io.Writer, article model.Article, v model.CredibilityVerdict) {
	fmt.Fprintln(w)
	if article.Title != "" {
		fmt.Fprintf(w, "  %s\n", article.Title)
	}
	fmt.Fprintf(w, "  Credibility: %d/100 (%s)\n", v.CredibilityScore, credibility.Tier(v.CredibilityScore))
	fmt.Fprintf(w, "  %s\n\n", v.FactCheckResult)
	for _, c := range v.ClaimsAnalyzed {
		fmt.Fprintf(w, "  %s %s\n", verdictMark(c.Verdict), c.Claim)
		if verbose {
			fmt.Fprintf(w, "      %s\n", c.Explanation)
		}
	}
	fmt.Fprintln(w)
}

func runCheck(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	result, err := credibility.NewLexicalClaimChecker().CheckClaim(cmd.Context(), claim)
	if err != nil {
		return err
	}

	if checkJSON {
		return writeJSON(cmd.OutOrStdout(), "-", result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", verdictMark(result.Verdict), result.Verdict)
	fmt.Fprintf(w, "%s\n", result.Explanation)
	for _, src := range result.Sources {
		fmt.Fprintf(w, "  - %s\n", src)
	}
	return nil
}
