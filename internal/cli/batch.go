package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsmania/internal/worker"
)

var (
	concurrency  int
	batchOutput  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.jsonl>",
	Short: "Score many articles from a JSON-lines file in parallel",
	Long: `Batch scores articles concurrently:
- Read one article JSON object per line (blank and # lines are skipped)
- Score articles in parallel with a configurable worker count
- Write one result per input line, in input order

Example:
  newsmania batch articles.jsonl
  newsmania batch articles.jsonl --concurrency 16 --output results.jsonl
  cat articles.jsonl | newsmania batch -`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "-", "output JSON-lines path (- for stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	scorer := a.batchScorer(concurrency)

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Newsmania Batch Scoring\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Output:       %s\n", batchOutput)
	fmt.Fprintf(stderr, "\n")

	var results []worker.BatchResult
	if file == "-" {
		results, err = scorer.ScoreReader(ctx, cmd.InOrStdin())
	} else {
		results, err = scorer.ScoreFile(ctx, file)
	}
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	out := cmd.OutOrStdout()
	if batchOutput != "" && batchOutput != "-" {
		f, err := os.Create(batchOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = f
	}

	successCount, failureCount, total := writeBatchResults(out, stderr, results)

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d articles\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	if successCount > 0 {
		fmt.Fprintf(stderr, "  Mean:      %.1f/100\n", float64(total)/float64(successCount))
	}
	fmt.Fprintf(stderr, "\n")

	return nil
}

// writeBatchResults writes one JSON line per result and reports failures on log.
// It returns the success and failure counts and the sum of scores.
func writeBatchResults(out, log io.Writer, results []worker.BatchResult) (success, failure, total int) {
	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(log, "✗ line %d: write result: %v\n", r.Line, err)
			failure++
			continue
		}
		if r.Error != "" {
			failure++
			fmt.Fprintf(log, "✗ line %d: %s\n", r.Line, r.Error)
			continue
		}
		success++
		total += r.Verdict.CredibilityScore
		if verbose {
			fmt.Fprintf(log, "✓ line %d: %s (%d/100)\n", r.Line, r.Article.Title, r.Verdict.CredibilityScore)
		}
	}
	return success, failure, total
}
