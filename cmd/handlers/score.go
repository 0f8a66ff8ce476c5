package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reviewsynth/internal/core"
	"reviewsynth/internal/quality"
)

// NewScoreCmd creates the score command
func NewScoreCmd() *cobra.Command {
	var (
		input       string
		productFile string
		corpusFile  string
		asJSON      bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the quality of existing reviews",
		Long: `Score reviews read from a JSON array on eight quality metrics:
authenticity, readability, language consistency, sentiment fit, content
depth, uniqueness, demographic alignment and commercial value.

Without --corpus the file is scored as a batch: each review is compared for
uniqueness against the reviews before it. With --corpus every review is
scored independently against the bodies in the corpus file (one per line).

Examples:
  reviewsynth score --input reviews.json
  reviewsynth generate -n 20 --json | reviewsynth score --input - --verbose`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runScore(cmd.Context(), input, productFile, corpusFile, asJSON, verbose); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON file with reviews, - for stdin")
	cmd.Flags().StringVarP(&productFile, "product", "p", "", "YAML or JSON file describing the reviewed product")
	cmd.Flags().StringVar(&corpusFile, "corpus", "", "Historical review bodies, one per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the full report of each review")

	return cmd
}

func runScore(ctx context.Context, input, productFile, corpusFile string, asJSON, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reviews, err := loadReviews(input)
	if err != nil {
		return err
	}
	var product *core.Product
	if productFile != "" {
		p, err := loadProduct(productFile, "", "", "")
		if err != nil {
			return err
		}
		product = &p
	}
	corpus, err := loadCorpus(corpusFile)
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	evaluator, err := sess.newEvaluator()
	if err != nil {
		return err
	}

	var reports []quality.Report
	var summary quality.BatchSummary
	if corpus != nil {
		reports = make([]quality.Report, 0, len(reviews))
		for _, review := range reviews {
			reports = append(reports, evaluator.ScoreReview(review, product, corpus))
		}
		summary = quality.Summarize(reports)
	} else {
		reports, summary = evaluator.ScoreBatch(reviews, product)
	}

	return printReports(reviews, reports, summary, asJSON, verbose)
}

func printReports(reviews []core.Review, reports []quality.Report, summary quality.BatchSummary, asJSON, verbose bool) error {
	if asJSON {
		return writeJSON(os.Stdout, struct {
			Reports []quality.Report     `json:"reports"`
			Summary quality.BatchSummary `json:"summary"`
		}{reports, summary})
	}

	for i, report := range reports {
		if verbose {
			quality.PrintReport(os.Stdout, report)
			continue
		}
		fmt.Println(renderReview(reviews[i], &report))
	}
	quality.PrintBatchSummary(os.Stdout, summary)
	return nil
}
