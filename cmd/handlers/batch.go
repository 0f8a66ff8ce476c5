package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	var (
		product productFlags
		pins    pinFlags
		count   int
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate a batch of reviews and score it",
		Long: `Generate reviews for one product and score them in generation order,
so each review's uniqueness reflects every review generated before it.

Examples:
  reviewsynth batch -p product.yaml -n 100
  reviewsynth batch --title "Wool Scarf" -n 20 --locale fr --json`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runBatch(cmd.Context(), product, pins, count, asJSON, verbose); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
		},
	}

	product.register(cmd)
	pins.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 25, "Number of reviews to generate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the full report of each review")

	return cmd
}

func runBatch(ctx context.Context, pf productFlags, pins pinFlags, count int, asJSON, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	product, err := pf.load()
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	if !asJSON {
		fmt.Printf("🔄 Generating %d review(s)...\n", count)
	}
	reviews, err := sess.newGenerator().GenerateBatch(ctx, product, count, pins.options())
	if err != nil {
		return fmt.Errorf("failed to generate reviews: %w", err)
	}

	evaluator, err := sess.newEvaluator()
	if err != nil {
		return err
	}
	reports, summary := evaluator.ScoreBatch(reviews, &product)

	return printReports(reviews, reports, summary, asJSON, verbose)
}
