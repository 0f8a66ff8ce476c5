package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reviewsynth/internal/core"
	"reviewsynth/internal/generator"
	"reviewsynth/internal/logger"
	"reviewsynth/internal/quality"
)

// productFlags are the product inputs shared by generate and batch.
type productFlags struct {
	file        string
	id          string
	title       string
	description string
}

func (p *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.file, "product", "p", "", "YAML or JSON file describing the product")
	cmd.Flags().StringVar(&p.id, "id", "", "Product id")
	cmd.Flags().StringVar(&p.title, "title", "", "Product title")
	cmd.Flags().StringVar(&p.description, "description", "", "Product description, HTML allowed")
}

func (p *productFlags) load() (core.Product, error) {
	return loadProduct(p.file, p.id, p.title, p.description)
}

// pinFlags pin the generation targets.
type pinFlags struct {
	locale  string
	persona string
	rating  int
}

func (f *pinFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.locale, "locale", "l", "", "Locale code (drawn from weights.locales when empty)")
	cmd.Flags().StringVar(&f.persona, "persona", "", "Persona (drawn from weights.personas when empty)")
	cmd.Flags().IntVarP(&f.rating, "rating", "r", 0, "Star rating 1-5 (drawn from weights.ratings when 0)")
}

func (f *pinFlags) options() generator.Options {
	return generator.Options{Locale: f.locale, Persona: f.persona, Rating: f.rating}
}

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		product productFlags
		pins    pinFlags
		count   int
		asJSON  bool
		score   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic reviews for a product",
		Long: `Compose reviews for one product. Locale, persona and rating are drawn
from the configured weights unless pinned with flags.

Examples:
  reviewsynth generate --title "Navy Linen Shirt" --description "<p>Breathable linen</p>" -n 3
  reviewsynth generate -p product.yaml --locale de --rating 4 --json`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runGenerate(cmd.Context(), product, pins, count, asJSON, score); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
		},
	}

	product.register(cmd)
	pins.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of reviews to generate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reviews as JSON")
	cmd.Flags().BoolVar(&score, "score", false, "Score each review independently and show its grade")

	return cmd
}

func runGenerate(ctx context.Context, pf productFlags, pins pinFlags, count int, asJSON, score bool) error {
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
	if !product.HasText() {
		logger.Warn("Product has no title or description, composing generic reviews")
	}

	sess, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	reviews, err := sess.newGenerator().GenerateBatch(ctx, product, count, pins.options())
	if err != nil {
		return fmt.Errorf("failed to generate reviews: %w", err)
	}

	if asJSON {
		return writeJSON(os.Stdout, reviews)
	}

	var evaluator *quality.Evaluator
	if score {
		if evaluator, err = sess.newEvaluator(); err != nil {
			return err
		}
	}
	for _, review := range reviews {
		var report *quality.Report
		if evaluator != nil {
			r := evaluator.ScoreReview(review, &product, nil)
			report = &r
		}
		fmt.Println(renderReview(review, report))
	}
	fmt.Printf("✅ Generated %d review(s)\n", len(reviews))
	return nil
}
