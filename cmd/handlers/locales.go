package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewLocalesCmd creates the locales command
func NewLocalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List the available locale packs",
		Long:  `List every locale pack, embedded or loaded from locales.dir, with its phrase count, neighbouring languages and personas.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runLocales(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
		},
	}
}

func runLocales(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := openSession(ctx, false)
	if err != nil {
		return err
	}

	fmt.Println("🌍 Locale Packs")
	fmt.Println("===============")
	for _, code := range sess.registry.Codes() {
		pack, err := sess.registry.Get(code)
		if err != nil {
			return err
		}
		personas := make([]string, 0, len(pack.Personas))
		for name := range pack.Personas {
			personas = append(personas, name)
		}
		sort.Strings(personas)

		weight := sess.cfg.Weights.Locales[code]
		fmt.Printf("%s  %-10s %4d phrases  weight %.2f\n",
			headlineStyle.Render(code), pack.Name, len(pack.AllPhrases()), weight)
		if len(pack.Adjacent) > 0 {
			fmt.Printf("    adjacent: %s\n", strings.Join(pack.Adjacent, ", "))
		}
		fmt.Printf("    personas: %s\n", strings.Join(personas, ", "))
	}
	return nil
}
