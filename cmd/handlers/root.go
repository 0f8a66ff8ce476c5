/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"reviewsynth/internal/config"
	"reviewsynth/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	seed    uint64
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reviewsynth",
		Short: "Reviewsynth composes synthetic product reviews and scores review quality.",
		Long: `Reviewsynth builds plausible product reviews from per-locale phrase packs,
avoiding short-term phrase repetition through a persisted usage ledger, and
scores any review on eight quality metrics.

Examples:
  # Five reviews of a product described in a YAML file
  reviewsynth generate --product product.yaml --count 5

  # Generate and score a batch, printing the summary
  reviewsynth batch --product product.yaml --count 50

  # Score existing reviews
  reviewsynth score --input reviews.json`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.reviewsynth.yaml or $HOME/.reviewsynth.yaml)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed, overrides app.seed (0 keeps the configured seed); set app.reference_date too for reproducible review dates")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewScoreCmd())
	rootCmd.AddCommand(NewBatchCmd())
	rootCmd.AddCommand(NewLedgerCmd())
	rootCmd.AddCommand(NewLocalesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
}
