package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reviewsynth/internal/ledger"
	"reviewsynth/internal/logger"
)

// NewLedgerCmd creates the ledger command with its subcommands
func NewLedgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and reset the phrase usage ledger",
		Long:  `The usage ledger remembers which phrases were drawn recently per locale and category, so consecutive reviews do not repeat themselves.`,
	}

	ledgerCmd.AddCommand(newLedgerShowCmd())
	ledgerCmd.AddCommand(newLedgerResetCmd())

	return ledgerCmd
}

func newLedgerShowCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show usage counts per ledger key",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runLedgerShow(cmd.Context(), verbose); err != nil {
				logger.Error("Failed to show ledger", err)
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List the used phrases of every key")
	return cmd
}

func newLedgerResetCmd() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every recorded phrase use",
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runLedgerReset(cmd.Context(), confirm); err != nil {
				logger.Error("Failed to reset ledger", err)
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				os.Exit(1)
			}
		},
	}

	resetCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return resetCmd
}

func openLedgerStore(ctx context.Context) (ledger.Store, func(), error) {
	sess, err := openSession(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := sess.closer.Close(); err != nil {
			logger.Error("Failed to close ledger store", err)
		}
	}
	return sess.store, release, nil
}

func runLedgerShow(ctx context.Context, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, release, err := openLedgerStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	snap, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	fmt.Println("📒 Phrase Usage Ledger")
	fmt.Println("======================")
	if len(snap) == 0 {
		fmt.Println("Ledger is empty")
		return nil
	}
	for _, key := range snap.Keys() {
		fmt.Printf("%-32s %4d\n", key, len(snap[key]))
		if verbose {
			for _, phrase := range snap[key] {
				fmt.Printf("    - %s\n", phrase)
			}
		}
	}
	fmt.Printf("\n📊 %d phrase(s) across %d key(s)\n", snap.Size(), len(snap))
	return nil
}

func runLedgerReset(ctx context.Context, confirm bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !confirm {
		fmt.Print("⚠️  This will forget every recorded phrase use. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Ledger reset cancelled")
			return nil
		}
	}

	sess, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.closer.Close(); err != nil {
			logger.Error("Failed to close ledger store", err)
		}
	}()

	sess.tracker.Reset()
	if err := sess.tracker.Flush(ctx); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	fmt.Println("✅ Ledger reset successfully")
	return nil
}
