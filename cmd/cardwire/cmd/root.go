// Package cmd implements the cardwire CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mverdon/cardwire/pkg/reader"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	verbose bool

	// Shared PC/SC context, established once per invocation.
	pcsc *reader.Reader
)

var rootCmd = &cobra.Command{
	Use:   "cardwire",
	Short: "Exchange APDUs with smart cards over PC/SC",
	Long: `cardwire is a diagnostic tool for ISO 7816-4 smart card communication.

It lists readers, polls card presence, and transmits command APDUs with
automatic GET RESPONSE chaining and bounded retries.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}
		var err error
		pcsc, err = reader.New()
		if err != nil {
			return fmt.Errorf("failed to reach the card service: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pcsc != nil {
			pcsc.Close()
		}
	},
}

// Execute runs the root command and prints any resulting error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// logger returns the debug logger for card operations, or nil when
// --verbose is off.
func logger() *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
