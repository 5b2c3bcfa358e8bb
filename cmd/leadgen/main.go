// leadgen finds companies matching a plain-language query and exports
// their contact details.
//
// Usage:
//
//	leadgen run "dentists in austin" -n 10 -o leads.csv
//	leadgen batch -f queries.txt --parallel 2 -d out/
//	leadgen serve --addr 127.0.0.1:38471
//	leadgen config validate|path|show
//	leadgen secrets set search|llm
//	leadgen history list|show|prune
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/pipeline"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	dataDir    string
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "leadgen",
	Short: "Adaptive lead acquisition: search, judge, refine, extract",
	Long: `leadgen turns a plain-language query into a table of companies with
contact details. Search results are judged for relevance, the query is
rewritten while results are poor, and relevant pages are rendered and mined
for contact fields.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "config file (default <data-dir>/config.yml)")
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "data directory (default $LEADGEN_DATA_DIR or .)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "text or json (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(secretsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "leadgen: %s: %v\n", label(err), err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// label names the class of a fatal error for the one-line report.
func label(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrAcquisitionExhausted):
		return "exhausted"
	case errors.Is(err, config.ErrMissingCredentials):
		return "credentials"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return "error"
	}
}
