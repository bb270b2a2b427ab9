package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/config"
	"github.com/vango-dev/ripple/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ripple",
		Short: "Reactive rendering core with a live websocket view",
		Long: `Ripple renders a reactive component tree and streams every change
to connected browsers as host operations.

Commands:
  serve    run the demo board behind HTTP and websocket
  diff     print the host ops that turn one keyed list into another
  render   print the demo board's HTML
  version  print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: ripple.yaml or ripple.json in the working directory)")

	rootCmd.AddCommand(
		serveCmd(),
		diffCmd(),
		renderCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file when given, else the config of the
// enclosing project, else the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFile(path)
	}
	if root, err := config.FindProjectRoot("."); err == nil {
		return config.Load(root)
	}
	return config.Default(), nil
}

// newLogger builds the process logger from the logging section.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
