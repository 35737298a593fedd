package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvview/internal/config"
	"github.com/JonMunkholm/csvview/internal/logging"
)

// app is the state shared by the subcommands once configuration is loaded.
type app struct {
	cfg    *config.Config
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "csvview",
		Short: "CSV / TSV viewer",
		Long: `csvview serves a single page that turns an uploaded CSV or TSV file
into an interactive table. The delimiter, text encoding and compression are
detected automatically.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closer != nil {
				_ = a.closer.Close()
			}
		},
		// Running without a subcommand serves.
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.AddCommand(serveCommand(a))
	root.AddCommand(inspectCommand(a))
	return root
}

// load reads .env (overwriting existing variables), loads the configuration
// and sets up logging. inspect logs to stderr so stdout stays parseable.
func (a *app) load(cmd *cobra.Command) error {
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	if cmd.Name() == "inspect" {
		logger, closer := logging.New(cfg.Logging, cmd.ErrOrStderr())
		slog.SetDefault(logger)
		a.closer = closer
		return nil
	}
	a.closer = logging.Setup(cfg.Logging)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
