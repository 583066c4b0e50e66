// Package commands implements the proofctl command tree.
package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/internal/app"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
)

type options struct {
	cfgFile string
	verbose bool
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "proofctl",
		Short: "Extract structured career proofs from documents",
		Long: `proofctl extracts structured fields (job history, certificates, skills,
milestones and contributions) from uploaded documents or plain text, and
manages the extraction cache and the stored proof archive.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newExtractCmd(opts),
		newTextCmd(opts),
		newBatchCmd(opts),
		newWatchCmd(opts),
		newExportCmd(opts),
		newCacheCmd(opts),
	)
	return root
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// build loads configuration and wires the service. Logs go to stderr.
func (o *options) build(ctx context.Context, cmd *cobra.Command) (*app.App, *slog.Logger, error) {
	cfg, err := common.LoadConfig(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg.Log.Format = "text"
	if o.verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger := common.NewLogger(cfg.Log, cmd.ErrOrStderr())

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
