package commands

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/internal/ingest"
)

func newWatchCmd(opts *options) *cobra.Command {
	var (
		proofType string
		textOnly  bool
		initial   bool
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Extract documents as they appear under one or more directories",
		Long: "Watch the directories recursively and extract each supported file once it is " +
			"created or rewritten. Runs until interrupted.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, logger, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			paths, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initial,
				Debounce:    debounce,
				SkipHidden:  true,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-errs:
					if !ok {
						return nil
					}
					logger.Warn("watch error", "error", err)
				case path, ok := <-paths:
					if !ok {
						return nil
					}
					pt, err := resolveProofType(proofType, path)
					if err != nil {
						_ = enc.Encode(fileResult{Path: path, Error: err.Error()})
						continue
					}
					out, err := extractFile(ctx, a.Service, path, pt, textOnly)
					if err != nil {
						_ = enc.Encode(fileResult{Path: path, ProofType: pt, Error: err.Error()})
						continue
					}
					_ = enc.Encode(fileResult{Path: path, ProofType: pt, Result: out})
				}
			}
		},
	}
	cmd.Flags().StringVarP(&proofType, "type", "t", "", "proof type for every file (default: from directory name)")
	cmd.Flags().BoolVar(&textOnly, "text", false, "use the rule-based text route instead of the model")
	cmd.Flags().BoolVar(&initial, "initial", false, "also extract files already present")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is processed")
	return cmd
}
