package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/cmd/proofctl/ui"
	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/async"
	"github.com/joseph-ayodele/proof-extractor/internal/ingest"
)

func newBatchCmd(opts *options) *cobra.Command {
	var (
		proofType  string
		workers    int
		textOnly   bool
		jobTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Extract every supported document under a directory",
		Long: "Walk DIR recursively and extract each supported file with a pool of workers. " +
			"Without --type the proof type is taken from the parent directory name " +
			"(jobs/, certificates/, skills/, milestones/, contributions/). " +
			"One JSON object per file is written to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, logger, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			scan := ingest.ScanOptions{SkipHidden: true}
			if textOnly {
				scan.AllowedExts = textRouteExts()
			}
			files, stats, err := ingest.Scan(ctx, args[0], scan)
			if err != nil {
				return err
			}
			logger.Info("scan complete", "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
			if len(files) == 0 {
				ui.Warning(cmd.ErrOrStderr(), "no supported files under %s", args[0])
				return nil
			}

			var (
				mu     sync.Mutex
				failed atomic.Int32
				enc    = json.NewEncoder(cmd.OutOrStdout())
			)
			emit := func(r fileResult) {
				mu.Lock()
				defer mu.Unlock()
				_ = enc.Encode(r)
			}

			bar := ui.NewProgressBar(cmd.ErrOrStderr(), len(files), "extracting")
			proc := async.ProcessorFunc(func(ctx context.Context, job async.Job) error {
				out, err := extractFile(ctx, a.Service, job.Path, job.ProofType, textOnly)
				if err != nil {
					emit(fileResult{Path: job.Path, ProofType: job.ProofType, Error: err.Error()})
					return err
				}
				emit(fileResult{Path: job.Path, ProofType: job.ProofType, Result: out})
				return nil
			})
			q := async.NewWorkerQueue(proc, logger,
				async.WithWorkers(workers),
				async.WithProcessTimeout(jobTimeout),
				async.WithOnDone(func(_ async.Job, err error) {
					if err != nil {
						failed.Add(1)
					}
					bar.Add()
				}),
			)

			for _, f := range files {
				pt, err := resolveProofType(proofType, f.Path)
				if err != nil {
					failed.Add(1)
					emit(fileResult{Path: f.Path, Error: err.Error()})
					bar.Add()
					continue
				}
				if err := q.Enqueue(ctx, async.Job{Path: f.Path, ProofType: pt}); err != nil {
					_ = q.Shutdown(ctx)
					return fmt.Errorf("enqueue %s: %w", f.Path, err)
				}
			}
			if err := q.Shutdown(ctx); err != nil {
				return err
			}
			bar.Finish()

			n := int(failed.Load())
			if n > 0 {
				ui.Warning(cmd.ErrOrStderr(), "%d of %d files failed", n, len(files))
				return nil
			}
			ui.Success(cmd.ErrOrStderr(), "%d files extracted", len(files))
			return nil
		},
	}
	cmd.Flags().StringVarP(&proofType, "type", "t", "", "proof type for every file (default: from directory name)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent extractions")
	cmd.Flags().BoolVar(&textOnly, "text", false, "use the rule-based text route instead of the model")
	cmd.Flags().DurationVar(&jobTimeout, "timeout", 3*time.Minute, "per-file timeout")
	return cmd
}

// textRouteExts adds plain-text files to the document extensions.
func textRouteExts() map[string]struct{} {
	exts := make(map[string]struct{}, len(constants.AllowedExtensions)+len(constants.TextExtensions))
	for e := range constants.AllowedExtensions {
		exts[e] = struct{}{}
	}
	for e := range constants.TextExtensions {
		exts[e] = struct{}{}
	}
	return exts
}
