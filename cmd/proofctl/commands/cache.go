package commands

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/cmd/proofctl/ui"
)

// The in-memory cache lives and dies with the process, so these are
// mostly useful with CACHE_BACKEND=redis.
func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the extraction cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print cached entry count and approximate size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Service.CacheStats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached extraction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Service.ClearCache(ctx)
			if err != nil {
				return err
			}
			ui.Success(cmd.ErrOrStderr(), "cleared %d entries", n)
			return nil
		},
	})
	return cmd
}
