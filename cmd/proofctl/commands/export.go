package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/cmd/proofctl/ui"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		out       string
		proofType string
		status    string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored proofs to an XLSX workbook",
		Long:  "Write one sheet per proof type with the extracted fields of every stored proof. Requires DB_DRIVER and DB_URL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			data, rows, err := a.Service.ExportProofs(ctx, proofs.ListProofsRequest{
				ProofType: proofType,
				Status:    strings.ToUpper(status),
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			ui.Success(cmd.ErrOrStderr(), "exported %d proofs to %s", rows, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "proofs.xlsx", "output XLSX path")
	cmd.Flags().StringVarP(&proofType, "type", "t", "", "only this proof type")
	cmd.Flags().StringVar(&status, "status", "", "only ACCEPTED or NEEDS_REVIEW")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = all)")
	return cmd
}
