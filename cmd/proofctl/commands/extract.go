package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
)

func newExtractCmd(opts *options) *cobra.Command {
	var proofType, mimeType string
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract a proof record from one document",
		Long: "Send a PDF, image or text document to the document-understanding service and " +
			"print the extracted fields, confidence scores and review flags as JSON.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			resp, err := a.Service.Extract(ctx, proofs.ExtractRequest{
				Filename:  filepath.Base(args[0]),
				MimeType:  mimeType,
				Data:      data,
				ProofType: proofType,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&proofType, "type", "t", string(constants.ProofJob), "proof type: "+constants.ProofTypeList())
	cmd.Flags().StringVar(&mimeType, "mime", "", "declared MIME type (guessed from the extension when empty)")
	return cmd
}
