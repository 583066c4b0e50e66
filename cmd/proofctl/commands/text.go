package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
)

func newTextCmd(opts *options) *cobra.Command {
	var proofType string
	cmd := &cobra.Command{
		Use:   "text [FILE]",
		Short: "Extract fields from plain text without calling the model",
		Long: "Run the rule-based extractor over text. With FILE, text is first pulled from the " +
			"document (text layer, then OCR); without it, text is read from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := opts.build(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read %s: %w", args[0], err)
				}
				out, err := a.Service.ExtractDocumentText(ctx, proofs.DocumentTextRequest{
					Filename:  filepath.Base(args[0]),
					Data:      data,
					ProofType: proofType,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			out, err := a.Service.ExtractText(ctx, proofs.TextRequest{Text: string(text), ProofType: proofType})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&proofType, "type", "t", string(constants.ProofJob), "proof type: "+constants.ProofTypeList())
	return cmd
}
