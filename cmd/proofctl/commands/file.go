package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/ingest"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
)

// fileResult is one JSON line of batch and watch output.
type fileResult struct {
	Path      string              `json:"path"`
	ProofType constants.ProofType `json:"proof_type,omitempty"`
	Result    any                 `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// extractFile runs one file through the model route, or the rule-based
// text route when textOnly is set.
func extractFile(ctx context.Context, svc *proofs.Service, path string, pt constants.ProofType, textOnly bool) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if textOnly {
		return svc.ExtractDocumentText(ctx, proofs.DocumentTextRequest{
			Filename:  filepath.Base(path),
			Data:      data,
			ProofType: string(pt),
		})
	}
	return svc.Extract(ctx, proofs.ExtractRequest{
		Filename:  filepath.Base(path),
		Data:      data,
		ProofType: string(pt),
	})
}

// resolveProofType prefers the flag, then the parent directory name.
func resolveProofType(flag, path string) (constants.ProofType, error) {
	if flag != "" {
		pt, ok := constants.ParseProofType(flag)
		if !ok {
			return "", fmt.Errorf("invalid --type %q: must be one of: %s", flag, constants.ProofTypeList())
		}
		return pt, nil
	}
	if pt := ingest.ProofTypeFromPath(path); pt != "" {
		return pt, nil
	}
	return "", fmt.Errorf("cannot infer proof type for %s: pass --type or place it under a proof-type directory", path)
}
