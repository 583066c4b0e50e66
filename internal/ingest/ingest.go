// Package ingest discovers proof documents on the local filesystem for batch
// extraction.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// File is one discovered document.
type File struct {
	Path      string
	Ext       string
	Size      int64
	ProofType constants.ProofType // from the enclosing directory name, "" if none
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// ScanOptions control which files Scan reports.
type ScanOptions struct {
	SkipHidden  bool
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> constants.AllowedExtensions
}

// Scan walks root and returns every file with an allowed extension, in
// lexical order. Unreadable entries are counted as failed and skipped.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]File, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	exts := opts.AllowedExts
	if exts == nil {
		exts = constants.AllowedExtensions
	}

	var files []File
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			stats.Failed++
			return nil
		}
		stats.Matched++
		files = append(files, File{
			Path:      path,
			Ext:       ext,
			Size:      info.Size(),
			ProofType: ProofTypeFromPath(path),
		})
		return nil
	})
	if err != nil {
		return files, stats, fmt.Errorf("walk: %w", err)
	}
	return files, stats, nil
}

// ProofTypeFromPath maps the parent directory name to a proof type, so a
// tree like certificates/, jobs/, skills/ can be batch-extracted at once.
// Singular and plural names are accepted.
func ProofTypeFromPath(path string) constants.ProofType {
	dir := strings.ToLower(filepath.Base(filepath.Dir(path)))
	if pt, ok := constants.ParseProofType(dir); ok {
		return pt
	}
	if pt, ok := constants.ParseProofType(strings.TrimSuffix(dir, "s")); ok {
		return pt
	}
	return ""
}
