package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
	"github.com/joseph-ayodele/proof-extractor/internal/llm"
	"github.com/joseph-ayodele/proof-extractor/internal/repository"
)

// Service produces XLSX workbooks of stored proofs, one sheet per proof type.
type Service struct {
	proofRepo repository.ProofRepository
	logger    *slog.Logger
}

func NewService(proofRepo repository.ProofRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{proofRepo: proofRepo, logger: logger}
}

// ExportProofsXLSX returns the workbook bytes and the number of exported rows.
// Every proof type gets a sheet, empty ones keep their header row.
func (s *Service) ExportProofsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, int, error) {
	start := time.Now()

	proofs, err := s.proofRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("query proofs: %w", err)
	}
	byType := make(map[constants.ProofType][]*entity.StoredProof)
	for _, p := range proofs {
		byType[p.ProofType] = append(byType[p.ProofType], p)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, pt := range constants.ProofTypes() {
		sheet := string(pt)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, 0, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, 0, err
		}
		contract, _ := llm.ContractFor(pt)
		if err := writeSheet(f, sheet, contract.FieldNames(), byType[pt]); err != nil {
			return nil, 0, fmt.Errorf("write %s sheet: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(proofs),
		"proof_type", string(filter.ProofType),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), len(proofs), nil
}

func writeSheet(f *excelize.File, sheet string, fields []string, proofs []*entity.StoredProof) error {
	headers := append([]string{"Created At", "Filename", "Status"}, fields...)
	headers = append(headers, "Flagged Fields", "Validation Hash")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, p := range proofs {
		row := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, p.CreatedAt.UTC().Format(time.RFC3339))
		write(2, p.Filename)
		write(3, string(p.Status))
		for i, name := range fields {
			write(4+i, truncate(p.Fields.Value(name), 500))
		}
		col := 4 + len(fields)
		write(col, strings.Join(p.FlaggedFields, ", "))
		if p.ValidationHash != nil {
			write(col+1, *p.ValidationHash)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", "A", 22) // created
	_ = f.SetColWidth(sheet, "B", "B", 28) // filename
	_ = f.SetColWidth(sheet, "C", last, 24)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
