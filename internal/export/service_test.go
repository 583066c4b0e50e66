package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
	"github.com/joseph-ayodele/proof-extractor/internal/repository"
)

type stubRepo struct {
	proofs []*entity.StoredProof
	err    error
	filter repository.ListFilter
}

func (r *stubRepo) Save(context.Context, *entity.StoredProof) error { return nil }

func (r *stubRepo) List(_ context.Context, f repository.ListFilter) ([]*entity.StoredProof, error) {
	r.filter = f
	return r.proofs, r.err
}

func (r *stubRepo) GetByID(context.Context, uuid.UUID) (*entity.StoredProof, error) {
	return nil, errors.New("not used")
}

func TestExportProofsXLSX(t *testing.T) {
	job := entity.NewFields("job_title", "company", "employment_type", "date_range", "location", "job_category")
	job.Set("job_title", "Community Lead")
	job.Set("company", "EkoLance")
	job.Set("employment_type", "part-time")
	hash := "3f2a"

	cert := entity.NewFields("certificate_title", "issuer", "completion_date", "credential_type", "program_category")
	cert.Set("certificate_title", "Responsive Web Design")

	repo := &stubRepo{proofs: []*entity.StoredProof{
		{
			ProofType:      constants.ProofJob,
			Filename:       "card.png",
			Fields:         job,
			Status:         constants.ProofStatusAccepted,
			ValidationHash: &hash,
			CreatedAt:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			ProofType:     constants.ProofCertificate,
			Filename:      "cert.pdf",
			Fields:        cert,
			Status:        constants.ProofStatusNeedsReview,
			FlaggedFields: []string{"issuer", "completion_date"},
			CreatedAt:     time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}}

	svc := NewService(repo, nil)
	data, n, err := svc.ExportProofsXLSX(context.Background(), repository.ListFilter{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 50, repo.filter.Limit)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, constants.ProofTypeStrings(), f.GetSheetList())

	rows, err := f.GetRows("job")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"Created At", "Filename", "Status",
		"job_title", "company", "employment_type", "date_range", "location", "job_category",
		"Flagged Fields", "Validation Hash",
	}, rows[0])
	assert.Equal(t, "2025-01-02T03:04:05Z", rows[1][0])
	assert.Equal(t, "ACCEPTED", rows[1][2])
	assert.Equal(t, "Community Lead", rows[1][3])
	assert.Equal(t, "part-time", rows[1][5])
	assert.Equal(t, "3f2a", rows[1][10])

	rows, err = f.GetRows("certificate")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NEEDS_REVIEW", rows[1][2])
	assert.Equal(t, "issuer, completion_date", rows[1][8])

	rows, err = f.GetRows("skill")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportProofsXLSXRepoError(t *testing.T) {
	svc := NewService(&stubRepo{err: errors.New("db down")}, nil)
	_, _, err := svc.ExportProofsXLSX(context.Background(), repository.ListFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query proofs")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "a", truncate("abc", 1))
}
