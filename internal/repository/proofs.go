package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

const (
	proofsTable = "extracted_proofs"
	timeLayout  = "2006-01-02T15:04:05.000000000Z07:00"

	defaultListLimit = 100
	maxListLimit     = 1000
)

var proofColumns = []string{
	"id", "proof_type", "filename", "content_hash", "extracted_data",
	"confidence", "status", "flagged_fields", "validation_hash", "created_at",
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	ProofType constants.ProofType
	Status    constants.ProofStatus
	Limit     int
}

type ProofRepository interface {
	Save(ctx context.Context, p *entity.StoredProof) error
	List(ctx context.Context, f ListFilter) ([]*entity.StoredProof, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StoredProof, error)
}

type proofRepository struct {
	drv     *entsql.Driver
	b       *entsql.DialectBuilder
	dialect string
	logger  *slog.Logger
}

func NewProofRepository(db *DB, logger *slog.Logger) ProofRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &proofRepository{
		drv:     db.Driver,
		b:       entsql.Dialect(db.Dialect),
		dialect: db.Dialect,
		logger:  logger,
	}
}

// Save inserts p, assigning an ID and creation time when they are unset.
func (r *proofRepository) Save(ctx context.Context, p *entity.StoredProof) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()

	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	conf := p.Confidence
	if conf == nil {
		conf = entity.Confidence{}
	}
	confJSON, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("encode confidence: %w", err)
	}
	flagged := p.FlaggedFields
	if flagged == nil {
		flagged = []string{}
	}
	flaggedJSON, err := json.Marshal(flagged)
	if err != nil {
		return fmt.Errorf("encode flagged fields: %w", err)
	}

	var vh any
	if p.ValidationHash != nil {
		vh = *p.ValidationHash
	}

	query, args := r.b.Insert(proofsTable).
		Columns(proofColumns...).
		Values(
			p.ID.String(), string(p.ProofType), p.Filename, p.ContentHash, string(fields),
			string(confJSON), string(p.Status), string(flaggedJSON), vh, r.timeArg(p.CreatedAt),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to save proof", "id", p.ID, "error", err)
		return fmt.Errorf("%w: save proof: %v", common.ErrDatabase, err)
	}
	r.logger.Debug("proof saved", "id", p.ID, "proof_type", p.ProofType, "status", p.Status)
	return nil
}

// timeArg binds created_at: TIMESTAMPTZ takes a time.Time, the SQLite TEXT
// column a fixed-width RFC 3339 string that sorts chronologically.
func (r *proofRepository) timeArg(t time.Time) any {
	if r.dialect == dialect.Postgres {
		return t
	}
	return t.Format(timeLayout)
}

// List returns proofs newest first.
func (r *proofRepository) List(ctx context.Context, f ListFilter) ([]*entity.StoredProof, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	sel := r.b.Select(proofColumns...).From(r.b.Table(proofsTable))
	if f.ProofType != "" {
		sel = sel.Where(entsql.EQ("proof_type", string(f.ProofType)))
	}
	if f.Status != "" {
		sel = sel.Where(entsql.EQ("status", string(f.Status)))
	}
	query, args := sel.OrderBy(entsql.Desc("created_at")).Limit(limit).Query()
	return r.query(ctx, query, args)
}

func (r *proofRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StoredProof, error) {
	query, args := r.b.Select(proofColumns...).
		From(r.b.Table(proofsTable)).
		Where(entsql.EQ("id", id.String())).
		Limit(1).
		Query()
	out, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("proof %s: %w", id, common.ErrNotFound)
	}
	return out[0], nil
}

func (r *proofRepository) query(ctx context.Context, query string, args []any) ([]*entity.StoredProof, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: query proofs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.StoredProof
	for rows.Next() {
		p, err := scanProof(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate proofs: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func scanProof(rows *entsql.Rows) (*entity.StoredProof, error) {
	var (
		id, proofType, status string
		fields, conf, flagged string
		createdAt             any
		vh                    sql.NullString
		p                     entity.StoredProof
	)
	if err := rows.Scan(&id, &proofType, &p.Filename, &p.ContentHash, &fields, &conf, &status, &flagged, &vh, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: scan proof: %v", common.ErrDatabase, err)
	}

	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	if p.CreatedAt, err = parseCreatedAt(createdAt); err != nil {
		return nil, err
	}
	p.ProofType = constants.ProofType(proofType)
	p.Status = constants.ProofStatus(status)
	if vh.Valid {
		s := vh.String
		p.ValidationHash = &s
	}
	if err := errors.Join(
		json.Unmarshal([]byte(fields), &p.Fields),
		json.Unmarshal([]byte(conf), &p.Confidence),
		json.Unmarshal([]byte(flagged), &p.FlaggedFields),
	); err != nil {
		return nil, fmt.Errorf("decode proof %s: %w", id, err)
	}
	return &p, nil
}

// parseCreatedAt accepts a TIMESTAMPTZ value or the SQLite text form.
func parseCreatedAt(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("parse created_at: unexpected %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t.UTC(), nil
}
