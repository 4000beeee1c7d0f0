package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exportColumns = `id, kind, object_key, period_start, period_end, size_bytes, created_by, created_at`

// Record is one uploaded report file.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	ObjectKey   string     `json:"object_key"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Repository stores the export history.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO report_exports (kind, object_key, period_start, period_end, size_bytes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+exportColumns,
		rec.Kind, rec.ObjectKey, rec.PeriodStart, rec.PeriodEnd, rec.SizeBytes, rec.CreatedBy)
	out, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("create export record: %w", err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+exportColumns+` FROM report_exports WHERE id = $1`, id)
	out, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, apperr.NotFound("export not found")
	}
	if err != nil {
		return Record{}, fmt.Errorf("get export record: %w", err)
	}
	return out, nil
}

// List returns the most recent exports first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+exportColumns+` FROM report_exports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list export records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Kind, &rec.ObjectKey, &rec.PeriodStart, &rec.PeriodEnd, &rec.SizeBytes, &rec.CreatedBy, &rec.CreatedAt)
	return rec, err
}
