package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const workLogNotFoundMessage = "work log not found"

const workLogColumns = `id, user_id, deal_id, date, hours, description, billable, created_at`

// WorkLogParams are the attributes of a new work log.
type WorkLogParams struct {
	UserID      uuid.UUID
	DealID      uuid.UUID
	Date        time.Time
	Hours       float64
	Description *string
	Billable    bool
}

// WorkLogUpdate are the optional attributes of a work log update.
type WorkLogUpdate struct {
	Date        *time.Time
	Hours       *float64
	Description *string
	Billable    *bool
}

// WorkLogFilter selects work logs. Nil fields are ignored; dates are inclusive.
type WorkLogFilter struct {
	UserID *uuid.UUID
	DealID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

func (r *Repository) ListWorkLogs(ctx context.Context, f WorkLogFilter) ([]domain.WorkLog, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE TRUE`
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.DealID != nil {
		add("deal_id = $%d", *f.DealID)
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date <= $%d", *f.To)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.WorkLog, 0)
	for rows.Next() {
		l, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *Repository) GetWorkLog(ctx context.Context, id uuid.UUID) (domain.WorkLog, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+workLogColumns+` FROM work_logs WHERE id = $1`, id)
	l, err := scanWorkLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WorkLog{}, apperr.NotFound(workLogNotFoundMessage)
		}
		return domain.WorkLog{}, fmt.Errorf("get work log: %w", err)
	}
	return l, nil
}

func (r *Repository) CreateWorkLog(ctx context.Context, p WorkLogParams) (domain.WorkLog, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO work_logs (user_id, deal_id, date, hours, description, billable)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+workLogColumns,
		p.UserID, p.DealID, p.Date, p.Hours, p.Description, p.Billable,
	)
	l, err := scanWorkLog(row)
	if err != nil {
		return domain.WorkLog{}, fmt.Errorf("create work log: %w", err)
	}
	return l, nil
}

func (r *Repository) UpdateWorkLog(ctx context.Context, id uuid.UUID, p WorkLogUpdate) (domain.WorkLog, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE work_logs SET
			date = COALESCE($2, date),
			hours = COALESCE($3, hours),
			description = COALESCE($4, description),
			billable = COALESCE($5, billable)
		WHERE id = $1
		RETURNING `+workLogColumns,
		id, p.Date, p.Hours, p.Description, p.Billable,
	)
	l, err := scanWorkLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WorkLog{}, apperr.NotFound(workLogNotFoundMessage)
		}
		return domain.WorkLog{}, fmt.Errorf("update work log: %w", err)
	}
	return l, nil
}

func (r *Repository) DeleteWorkLog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM work_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete work log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(workLogNotFoundMessage)
	}
	return nil
}

func scanWorkLog(row pgx.Row) (domain.WorkLog, error) {
	var l domain.WorkLog
	err := row.Scan(&l.ID, &l.UserID, &l.DealID, &l.Date, &l.Hours, &l.Description, &l.Billable, &l.CreatedAt)
	return l, err
}
