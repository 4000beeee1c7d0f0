package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dealNotFoundMessage = "deal not found"

const dealColumns = `id, title, value, lead_id, assigned_to, description, stage, probability,
	expected_close_date, actual_close_date, estimated_hours, actual_hours, service_type,
	closed_at, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListParams filters a deal listing. Nil filters are ignored.
type ListParams struct {
	Stage      *domain.Stage
	AssignedTo *uuid.UUID
	LeadID     *uuid.UUID
	SortColumn string
	Ascending  bool
	Limit      int
	Offset     int
}

// CreateParams are the stored attributes of a new deal.
type CreateParams struct {
	Title             string
	Value             float64
	LeadID            *uuid.UUID
	AssignedTo        *uuid.UUID
	Description       *string
	Stage             domain.Stage
	Probability       int
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	EstimatedHours    *float64
	ServiceType       *string
	ClosedAt          *time.Time
}

// UpdateParams are the optional attributes of a deal update. Nil leaves a
// column unchanged.
type UpdateParams struct {
	Title             *string
	Value             *float64
	LeadID            *uuid.UUID
	AssignedTo        *uuid.UUID
	Description       *string
	Stage             *domain.Stage
	Probability       *int
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	EstimatedHours    *float64
	ServiceType       *string
	ClosedAt          *time.Time
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Deal, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	if params.Stage != nil {
		addEquals("stage", string(*params.Stage))
	}
	if params.AssignedTo != nil {
		addEquals("assigned_to", *params.AssignedTo)
	}
	if params.LeadID != nil {
		addEquals("lead_id", *params.LeadID)
	}

	sortColumn := params.SortColumn
	if sortColumn == "" {
		sortColumn = "created_at"
	}
	sortOrder := "DESC"
	if params.Ascending {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM deals
		WHERE %s
		ORDER BY %s %s NULLS LAST, id
		LIMIT $%d OFFSET $%d
	`, dealColumns, strings.Join(whereClauses, " AND "), sortColumn, sortOrder, argIdx, argIdx+1)

	return r.queryDeals(ctx, "list deals", query, args...)
}

// ListAll returns every deal, optionally restricted to one assignee.
func (r *Repository) ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Deal, error) {
	if assignedTo != nil {
		return r.queryDeals(ctx, "list all deals", `SELECT `+dealColumns+` FROM deals WHERE assigned_to = $1 ORDER BY created_at DESC`, *assignedTo)
	}
	return r.queryDeals(ctx, "list all deals", `SELECT `+dealColumns+` FROM deals ORDER BY created_at DESC`)
}

// ListWon returns closed_won deals, the input of the revenue reports.
func (r *Repository) ListWon(ctx context.Context) ([]domain.Deal, error) {
	return r.queryDeals(ctx, "list won deals", `SELECT `+dealColumns+` FROM deals WHERE stage = $1`, string(domain.StageClosedWon))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Deal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	deal, err := scanDeal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Deal{}, apperr.NotFound(dealNotFoundMessage)
		}
		return domain.Deal{}, fmt.Errorf("get deal: %w", err)
	}
	return deal, nil
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (domain.Deal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO deals (
			title, value, lead_id, assigned_to, description, stage, probability,
			expected_close_date, actual_close_date, estimated_hours, service_type, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+dealColumns,
		p.Title, p.Value, p.LeadID, p.AssignedTo, p.Description, string(p.Stage), p.Probability,
		p.ExpectedCloseDate, p.ActualCloseDate, p.EstimatedHours, p.ServiceType, p.ClosedAt,
	)
	deal, err := scanDeal(row)
	if err != nil {
		return domain.Deal{}, fmt.Errorf("create deal: %w", err)
	}
	return deal, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (domain.Deal, error) {
	var stage *string
	if p.Stage != nil {
		s := string(*p.Stage)
		stage = &s
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE deals SET
			title = COALESCE($2, title),
			value = COALESCE($3, value),
			lead_id = COALESCE($4, lead_id),
			assigned_to = COALESCE($5, assigned_to),
			description = COALESCE($6, description),
			stage = COALESCE($7, stage),
			probability = COALESCE($8, probability),
			expected_close_date = COALESCE($9, expected_close_date),
			actual_close_date = COALESCE($10, actual_close_date),
			estimated_hours = COALESCE($11, estimated_hours),
			service_type = COALESCE($12, service_type),
			closed_at = COALESCE($13, closed_at),
			updated_at = now()
		WHERE id = $1
		RETURNING `+dealColumns,
		id, p.Title, p.Value, p.LeadID, p.AssignedTo, p.Description, stage, p.Probability,
		p.ExpectedCloseDate, p.ActualCloseDate, p.EstimatedHours, p.ServiceType, p.ClosedAt,
	)
	deal, err := scanDeal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Deal{}, apperr.NotFound(dealNotFoundMessage)
		}
		return domain.Deal{}, fmt.Errorf("update deal: %w", err)
	}
	return deal, nil
}

// SetActualHours stores the derived cumulative hours of a deal.
func (r *Repository) SetActualHours(ctx context.Context, id uuid.UUID, hours float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE deals SET actual_hours = $2, updated_at = now() WHERE id = $1`, id, hours)
	if err != nil {
		return fmt.Errorf("set deal actual hours: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(dealNotFoundMessage)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(dealNotFoundMessage)
	}
	return nil
}

func (r *Repository) queryDeals(ctx context.Context, op, query string, args ...interface{}) ([]domain.Deal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	deals := make([]domain.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return deals, nil
}

func scanDeal(row pgx.Row) (domain.Deal, error) {
	var d domain.Deal
	var stage string
	err := row.Scan(
		&d.ID, &d.Title, &d.Value, &d.LeadID, &d.AssignedTo, &d.Description, &stage, &d.Probability,
		&d.ExpectedCloseDate, &d.ActualCloseDate, &d.EstimatedHours, &d.ActualHours, &d.ServiceType,
		&d.ClosedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	d.Stage = domain.Stage(stage)
	return d, err
}
