package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smart_crm_backend/internal/expenses/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseNotFoundMessage = "expense not found"

const expenseColumns = `id, amount, date, category, type, user_id, description, is_recurring, recurring_frequency, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListParams filters an expense listing. Nil filters are ignored; dates are
// inclusive.
type ListParams struct {
	Category *domain.Category
	UserID   *uuid.UUID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type CreateParams struct {
	Amount             float64
	Date               time.Time
	Category           domain.Category
	Type               string
	UserID             *uuid.UUID
	Description        *string
	IsRecurring        bool
	RecurringFrequency *string
}

type UpdateParams struct {
	Amount             *float64
	Date               *time.Time
	Category           *domain.Category
	Type               *string
	UserID             *uuid.UUID
	Description        *string
	IsRecurring        *bool
	RecurringFrequency *string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Expense, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	add := func(clause string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(clause, argIdx))
		args = append(args, value)
		argIdx++
	}
	if params.Category != nil {
		add("category = $%d", string(*params.Category))
	}
	if params.UserID != nil {
		add("user_id = $%d", *params.UserID)
	}
	if params.From != nil {
		add("date >= $%d", *params.From)
	}
	if params.To != nil {
		add("date <= $%d", *params.To)
	}

	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s ORDER BY date DESC, created_at DESC`,
		expenseColumns, strings.Join(whereClauses, " AND "))
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, params.Limit, params.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// ListInRange returns every expense dated within [from, to]; nil bounds are open.
func (r *Repository) ListInRange(ctx context.Context, from, to *time.Time) ([]domain.Expense, error) {
	return r.List(ctx, ListParams{From: from, To: to})
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, apperr.NotFound(expenseNotFoundMessage)
		}
		return domain.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (domain.Expense, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (amount, date, category, type, user_id, description, is_recurring, recurring_frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+expenseColumns,
		p.Amount, p.Date, string(p.Category), p.Type, p.UserID, p.Description, p.IsRecurring, p.RecurringFrequency,
	)
	e, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (domain.Expense, error) {
	var category *string
	if p.Category != nil {
		c := string(*p.Category)
		category = &c
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE expenses SET
			amount = COALESCE($2, amount),
			date = COALESCE($3, date),
			category = COALESCE($4, category),
			type = COALESCE($5, type),
			user_id = COALESCE($6, user_id),
			description = COALESCE($7, description),
			is_recurring = COALESCE($8, is_recurring),
			recurring_frequency = COALESCE($9, recurring_frequency)
		WHERE id = $1
		RETURNING `+expenseColumns,
		id, p.Amount, p.Date, category, p.Type, p.UserID, p.Description, p.IsRecurring, p.RecurringFrequency,
	)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, apperr.NotFound(expenseNotFoundMessage)
		}
		return domain.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(expenseNotFoundMessage)
	}
	return nil
}

func scanExpense(row pgx.Row) (domain.Expense, error) {
	var e domain.Expense
	var category string
	err := row.Scan(&e.ID, &e.Amount, &e.Date, &category, &e.Type, &e.UserID, &e.Description,
		&e.IsRecurring, &e.RecurringFrequency, &e.CreatedAt)
	e.Category = domain.Category(category)
	return e, err
}
