package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskNotFoundMessage = "task not found"

const taskColumns = `id, title, description, due_date, assigned_to, lead_id, deal_id, priority, status,
	is_handled, requires_urgent_action, completed_at, created_at`

// openStatuses is the SQL list of statuses that still expect work.
const openStatuses = `('pending', 'in_progress')`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListParams filters a task listing. Nil filters are ignored.
type ListParams struct {
	Status     *domain.Status
	AssignedTo *uuid.UUID
	LeadID     *uuid.UUID
	DealID     *uuid.UUID
	Limit      int
	Offset     int
}

type CreateParams struct {
	Title                string
	Description          *string
	DueDate              time.Time
	AssignedTo           *uuid.UUID
	LeadID               *uuid.UUID
	DealID               *uuid.UUID
	Priority             domain.Priority
	Status               domain.Status
	RequiresUrgentAction bool
}

// UpdateParams leaves nil columns unchanged. CompletedAt and IsHandled are
// set by the service when a status change completes the task.
type UpdateParams struct {
	Title                *string
	Description          *string
	DueDate              *time.Time
	AssignedTo           *uuid.UUID
	LeadID               *uuid.UUID
	DealID               *uuid.UUID
	Priority             *domain.Priority
	Status               *domain.Status
	IsHandled            *bool
	RequiresUrgentAction *bool
	CompletedAt          *time.Time
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Task, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	if params.Status != nil {
		addEquals("status", string(*params.Status))
	}
	if params.AssignedTo != nil {
		addEquals("assigned_to", *params.AssignedTo)
	}
	if params.LeadID != nil {
		addEquals("lead_id", *params.LeadID)
	}
	if params.DealID != nil {
		addEquals("deal_id", *params.DealID)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE %s
		ORDER BY due_date ASC, id
		LIMIT $%d OFFSET $%d
	`, taskColumns, strings.Join(whereClauses, " AND "), argIdx, argIdx+1)

	return r.queryTasks(ctx, "list tasks", query, args...)
}

// ListAll returns every task, optionally restricted to one assignee.
func (r *Repository) ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Task, error) {
	if assignedTo != nil {
		return r.queryTasks(ctx, "list all tasks", `SELECT `+taskColumns+` FROM tasks WHERE assigned_to = $1 ORDER BY due_date`, *assignedTo)
	}
	return r.queryTasks(ctx, "list all tasks", `SELECT `+taskColumns+` FROM tasks ORDER BY due_date`)
}

// ListOpenDueBetween returns open tasks due in [from, to).
func (r *Repository) ListOpenDueBetween(ctx context.Context, from, to time.Time, assignedTo *uuid.UUID) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status IN ` + openStatuses + ` AND due_date >= $1 AND due_date < $2`
	args := []interface{}{from, to}
	if assignedTo != nil {
		query += ` AND assigned_to = $3`
		args = append(args, *assignedTo)
	}
	query += ` ORDER BY due_date`
	return r.queryTasks(ctx, "list tasks due between", query, args...)
}

// ListOpenDueBefore returns open tasks due strictly before cutoff.
func (r *Repository) ListOpenDueBefore(ctx context.Context, cutoff time.Time, assignedTo *uuid.UUID) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status IN ` + openStatuses + ` AND due_date < $1`
	args := []interface{}{cutoff}
	if assignedTo != nil {
		query += ` AND assigned_to = $2`
		args = append(args, *assignedTo)
	}
	query += ` ORDER BY due_date`
	return r.queryTasks(ctx, "list overdue tasks", query, args...)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, apperr.NotFound(taskNotFoundMessage)
		}
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (domain.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, due_date, assigned_to, lead_id, deal_id, priority, status, requires_urgent_action)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		p.Title, p.Description, p.DueDate, p.AssignedTo, p.LeadID, p.DealID,
		string(p.Priority), string(p.Status), p.RequiresUrgentAction,
	)
	t, err := scanTask(row)
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (domain.Task, error) {
	var priority, status *string
	if p.Priority != nil {
		v := string(*p.Priority)
		priority = &v
	}
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			due_date = COALESCE($4, due_date),
			assigned_to = COALESCE($5, assigned_to),
			lead_id = COALESCE($6, lead_id),
			deal_id = COALESCE($7, deal_id),
			priority = COALESCE($8, priority),
			status = COALESCE($9, status),
			is_handled = COALESCE($10, is_handled),
			requires_urgent_action = COALESCE($11, requires_urgent_action),
			completed_at = COALESCE($12, completed_at)
		WHERE id = $1
		RETURNING `+taskColumns,
		id, p.Title, p.Description, p.DueDate, p.AssignedTo, p.LeadID, p.DealID,
		priority, status, p.IsHandled, p.RequiresUrgentAction, p.CompletedAt,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, apperr.NotFound(taskNotFoundMessage)
		}
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(taskNotFoundMessage)
	}
	return nil
}

func (r *Repository) queryTasks(ctx context.Context, op, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	var priority, status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.AssignedTo, &t.LeadID, &t.DealID,
		&priority, &status, &t.IsHandled, &t.RequiresUrgentAction, &t.CompletedAt, &t.CreatedAt)
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	return t, err
}
