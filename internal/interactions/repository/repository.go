package repository

import (
	"context"
	"errors"
	"fmt"

	"smart_crm_backend/internal/interactions/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

const interactionColumns = `id, lead_id, deal_id, user_id, type, subject, content, outcome, duration_minutes, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateParams struct {
	LeadID          *uuid.UUID
	DealID          *uuid.UUID
	UserID          *uuid.UUID
	Type            domain.Type
	Subject         *string
	Content         *string
	Outcome         *string
	DurationMinutes *int
}

// ListRecent returns the newest interactions, optionally only those logged by userID.
func (r *Repository) ListRecent(ctx context.Context, limit int, userID *uuid.UUID) ([]domain.Interaction, error) {
	if userID != nil {
		return r.query(ctx, "list recent interactions",
			`SELECT `+interactionColumns+` FROM interactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, *userID, limit)
	}
	return r.query(ctx, "list recent interactions",
		`SELECT `+interactionColumns+` FROM interactions ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *Repository) ListForLead(ctx context.Context, leadID uuid.UUID) ([]domain.Interaction, error) {
	return r.query(ctx, "list lead interactions",
		`SELECT `+interactionColumns+` FROM interactions WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
}

func (r *Repository) ListForDeal(ctx context.Context, dealID uuid.UUID) ([]domain.Interaction, error) {
	return r.query(ctx, "list deal interactions",
		`SELECT `+interactionColumns+` FROM interactions WHERE deal_id = $1 ORDER BY created_at DESC`, dealID)
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (domain.Interaction, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO interactions (lead_id, deal_id, user_id, type, subject, content, outcome, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+interactionColumns,
		p.LeadID, p.DealID, p.UserID, string(p.Type), p.Subject, p.Content, p.Outcome, p.DurationMinutes,
	)
	i, err := scanInteraction(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.Interaction{}, apperr.NotFound("lead or deal not found")
		}
		return domain.Interaction{}, fmt.Errorf("create interaction: %w", err)
	}
	return i, nil
}

func (r *Repository) query(ctx context.Context, op, query string, args ...interface{}) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]domain.Interaction, 0)
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func scanInteraction(row pgx.Row) (domain.Interaction, error) {
	var i domain.Interaction
	var typ string
	err := row.Scan(&i.ID, &i.LeadID, &i.DealID, &i.UserID, &typ, &i.Subject, &i.Content,
		&i.Outcome, &i.DurationMinutes, &i.CreatedAt)
	i.Type = domain.Type(typ)
	return i, err
}
