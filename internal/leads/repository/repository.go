package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smart_crm_backend/internal/leads/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, company_name, contact_name, email, phone, business_size, estimated_budget,
	source, source_details, interest_level, industry, current_pain_points, ai_readiness_score,
	lead_score, lead_score_explanation, status, notes, assigned_to, last_contact_date,
	next_follow_up, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListParams filters a lead listing. Nil filters are ignored.
type ListParams struct {
	Status     *domain.LeadStatus
	Source     *domain.LeadSource
	AssignedTo *uuid.UUID
	MinScore   *float64
	Search     string
	SortColumn string
	Ascending  bool
	Limit      int
	Offset     int
}

// CreateParams are the stored attributes of a new lead.
type CreateParams struct {
	CompanyName       string
	ContactName       string
	Email             *string
	Phone             *string
	BusinessSize      *domain.BusinessSize
	EstimatedBudget   *float64
	Source            *domain.LeadSource
	SourceDetails     *string
	InterestLevel     *int
	Industry          *string
	CurrentPainPoints *string
	AIReadinessScore  *int
	Status            domain.LeadStatus
	Notes             *string
	AssignedTo        *uuid.UUID
	LastContactDate   *time.Time
	NextFollowUp      *time.Time
}

// UpdateParams are the optional attributes of a lead update. Nil leaves a
// column unchanged.
type UpdateParams struct {
	CompanyName       *string
	ContactName       *string
	Email             *string
	Phone             *string
	BusinessSize      *domain.BusinessSize
	EstimatedBudget   *float64
	Source            *domain.LeadSource
	SourceDetails     *string
	InterestLevel     *int
	Industry          *string
	CurrentPainPoints *string
	AIReadinessScore  *int
	Status            *domain.LeadStatus
	Notes             *string
	AssignedTo        *uuid.UUID
	LastContactDate   *time.Time
	NextFollowUp      *time.Time
}

// DuplicateQuery matches leads by any of its non-nil fields.
type DuplicateQuery struct {
	Email       *string
	Phone       *string
	CompanyName *string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

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
		SELECT %s
		FROM leads
		WHERE %s
		ORDER BY %s %s NULLS LAST, id
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	return r.query(ctx, "list leads", query, args...)
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	addClause := func(format string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(format, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addClause("status = $%d", string(*params.Status))
	}
	if params.Source != nil {
		addClause("source = $%d", string(*params.Source))
	}
	if params.AssignedTo != nil {
		addClause("assigned_to = $%d", *params.AssignedTo)
	}
	if params.MinScore != nil {
		addClause("lead_score >= $%d", *params.MinScore)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(company_name ILIKE $%d OR contact_name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+search+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

// TopScored returns the highest-scored leads, unscored leads last.
func (r *Repository) TopScored(ctx context.Context, limit int, assignedTo *uuid.UUID) ([]domain.Lead, error) {
	if assignedTo != nil {
		return r.query(ctx, "top scored leads", `SELECT `+leadColumns+` FROM leads
			WHERE lead_score IS NOT NULL AND assigned_to = $2
			ORDER BY lead_score DESC LIMIT $1`, limit, *assignedTo)
	}
	return r.query(ctx, "top scored leads", `SELECT `+leadColumns+` FROM leads
		WHERE lead_score IS NOT NULL
		ORDER BY lead_score DESC LIMIT $1`, limit)
}

// ListAll returns every lead, optionally restricted to one assignee. It feeds
// the in-memory aggregators.
func (r *Repository) ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Lead, error) {
	if assignedTo != nil {
		return r.query(ctx, "list all leads", `SELECT `+leadColumns+` FROM leads WHERE assigned_to = $1`, *assignedTo)
	}
	return r.query(ctx, "list all leads", `SELECT `+leadColumns+` FROM leads`)
}

// FindDuplicates returns leads sharing the email or phone exactly, or whose
// company name contains the given one, case-insensitively.
func (r *Repository) FindDuplicates(ctx context.Context, q DuplicateQuery) ([]domain.Lead, error) {
	var clauses []string
	var args []interface{}
	argIdx := 1

	if q.Email != nil {
		clauses = append(clauses, fmt.Sprintf("lower(email) = lower($%d)", argIdx))
		args = append(args, *q.Email)
		argIdx++
	}
	if q.Phone != nil {
		clauses = append(clauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *q.Phone)
		argIdx++
	}
	if q.CompanyName != nil {
		clauses = append(clauses, fmt.Sprintf("company_name ILIKE $%d", argIdx))
		args = append(args, "%"+*q.CompanyName+"%")
	}
	if len(clauses) == 0 {
		return []domain.Lead{}, nil
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + strings.Join(clauses, " OR ") + ` ORDER BY created_at DESC LIMIT 20`
	return r.query(ctx, "find duplicate leads", query, args...)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			company_name, contact_name, email, phone, business_size, estimated_budget,
			source, source_details, interest_level, industry, current_pain_points, ai_readiness_score,
			status, notes, assigned_to, last_contact_date, next_follow_up
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+leadColumns,
		p.CompanyName, p.ContactName, p.Email, p.Phone, p.BusinessSize, p.EstimatedBudget,
		p.Source, p.SourceDetails, p.InterestLevel, p.Industry, p.CurrentPainPoints, p.AIReadinessScore,
		p.Status, p.Notes, p.AssignedTo, p.LastContactDate, p.NextFollowUp,
	)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			company_name = COALESCE($2, company_name),
			contact_name = COALESCE($3, contact_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			business_size = COALESCE($6, business_size),
			estimated_budget = COALESCE($7, estimated_budget),
			source = COALESCE($8, source),
			source_details = COALESCE($9, source_details),
			interest_level = COALESCE($10, interest_level),
			industry = COALESCE($11, industry),
			current_pain_points = COALESCE($12, current_pain_points),
			ai_readiness_score = COALESCE($13, ai_readiness_score),
			status = COALESCE($14, status),
			notes = COALESCE($15, notes),
			assigned_to = COALESCE($16, assigned_to),
			last_contact_date = COALESCE($17, last_contact_date),
			next_follow_up = COALESCE($18, next_follow_up),
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, p.CompanyName, p.ContactName, p.Email, p.Phone, p.BusinessSize, p.EstimatedBudget,
		p.Source, p.SourceDetails, p.InterestLevel, p.Industry, p.CurrentPainPoints, p.AIReadinessScore,
		p.Status, p.Notes, p.AssignedTo, p.LastContactDate, p.NextFollowUp,
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// UpdateScore stores a computed score and its explanation.
func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score float64, explanation string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET lead_score = $2, lead_score_explanation = $3, updated_at = now()
		WHERE id = $1`, id, score, explanation)
	if err != nil {
		return fmt.Errorf("update lead score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// TouchLastContact moves last_contact_date forward to at, never backwards.
func (r *Repository) TouchLastContact(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET last_contact_date = $2, updated_at = now()
		WHERE id = $1 AND (last_contact_date IS NULL OR last_contact_date < $2)`, id, at)
	if err != nil {
		return fmt.Errorf("touch lead last contact: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, op, query string, args ...interface{}) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return leads, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.ContactName, &l.Email, &l.Phone, &l.BusinessSize, &l.EstimatedBudget,
		&l.Source, &l.SourceDetails, &l.InterestLevel, &l.Industry, &l.CurrentPainPoints, &l.AIReadinessScore,
		&l.LeadScore, &l.LeadScoreExplanation, &l.Status, &l.Notes, &l.AssignedTo, &l.LastContactDate,
		&l.NextFollowUp, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}
