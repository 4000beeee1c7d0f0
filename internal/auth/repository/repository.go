package repository

import (
	"context"
	"errors"
	"fmt"

	"smart_crm_backend/internal/auth/domain"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	userNotFoundMessage = "user not found"
	uniqueViolation     = "23505"
)

const userColumns = `id, email, password_hash, full_name, role, phone, avatar_url,
	target_monthly_revenue, target_monthly_deals, hourly_rate, is_active, created_at, updated_at`

// Repository stores users in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUserParams are the fields of a new user.
type CreateUserParams struct {
	Email                string
	PasswordHash         string
	FullName             string
	Role                 string
	Phone                *string
	TargetMonthlyRevenue float64
	TargetMonthlyDeals   int
	HourlyRate           float64
}

// UpdateUserParams are the optional fields of a user update. Nil leaves a
// column unchanged.
type UpdateUserParams struct {
	FullName             *string
	Phone                *string
	AvatarURL            *string
	Role                 *string
	TargetMonthlyRevenue *float64
	TargetMonthlyDeals   *int
	HourlyRate           *float64
	IsActive             *bool
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperr.NotFound(userNotFoundMessage)
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperr.NotFound(userNotFoundMessage)
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// List returns users ordered by name. With activeOnly, deactivated users are skipped.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY full_name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) Create(ctx context.Context, params CreateUserParams) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, phone,
			target_monthly_revenue, target_monthly_deals, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.FullName, params.Role, params.Phone,
		params.TargetMonthlyRevenue, params.TargetMonthlyDeals, params.HourlyRate,
	)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, apperr.Conflict("email already registered")
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			avatar_url = COALESCE($4, avatar_url),
			role = COALESCE($5, role),
			target_monthly_revenue = COALESCE($6, target_monthly_revenue),
			target_monthly_deals = COALESCE($7, target_monthly_deals),
			hourly_rate = COALESCE($8, hourly_rate),
			is_active = COALESCE($9, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, params.FullName, params.Phone, params.AvatarURL, params.Role,
		params.TargetMonthlyRevenue, params.TargetMonthlyDeals, params.HourlyRate, params.IsActive,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperr.NotFound(userNotFoundMessage)
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Deactivate soft-deletes a user.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.Phone, &u.AvatarURL,
		&u.TargetMonthlyRevenue, &u.TargetMonthlyDeals, &u.HourlyRate, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}
