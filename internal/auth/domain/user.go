// Package domain holds the user record.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user may hold.
const (
	RoleAdmin          = "admin"
	RoleRepresentative = "representative"
)

// User is a CRM operator. HourlyRate prices their billable time.
type User struct {
	ID                   uuid.UUID `json:"id"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	FullName             string    `json:"full_name"`
	Role                 string    `json:"role"`
	Phone                *string   `json:"phone,omitempty"`
	AvatarURL            *string   `json:"avatar_url,omitempty"`
	TargetMonthlyRevenue float64   `json:"target_monthly_revenue"`
	TargetMonthlyDeals   int       `json:"target_monthly_deals"`
	HourlyRate           float64   `json:"hourly_rate"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Roles returns the role claim list for tokens.
func (u User) Roles() []string {
	return []string{u.Role}
}
