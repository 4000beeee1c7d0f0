package transport

import "smart_crm_backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        domain.User `json:"user"`
}

type CreateUserRequest struct {
	Email                string   `json:"email" validate:"required,email"`
	Password             string   `json:"password" validate:"required,min=8"`
	FullName             string   `json:"full_name" validate:"required,min=1,max=200"`
	Role                 string   `json:"role" validate:"omitempty,oneof=admin representative"`
	Phone                *string  `json:"phone" validate:"omitempty,max=40"`
	TargetMonthlyRevenue *float64 `json:"target_monthly_revenue" validate:"omitempty,gte=0"`
	TargetMonthlyDeals   *int     `json:"target_monthly_deals" validate:"omitempty,gte=0"`
	HourlyRate           *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
}

type UpdateUserRequest struct {
	FullName             *string  `json:"full_name" validate:"omitempty,min=1,max=200"`
	Phone                *string  `json:"phone" validate:"omitempty,max=40"`
	AvatarURL            *string  `json:"avatar_url" validate:"omitempty,url"`
	Role                 *string  `json:"role" validate:"omitempty,oneof=admin representative"`
	TargetMonthlyRevenue *float64 `json:"target_monthly_revenue" validate:"omitempty,gte=0"`
	TargetMonthlyDeals   *int     `json:"target_monthly_deals" validate:"omitempty,gte=0"`
	HourlyRate           *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	IsActive             *bool    `json:"is_active"`
}
