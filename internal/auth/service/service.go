package service

import (
	"context"
	"strings"
	"time"

	"smart_crm_backend/internal/auth/domain"
	"smart_crm_backend/internal/auth/password"
	"smart_crm_backend/internal/auth/repository"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType       = "access"
	msgInvalidCredentials = "invalid credentials"
)

// Repository is the user store the service depends on.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]domain.User, error)
	Create(ctx context.Context, params repository.CreateUserParams) (domain.User, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (domain.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	cfg      config.AuthServiceConfig
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo Repository, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, eventBus: eventBus, log: log, now: time.Now}
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        domain.User
}

// Login verifies credentials and issues an access token. Unknown emails,
// wrong passwords and deactivated users all yield the same error.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (Session, error) {
	email = strings.TrimSpace(email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return Session{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return Session{}, err
	}
	if !user.IsActive {
		s.log.AuthEvent("login", email, false, "inactive user")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", email, false, "password mismatch")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return Session{}, err
	}
	s.log.AuthEvent("login", email, true, "")
	return Session{AccessToken: token, ExpiresIn: s.cfg.GetAccessTokenTTL(), User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns active users unless includeInactive is set.
func (s *Service) ListUsers(ctx context.Context, includeInactive bool) ([]domain.User, error) {
	return s.repo.List(ctx, !includeInactive)
}

// CreateUserInput are the admin-supplied fields of a new user.
type CreateUserInput struct {
	Email                string
	Password             string
	FullName             string
	Role                 string
	Phone                *string
	TargetMonthlyRevenue *float64
	TargetMonthlyDeals   *int
	HourlyRate           *float64
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	hash, err := password.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleRepresentative
	}
	params := repository.CreateUserParams{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		Phone:        in.Phone,
	}
	if in.TargetMonthlyRevenue != nil {
		params.TargetMonthlyRevenue = *in.TargetMonthlyRevenue
	}
	if in.TargetMonthlyDeals != nil {
		params.TargetMonthlyDeals = *in.TargetMonthlyDeals
	}
	if in.HourlyRate != nil {
		params.HourlyRate = *in.HourlyRate
	}

	user, err := s.repo.Create(ctx, params)
	if err != nil {
		return domain.User{}, err
	}
	s.publish(ctx, user.ID, events.ActionCreated)
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (domain.User, error) {
	user, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return domain.User{}, err
	}
	s.publish(ctx, user.ID, events.ActionUpdated)
	return user, nil
}

// UpdateMe lets a user edit their own profile. Role, rate, targets and the
// active flag are admin-only and are ignored here.
func (s *Service) UpdateMe(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (domain.User, error) {
	params.Role = nil
	params.HourlyRate = nil
	params.TargetMonthlyRevenue = nil
	params.TargetMonthlyDeals = nil
	params.IsActive = nil
	return s.UpdateUser(ctx, id, params)
}

// DeactivateUser soft-deletes a user. Admins cannot deactivate themselves.
func (s *Service) DeactivateUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperr.Validation("cannot deactivate your own account")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, userID uuid.UUID, action string) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.UserChanged{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
		Action:    action,
	})
}

func (s *Service) signAccessToken(user domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": user.Roles(),
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
