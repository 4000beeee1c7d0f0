// Package notification sends emails in response to domain events, keeping
// the domain modules unaware of templates and mail delivery.
package notification

import (
	"context"
	"strings"

	"smart_crm_backend/internal/auth/domain"
	"smart_crm_backend/internal/email"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// UserReader resolves the recipient of a notification.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type Module struct {
	users   UserReader
	sender  email.Sender
	baseURL string
	log     *logger.Logger
}

func New(users UserReader, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		users:   users,
		sender:  sender,
		baseURL: strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:     log,
	}
}

// RegisterHandlers subscribes to the events that trigger an email.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.UserChanged{}.EventName(), m)
	bus.Subscribe(events.ReportExported{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserChanged:
		return m.handleUserChanged(ctx, e)
	case events.ReportExported:
		return m.handleReportExported(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleUserChanged(ctx context.Context, e events.UserChanged) error {
	if e.Action != events.ActionCreated {
		return nil
	}
	user, err := m.users.GetByID(ctx, e.UserID)
	if err != nil {
		m.log.Error("failed to load new user for welcome email", "userId", e.UserID, "error", err)
		return err
	}
	if err := m.sender.SendWelcomeEmail(ctx, user.Email, user.FullName, m.baseURL+"/login"); err != nil {
		m.log.Error("failed to send welcome email",
			"userId", e.UserID,
			"email", user.Email,
			"error", err,
		)
		return err
	}
	m.log.Info("welcome email sent", "userId", e.UserID, "email", user.Email)
	return nil
}

func (m *Module) handleReportExported(ctx context.Context, e events.ReportExported) error {
	user, err := m.users.GetByID(ctx, e.ActorID)
	if err != nil {
		m.log.Error("failed to load export requester", "userId", e.ActorID, "exportId", e.ExportID, "error", err)
		return err
	}
	report := email.ReportReady{
		Kind:        e.Kind,
		Period:      e.Period,
		DownloadURL: e.DownloadURL,
		ExpiresAt:   e.ExpiresAt,
	}
	if err := m.sender.SendReportReadyEmail(ctx, user.Email, user.FullName, report); err != nil {
		m.log.Error("failed to send report ready email",
			"userId", e.ActorID,
			"exportId", e.ExportID,
			"error", err,
		)
		return err
	}
	m.log.Info("report ready email sent", "userId", e.ActorID, "exportId", e.ExportID)
	return nil
}
