package notification

import (
	"context"
	"testing"
	"time"

	"smart_crm_backend/internal/auth/domain"
	"smart_crm_backend/internal/email"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://crm.example.com/" }

type testUsers map[uuid.UUID]domain.User

func (u testUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	user, ok := u[id]
	if !ok {
		return domain.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

type testSender struct {
	welcomeTo  []string
	loginURL   string
	reportTo   []string
	lastReport email.ReportReady
}

func (s *testSender) SendWelcomeEmail(_ context.Context, toEmail, _, loginURL string) error {
	s.welcomeTo = append(s.welcomeTo, toEmail)
	s.loginURL = loginURL
	return nil
}

func (s *testSender) SendReportReadyEmail(_ context.Context, toEmail, _ string, report email.ReportReady) error {
	s.reportTo = append(s.reportTo, toEmail)
	s.lastReport = report
	return nil
}

func TestWelcomeEmailOnlyForCreatedUsers(t *testing.T) {
	userID := uuid.New()
	sender := &testSender{}
	m := New(testUsers{userID: {ID: userID, Email: "rep@example.com", FullName: "Rep"}}, sender, testNotificationConfig{}, logger.Nop())

	if err := m.Handle(context.Background(), events.UserChanged{UserID: userID, Action: events.ActionUpdated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.welcomeTo) != 0 {
		t.Fatalf("expected no welcome email for updates")
	}

	if err := m.Handle(context.Background(), events.UserChanged{UserID: userID, Action: events.ActionCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.welcomeTo) != 1 || sender.welcomeTo[0] != "rep@example.com" {
		t.Fatalf("expected welcome email to the new user, got %v", sender.welcomeTo)
	}
	if sender.loginURL != "https://crm.example.com/login" {
		t.Fatalf("unexpected login url %q", sender.loginURL)
	}
}

func TestReportExportedEmailsRequester(t *testing.T) {
	adminID := uuid.New()
	sender := &testSender{}
	m := New(testUsers{adminID: {ID: adminID, Email: "admin@example.com"}}, sender, testNotificationConfig{}, logger.Nop())
	expires := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	err := m.Handle(context.Background(), events.ReportExported{
		ExportID:    uuid.New(),
		ActorID:     adminID,
		Kind:        "profitability",
		Period:      "2026-05-01 to 2026-05-31",
		DownloadURL: "https://minio.local/report.csv",
		ExpiresAt:   expires,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.reportTo) != 1 || sender.reportTo[0] != "admin@example.com" {
		t.Fatalf("expected report email to the requester, got %v", sender.reportTo)
	}
	if sender.lastReport.DownloadURL != "https://minio.local/report.csv" || !sender.lastReport.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected report payload %+v", sender.lastReport)
	}
}

func TestReportExportedUnknownRequester(t *testing.T) {
	sender := &testSender{}
	m := New(testUsers{}, sender, testNotificationConfig{}, logger.Nop())

	err := m.Handle(context.Background(), events.ReportExported{ActorID: uuid.New()})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(sender.reportTo) != 0 {
		t.Fatalf("expected no email")
	}
}
