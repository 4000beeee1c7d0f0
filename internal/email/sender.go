package email

import (
	"context"
	"time"

	"smart_crm_backend/platform/config"
)

// ReportReady describes an uploaded report for the export notification.
type ReportReady struct {
	Kind        string
	Period      string
	DownloadURL string
	ExpiresAt   time.Time
}

type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name, loginURL string) error
	SendReportReadyEmail(ctx context.Context, toEmail, name string, report ReportReady) error
}

type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, name, loginURL string) error {
	return nil
}

func (NoopSender) SendReportReadyEmail(ctx context.Context, toEmail, name string, report ReportReady) error {
	return nil
}

// NewSender returns an SMTP sender, or NoopSender when SMTP is not configured.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
