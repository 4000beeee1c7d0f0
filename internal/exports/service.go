package exports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"smart_crm_backend/internal/adapters/storage"
	"smart_crm_backend/internal/analytics/aggregate"
	analyticssvc "smart_crm_backend/internal/analytics/service"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const kindProfitability = "profitability"

// Reports is the slice of the analytics service an export renders.
type Reports interface {
	Profitability(ctx context.Context, start, end string) (aggregate.Profitability, error)
	Pipeline(ctx context.Context, assignedTo *uuid.UUID) (analyticssvc.Pipeline, error)
}

type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
}

// Export is an uploaded report with a fresh download link.
type Export struct {
	Record
	Download *storage.PresignedURL `json:"download"`
}

type Service struct {
	reports  Reports
	objects  storage.ObjectStore
	bucket   string
	store    Store
	eventBus events.Bus
	log      *logger.Logger
}

// NewService builds the export service. objects may be nil, in which case
// every export reports storage as unavailable.
func NewService(reports Reports, objects storage.ObjectStore, bucket string, store Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{reports: reports, objects: objects, bucket: bucket, store: store, eventBus: eventBus, log: log}
}

// ExportProfitability renders the profitability report for [start, end]
// as CSV or XLSX, uploads it and returns a presigned download link.
func (s *Service) ExportProfitability(ctx context.Context, actor uuid.UUID, start, end, format string) (Export, error) {
	contentType, ok := contentTypes[format]
	if !ok {
		return Export{}, apperr.Validation("format must be csv or xlsx")
	}
	if s.objects == nil {
		return Export{}, apperr.Unavailable("report storage is not configured")
	}

	report, err := s.reports.Profitability(ctx, start, end)
	if err != nil {
		return Export{}, err
	}
	pipeline, err := s.reports.Pipeline(ctx, nil)
	if err != nil {
		return Export{}, err
	}
	body, err := render(format, profitabilitySections(report, pipeline.Summary))
	if err != nil {
		return Export{}, fmt.Errorf("render profitability %s: %w", format, err)
	}

	if err := s.objects.EnsureBucketExists(ctx, s.bucket); err != nil {
		return Export{}, apperr.Wrap(apperr.KindUnavailable, "report storage unavailable", err)
	}
	folder := fmt.Sprintf("%s/%s_%s", kindProfitability, dayOr(report.Period.Start, "open"), dayOr(report.Period.End, "open"))
	key, err := s.objects.UploadFile(ctx, s.bucket, folder, "profitability."+format, contentType, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return Export{}, apperr.Wrap(apperr.KindUnavailable, "report upload failed", err)
	}

	rec := Record{
		Kind:        kindProfitability,
		ObjectKey:   key,
		PeriodStart: report.Period.Start,
		PeriodEnd:   report.Period.End,
		SizeBytes:   int64(len(body)),
		CreatedBy:   &actor,
		CreatedAt:   time.Now().UTC(),
	}
	if saved, err := s.store.Create(ctx, rec); err != nil {
		s.log.WithContext(ctx).Warn("export uploaded but not recorded", "object_key", key, "error", err)
	} else {
		rec = saved
	}

	export, err := s.withDownload(ctx, rec)
	if err != nil {
		return Export{}, err
	}
	s.publishExported(ctx, actor, export)
	return export, nil
}

func (s *Service) publishExported(ctx context.Context, actor uuid.UUID, export Export) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.ReportExported{
		BaseEvent:   events.NewBaseEvent(),
		ExportID:    export.ID,
		ActorID:     actor,
		Kind:        export.Kind,
		Period:      dayOr(export.PeriodStart, "open") + " to " + dayOr(export.PeriodEnd, "open"),
		DownloadURL: export.Download.URL,
		ExpiresAt:   export.Download.ExpiresAt,
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.store.List(ctx, limit, offset)
}

// Download returns a fresh presigned link for a previous export.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (Export, error) {
	if s.objects == nil {
		return Export{}, apperr.Unavailable("report storage is not configured")
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Export{}, err
	}
	return s.withDownload(ctx, rec)
}

func (s *Service) withDownload(ctx context.Context, rec Record) (Export, error) {
	link, err := s.objects.GenerateDownloadURL(ctx, s.bucket, rec.ObjectKey)
	if err != nil {
		return Export{}, apperr.Wrap(apperr.KindUnavailable, "report storage unavailable", err)
	}
	return Export{Record: rec, Download: link}, nil
}

func dayOr(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("2006-01-02")
}
