package exports

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"smart_crm_backend/internal/adapters/storage"
	"smart_crm_backend/internal/analytics/aggregate"
	analyticssvc "smart_crm_backend/internal/analytics/service"
	dealdomain "smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type fakeReports struct{}

func (fakeReports) Profitability(context.Context, string, string) (aggregate.Profitability, error) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	return aggregate.Profitability{
		Period:   aggregate.Period{Start: &start, End: &end},
		Revenue:  aggregate.RevenueSummary{TotalRevenue: 10000, DealCount: 1, AverageDealSize: 10000},
		Costs:    aggregate.CostBreakdown{Fixed: 2000, Total: 2000},
		Profit:   aggregate.Profit{Net: 8000, MarginPercent: 80},
		Warnings: []string{"end_date could not be parsed"},
	}, nil
}

func (fakeReports) Pipeline(context.Context, *uuid.UUID) (analyticssvc.Pipeline, error) {
	return analyticssvc.Pipeline{Summary: aggregate.PipelineSummary{
		ByStage: map[dealdomain.Stage]aggregate.StageTotals{
			dealdomain.StageNegotiation: {Count: 1, Value: 4000, WeightedValue: 2400},
		},
	}}, nil
}

type fakeObjects struct {
	buckets  []string
	uploaded map[string]string
	failPut  bool
}

func (f *fakeObjects) EnsureBucketExists(_ context.Context, bucket string) error {
	f.buckets = append(f.buckets, bucket)
	return nil
}

func (f *fakeObjects) UploadFile(_ context.Context, _, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	if f.failPut {
		return "", errors.New("connection reset")
	}
	body, _ := io.ReadAll(reader)
	key := folder + "/" + fileName
	f.uploaded[key] = string(body)
	return key, nil
}

func (f *fakeObjects) GenerateDownloadURL(_ context.Context, bucket, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.local/" + bucket + "/" + key, FileKey: key}, nil
}

func (f *fakeObjects) DeleteObject(context.Context, string, string) error { return nil }

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

type memoryStore struct {
	records map[uuid.UUID]Record
}

func (m *memoryStore) Create(_ context.Context, rec Record) (Record, error) {
	rec.ID = uuid.New()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, apperr.NotFound("export not found")
	}
	return rec, nil
}

func (m *memoryStore) List(context.Context, int, int) ([]Record, error) {
	out := []Record{}
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func TestExportProfitabilityUploadsCSV(t *testing.T) {
	objects := &fakeObjects{uploaded: map[string]string{}}
	store := &memoryStore{records: map[uuid.UUID]Record{}}
	bus := &recordingBus{}
	svc := NewService(fakeReports{}, objects, "crm-exports", store, bus, logger.Nop())
	actor := uuid.New()

	export, err := svc.ExportProfitability(context.Background(), actor, "2026-05-01", "bad", FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const key = "profitability/2026-05-01_2026-05-31/profitability.csv"
	if export.ObjectKey != key {
		t.Fatalf("expected key %q, got %q", key, export.ObjectKey)
	}
	if export.Download == nil || !strings.HasSuffix(export.Download.URL, key) {
		t.Fatalf("expected presigned link for the upload, got %+v", export.Download)
	}
	if export.CreatedBy == nil || *export.CreatedBy != actor {
		t.Fatalf("expected export attributed to the actor")
	}
	if len(objects.buckets) != 1 || objects.buckets[0] != "crm-exports" {
		t.Fatalf("expected bucket check, got %v", objects.buckets)
	}

	reader := csv.NewReader(strings.NewReader(objects.uploaded[key]))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("uploaded body is not valid csv: %v", err)
	}
	assertRow(t, records, []string{"profit", "net", "8000.00"})
	assertRow(t, records, []string{"warning", "", "end_date could not be parsed"})
	assertRow(t, records, []string{"negotiation", "1", "4000.00", "2400.00"})
	assertRow(t, records, []string{"closed_won", "0", "0.00", "0.00"})

	if len(bus.published) != 1 {
		t.Fatalf("expected one export event, got %d", len(bus.published))
	}
	evt, ok := bus.published[0].(events.ReportExported)
	if !ok || evt.ActorID != actor || evt.Period != "2026-05-01 to 2026-05-31" || evt.DownloadURL != export.Download.URL {
		t.Fatalf("unexpected export event %+v", bus.published[0])
	}
}

func TestExportWithoutStorageIsUnavailable(t *testing.T) {
	svc := NewService(fakeReports{}, nil, "crm-exports", &memoryStore{records: map[uuid.UUID]Record{}}, nil, logger.Nop())

	_, err := svc.ExportProfitability(context.Background(), uuid.New(), "", "", FormatCSV)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestUploadFailureIsNotRecorded(t *testing.T) {
	store := &memoryStore{records: map[uuid.UUID]Record{}}
	svc := NewService(fakeReports{}, &fakeObjects{failPut: true}, "crm-exports", store, nil, logger.Nop())

	if _, err := svc.ExportProfitability(context.Background(), uuid.New(), "", "", FormatCSV); err == nil {
		t.Fatalf("expected upload failure")
	}
	if len(store.records) != 0 {
		t.Fatalf("expected no export record, got %d", len(store.records))
	}
}

func TestExportProfitabilityUploadsXLSX(t *testing.T) {
	objects := &fakeObjects{uploaded: map[string]string{}}
	svc := NewService(fakeReports{}, objects, "crm-exports", &memoryStore{records: map[uuid.UUID]Record{}}, nil, logger.Nop())

	export, err := svc.ExportProfitability(context.Background(), uuid.New(), "2026-05-01", "2026-05-31", FormatXLSX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const key = "profitability/2026-05-01_2026-05-31/profitability.xlsx"
	if export.ObjectKey != key {
		t.Fatalf("expected key %q, got %q", key, export.ObjectKey)
	}

	f, err := excelize.OpenReader(strings.NewReader(objects.uploaded[key]))
	if err != nil {
		t.Fatalf("uploaded body is not a workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	if sheets := f.GetSheetList(); strings.Join(sheets, ",") != "Summary,Labor,Pipeline" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	assertRow(t, summary, []string{"revenue", "deal_count", "1"})
	assertRow(t, summary, []string{"profit", "net", "8000"})

	pipeline, err := f.GetRows("Pipeline")
	if err != nil {
		t.Fatalf("read pipeline: %v", err)
	}
	assertRow(t, pipeline, []string{"negotiation", "1", "4000", "2400"})
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewService(fakeReports{}, &fakeObjects{uploaded: map[string]string{}}, "crm-exports", &memoryStore{records: map[uuid.UUID]Record{}}, nil, logger.Nop())

	_, err := svc.ExportProfitability(context.Background(), uuid.New(), "", "", "pdf")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func assertRow(t *testing.T, records [][]string, want []string) {
	t.Helper()
	for _, rec := range records {
		if strings.Join(rec, ",") == strings.Join(want, ",") {
			return
		}
	}
	t.Fatalf("expected row %v in %v", want, records)
}
