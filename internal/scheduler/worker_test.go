package scheduler

import (
	"context"
	"errors"
	"testing"

	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type recordingRecomputer struct {
	leadIDs []uuid.UUID
	dealIDs []uuid.UUID
	err     error
}

func (r *recordingRecomputer) RecomputeScore(_ context.Context, leadID uuid.UUID) error {
	r.leadIDs = append(r.leadIDs, leadID)
	return r.err
}

func (r *recordingRecomputer) RecomputeActualHours(_ context.Context, dealID uuid.UUID) error {
	r.dealIDs = append(r.dealIDs, dealID)
	return r.err
}

func TestHandleLeadScoreRecomputeCallsRecomputer(t *testing.T) {
	rec := &recordingRecomputer{}
	w := &Worker{leads: rec, deals: rec, log: logger.Nop()}
	leadID := uuid.New()

	task, err := NewLeadScoreRecomputeTask(LeadScoreRecomputePayload{LeadID: leadID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.handleLeadScoreRecompute(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.leadIDs) != 1 || rec.leadIDs[0] != leadID {
		t.Fatalf("expected recompute for %s, got %v", leadID, rec.leadIDs)
	}
}

func TestHandleDealHoursRecomputeReturnsErrorForRetry(t *testing.T) {
	rec := &recordingRecomputer{err: errors.New("db down")}
	w := &Worker{leads: rec, deals: rec, log: logger.Nop()}

	task, err := NewDealHoursRecomputeTask(DealHoursRecomputePayload{DealID: uuid.NewString()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = w.handleDealHoursRecompute(context.Background(), task)
	if err == nil {
		t.Fatalf("expected error so asynq retries")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("store failures must stay retryable")
	}
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	rec := &recordingRecomputer{}
	w := &Worker{leads: rec, deals: rec, log: logger.Nop()}

	err := w.handleLeadScoreRecompute(context.Background(), asynq.NewTask(TaskLeadScoreRecompute, []byte(`{"leadId":"nope"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for invalid id, got %v", err)
	}
	if len(rec.leadIDs) != 0 {
		t.Fatalf("expected no recompute for invalid payload")
	}
}

func TestNilClientEnqueuesNothing(t *testing.T) {
	var c *Client
	if err := c.EnqueueLeadScoreRecompute(context.Background(), uuid.New()); err != nil {
		t.Fatalf("expected nil client to be a no-op, got %v", err)
	}
	if err := c.EnqueueDealHoursRecompute(context.Background(), uuid.New()); err != nil {
		t.Fatalf("expected nil client to be a no-op, got %v", err)
	}
}
