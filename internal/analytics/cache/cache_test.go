package cache

import (
	"context"
	"testing"
	"time"

	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type snapshot struct {
	Total int `json:"total"`
}

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWithClient(client, time.Minute), mr
}

func TestRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got snapshot
	hit, err := c.Get(ctx, "dashboard:all", &got)
	if err != nil || hit {
		t.Fatalf("expected miss on empty cache, got hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "dashboard:all", snapshot{Total: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hit, err = c.Get(ctx, "dashboard:all", &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got.Total != 7 {
		t.Fatalf("expected total 7, got %d", got.Total)
	}
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "profitability:a:b", snapshot{Total: 1})

	mr.FastForward(2 * time.Minute)

	var got snapshot
	if hit, _ := c.Get(ctx, "profitability:a:b", &got); hit {
		t.Fatalf("expected entry to expire")
	}
}

func TestInvalidateOnReportInputEvent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	bus := events.NewInMemoryBus(logger.Nop())
	Subscribe(bus, c, logger.Nop())

	_ = c.Set(ctx, "dashboard:all", snapshot{Total: 3})
	if err := bus.PublishSync(ctx, events.DealChanged{BaseEvent: events.NewBaseEvent(), DealID: uuid.New(), Action: events.ActionUpdated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got snapshot
	if hit, _ := c.Get(ctx, "dashboard:all", &got); hit {
		t.Fatalf("expected snapshot to be invalidated")
	}
}
