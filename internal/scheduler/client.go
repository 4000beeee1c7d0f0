package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	recomputeMaxRetry  = 8
	recomputeUniqueTTL = 5 * time.Minute
)

type Client struct {
	client *asynq.Client
	queue  string
}

// RecomputeEnqueuer schedules retries of derived-state recomputes that failed
// inline. A nil *Client satisfies it and enqueues nothing.
type RecomputeEnqueuer interface {
	EnqueueLeadScoreRecompute(ctx context.Context, leadID uuid.UUID) error
	EnqueueDealHoursRecompute(ctx context.Context, dealID uuid.UUID) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueLeadScoreRecompute(ctx context.Context, leadID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadScoreRecomputeTask(LeadScoreRecomputePayload{LeadID: leadID.String()})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, metrics.KindLeadScore)
}

func (c *Client) EnqueueDealHoursRecompute(ctx context.Context, dealID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewDealHoursRecomputeTask(DealHoursRecomputePayload{DealID: dealID.String()})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, metrics.KindDealHours)
}

// enqueue collapses repeated retries for the same record into one pending task.
func (c *Client) enqueue(ctx context.Context, task *asynq.Task, kind string) error {
	_, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(recomputeMaxRetry),
		asynq.Unique(recomputeUniqueTTL),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return err
	}
	metrics.RecomputeRetriesEnqueued.WithLabelValues(kind).Inc()
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
