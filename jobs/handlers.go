package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/freshmart/storefront/internal/jobs"
)

// MailJob processes e-mail tasks.
type MailJob struct {
	sender  Sender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewMailJob constructs a MailJob. metrics may be nil.
func NewMailJob(sender Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailJob{sender: sender, logger: logger, metrics: metrics}
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (j *MailJob) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskTypeSendEmail)
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if payload.To == "" {
		return tracker.End(fmt.Errorf("missing recipient: %w", asynq.SkipRetry))
	}
	if err := j.sender.Send(ctx, payload); err != nil {
		return tracker.End(err)
	}
	j.metrics.MailSent("generic")
	return tracker.End(nil)
}

// HandleOrderConfirmation processes TaskOrderConfirmation tasks.
func (j *MailJob) HandleOrderConfirmation(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskOrderConfirmation)
	var payload OrderConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if payload.Email == "" {
		j.logger.Warn("order confirmation without email", slog.Int64("order_id", payload.OrderID))
		return tracker.End(nil)
	}
	if err := j.sender.Send(ctx, RenderOrderConfirmation(payload)); err != nil {
		j.logger.Error("send order confirmation", slog.Int64("order_id", payload.OrderID), slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.MailSent("order_confirmation")
	j.logger.Info("order confirmation sent", slog.Int64("order_id", payload.OrderID))
	return tracker.End(nil)
}

// Pruner deletes idempotency keys older than a retention.
type Pruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// CleanupJob prunes idempotency keys.
type CleanupJob struct {
	store   Pruner
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewCleanupJob constructs a CleanupJob.
func NewCleanupJob(store Pruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *CleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *CleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskIdempotencyCleanup)
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if payload.Retention <= 0 {
		payload.Retention = 7 * 24 * time.Hour
	}
	return tracker.End(j.store.Cleanup(ctx, payload.Retention))
}
