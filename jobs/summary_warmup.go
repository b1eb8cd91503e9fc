package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/harborlight/harborlight-ops/internal/invoices"
)

// SummaryWarmupJob pre-populates the invoice summary cache so the first
// dashboard load of the day does not pay the aggregation cost.
type SummaryWarmupJob struct {
	Service *invoices.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(svc *invoices.Service, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Service: svc,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes summary warmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("job_id", payload.JobID))
	logger.Info("starting invoice summary warmup")

	started := j.now()
	jobCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	counts, err := j.Service.Summary(jobCtx)
	if err != nil {
		logger.Error("warm invoice summary", slog.Any("error", err))
		return err
	}

	logger.Info("completed invoice summary warmup",
		slog.Int("total", counts.Total),
		slog.Int("overdue", counts.Overdue),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInvoiceSummaryWarmup))
	}
	return slog.Default().With(slog.String("job", TaskInvoiceSummaryWarmup))
}

func (j *SummaryWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
