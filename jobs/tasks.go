package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoiceSummaryWarmup pre-computes the dashboard status counts.
	TaskInvoiceSummaryWarmup = "invoices:summary_warmup"
)

// SummaryWarmupPayload identifies a warmup run.
type SummaryWarmupPayload struct {
	JobID       string    `json:"job_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewSummaryWarmupTask constructs an Asynq task for the summary warmup.
func NewSummaryWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(SummaryWarmupPayload{
		JobID:       uuid.NewString(),
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceSummaryWarmup, data), nil
}
