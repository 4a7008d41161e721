package outreach

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// dispatcherStore is the store surface the dispatcher needs.
type dispatcherStore interface {
	FetchPending(ctx context.Context, limit int32) ([]Task, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error)
	RecordError(ctx context.Context, id uuid.UUID, msg string) error
	AppendLog(ctx context.Context, leadID string, queueID uuid.UUID, channel, direction, content string) error
}

// Dispatcher polls the outreach queue and hands due tasks to the automation
// engine. Publish failures keep the row pending and are retried next tick.
type Dispatcher struct {
	store     dispatcherStore
	publisher Publisher
	logger    *logging.Logger
	batchSize int32
	interval  time.Duration
}

func NewDispatcher(store dispatcherStore, publisher Publisher, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		logger:    logger,
		batchSize: 25,
		interval:  5 * time.Second,
	}
}

func (d *Dispatcher) WithBatchSize(size int32) *Dispatcher {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// Run blocks until ctx is done, draining the queue on each tick.
func (d *Dispatcher) Run(ctx context.Context) {
	if d.store == nil || d.publisher == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	tasks, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outreach fetch failed", "error", err)
		return
	}
	for _, task := range tasks {
		body, err := json.Marshal(Payload{
			TaskID:       task.ID.String(),
			LeadID:       task.LeadID,
			Channel:      task.Channel,
			ScheduledFor: task.ScheduledFor,
		})
		if err != nil {
			d.logger.Error("outreach payload marshal failed", "error", err, "task_id", task.ID)
			continue
		}
		if err := d.publisher.Send(ctx, string(body)); err != nil {
			d.logger.Error("outreach publish failed", "error", err, "task_id", task.ID, "lead_id", task.LeadID)
			if err := d.store.RecordError(ctx, task.ID, err.Error()); err != nil {
				d.logger.Error("outreach record error failed", "error", err, "task_id", task.ID)
			}
			continue
		}
		ok, err := d.store.MarkDispatched(ctx, task.ID)
		if err != nil {
			d.logger.Error("outreach mark dispatched failed", "error", err, "task_id", task.ID)
			continue
		}
		if !ok {
			// Another dispatcher won the row after we published; skip the log entry.
			continue
		}
		if err := d.store.AppendLog(ctx, task.LeadID, task.ID, task.Channel, "outbound", string(body)); err != nil {
			d.logger.Error("outreach log append failed", "error", err, "task_id", task.ID)
		}
		d.logger.Debug("outreach task dispatched", "task_id", task.ID, "lead_id", task.LeadID)
	}
}
