package outreach

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies the medium the automation engine uses for a task.
const ChannelWhatsApp = "whatsapp"

// Queue row statuses. Rows are created pending, handed to the automation
// engine exactly once, and owned by it from then on.
const (
	TaskPending    = "pending"
	TaskDispatched = "dispatched"
	TaskFailed     = "failed"
)

// Task is a unit of work for the external outreach workflow.
type Task struct {
	ID           uuid.UUID `json:"id"`
	LeadID       string    `json:"lead_id"`
	Channel      string    `json:"channel"`
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduled_for"`
	LastError    *string   `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Payload is the wire shape published to the automation queue.
type Payload struct {
	TaskID       string    `json:"task_id"`
	LeadID       string    `json:"lead_id"`
	Channel      string    `json:"channel"`
	ScheduledFor time.Time `json:"scheduled_for"`
}
