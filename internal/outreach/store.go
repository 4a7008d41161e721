package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the slice of pgx the store needs; satisfied by *pgxpool.Pool and
// by pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists outreach queue rows and the outreach log.
type Store struct {
	db DB
}

// NewStore initializes a store backed by pgxpool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("outreach: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting a mock database for testing.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// Enqueue inserts one pending task for the lead. The queue carries a unique
// index on lead_id, so a second approval of the same prospect is a no-op;
// the bool reports whether a row was actually created.
func (s *Store) Enqueue(ctx context.Context, leadID, channel string, scheduledFor time.Time) (bool, error) {
	query := `
		INSERT INTO outreach_queue (id, lead_id, channel, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lead_id) DO NOTHING
	`
	ct, err := s.db.Exec(ctx, query, uuid.New(), leadID, channel, TaskPending, scheduledFor)
	if err != nil {
		return false, fmt.Errorf("outreach: enqueue task: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// FetchPending returns up to limit due tasks, oldest first.
func (s *Store) FetchPending(ctx context.Context, limit int32) ([]Task, error) {
	query := `
		SELECT id, lead_id, channel, status, scheduled_for, last_error, created_at
		FROM outreach_queue
		WHERE status = $1 AND scheduled_for <= now()
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, TaskPending, limit)
	if err != nil {
		return nil, fmt.Errorf("outreach: fetch pending: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.LeadID, &t.Channel, &t.Status, &t.ScheduledFor, &t.LastError, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("outreach: scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkDispatched flips a pending task to dispatched. Returns false when the
// row was already taken, so a racing dispatcher does not double-publish the
// log entry.
func (s *Store) MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE outreach_queue
		SET status = $2, last_error = NULL
		WHERE id = $1 AND status = $3
	`
	ct, err := s.db.Exec(ctx, query, id, TaskDispatched, TaskPending)
	if err != nil {
		return false, fmt.Errorf("outreach: mark dispatched: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// RecordError keeps the task pending and notes the publish failure; the
// dispatcher retries it on the next tick.
func (s *Store) RecordError(ctx context.Context, id uuid.UUID, msg string) error {
	query := `UPDATE outreach_queue SET last_error = $2 WHERE id = $1`
	if _, err := s.db.Exec(ctx, query, id, msg); err != nil {
		return fmt.Errorf("outreach: record error: %w", err)
	}
	return nil
}

// AppendLog records one hand-off in the outreach log.
func (s *Store) AppendLog(ctx context.Context, leadID string, queueID uuid.UUID, channel, direction, content string) error {
	query := `
		INSERT INTO outreach_log (id, lead_id, queue_id, channel, direction, content)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Exec(ctx, query, uuid.New(), leadID, queueID, channel, direction, content); err != nil {
		return fmt.Errorf("outreach: append log: %w", err)
	}
	return nil
}
