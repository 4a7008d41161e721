package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestEnqueueCreatesRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	scheduled := time.Now().UTC()
	mock.ExpectExec("INSERT INTO outreach_queue").
		WithArgs(pgxmock.AnyArg(), "lead-1", ChannelWhatsApp, TaskPending, scheduled).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStoreWithDB(mock)
	created, err := store.Enqueue(context.Background(), "lead-1", ChannelWhatsApp, scheduled)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !created {
		t.Fatal("expected row to be created")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEnqueueDeduplicatesOnLeadID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	scheduled := time.Now().UTC()
	// Conflict on the lead_id unique index reports zero rows affected.
	mock.ExpectExec("INSERT INTO outreach_queue").
		WithArgs(pgxmock.AnyArg(), "lead-1", ChannelWhatsApp, TaskPending, scheduled).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	store := NewStoreWithDB(mock)
	created, err := store.Enqueue(context.Background(), "lead-1", ChannelWhatsApp, scheduled)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if created {
		t.Fatal("expected duplicate enqueue to be a no-op")
	}
}

func TestFetchPendingScansTasks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "lead_id", "channel", "status", "scheduled_for", "last_error", "created_at"}).
		AddRow(id, "lead-1", ChannelWhatsApp, TaskPending, now, nil, now)
	mock.ExpectQuery("SELECT id, lead_id, channel, status, scheduled_for, last_error, created_at").
		WithArgs(TaskPending, int32(10)).
		WillReturnRows(rows)

	store := NewStoreWithDB(mock)
	tasks, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != id || tasks[0].LeadID != "lead-1" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestMarkDispatchedReportsRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE outreach_queue").
		WithArgs(id, TaskDispatched, TaskPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStoreWithDB(mock)
	ok, err := store.MarkDispatched(context.Background(), id)
	if err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}
	if ok {
		t.Fatal("expected already-taken row to report false")
	}
}
