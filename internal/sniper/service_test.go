package sniper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeProspectStore struct {
	statuses map[string]Status
}

func newFakeProspectStore(seed map[string]Status) *fakeProspectStore {
	return &fakeProspectStore{statuses: seed}
}

func (f *fakeProspectStore) ListRecent(ctx context.Context, limit int32) ([]Prospect, error) {
	return nil, nil
}

func (f *fakeProspectStore) TransitionStatus(ctx context.Context, id string, from, to Status) error {
	current, ok := f.statuses[id]
	if !ok {
		return ErrNotFound
	}
	if current != from {
		return ErrInvalidTransition
	}
	f.statuses[id] = to
	return nil
}

type fakeQueue struct {
	tasks map[string]struct {
		channel      string
		scheduledFor time.Time
	}
	err error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{tasks: make(map[string]struct {
		channel      string
		scheduledFor time.Time
	})}
}

func (f *fakeQueue) Enqueue(ctx context.Context, leadID, channel string, scheduledFor time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, exists := f.tasks[leadID]; exists {
		return false, nil
	}
	f.tasks[leadID] = struct {
		channel      string
		scheduledFor time.Time
	}{channel, scheduledFor}
	return true, nil
}

type fakeNotifier struct {
	notified []string
	err      error
}

func (f *fakeNotifier) ProspectQualified(ctx context.Context, leadID string) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, leadID)
	return nil
}

func TestApproveQualifiesAndEnqueuesOneTask(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"1": StatusNew})
	queue := newFakeQueue()
	svc := NewService(store, queue, nil)

	status, err := svc.Approve(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, StatusQualified, status)
	require.Equal(t, StatusQualified, store.statuses["1"])

	require.Len(t, queue.tasks, 1)
	task := queue.tasks["1"]
	require.Equal(t, "whatsapp", task.channel)
	require.False(t, task.scheduledFor.IsZero())
}

func TestApproveTwiceCreatesAtMostOneTask(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"1": StatusNew})
	queue := newFakeQueue()
	svc := NewService(store, queue, nil)

	_, err := svc.Approve(context.Background(), "1")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), "1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Len(t, queue.tasks, 1)
}

func TestApproveUnknownProspect(t *testing.T) {
	svc := NewService(newFakeProspectStore(map[string]Status{}), newFakeQueue(), nil)

	_, err := svc.Approve(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApproveCompensatesWhenEnqueueFails(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"1": StatusNew})
	queue := newFakeQueue()
	queue.err = errors.New("queue down")
	svc := NewService(store, queue, nil)

	_, err := svc.Approve(context.Background(), "1")
	require.ErrorIs(t, err, ErrOutreachFailed)
	require.Equal(t, StatusNew, store.statuses["1"], "status write must be rolled back")
	require.Empty(t, queue.tasks)
}

func TestRejectDisqualifiesWithoutTask(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"2": StatusNew})
	queue := newFakeQueue()
	svc := NewService(store, queue, nil)

	status, err := svc.Reject(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, StatusDisqualified, status)
	require.Equal(t, StatusDisqualified, store.statuses["2"])
	require.Empty(t, queue.tasks)
}

func TestFlagForVideoAuditContactsWithoutTask(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"3": StatusNew})
	queue := newFakeQueue()
	svc := NewService(store, queue, nil)

	status, err := svc.FlagForVideoAudit(context.Background(), "3")
	require.NoError(t, err)
	require.Equal(t, StatusContacted, status)
	require.Empty(t, queue.tasks)
}

func TestActionsOutOfTerminalStatusAreRefused(t *testing.T) {
	tests := []struct {
		name    string
		current Status
	}{
		{"qualified", StatusQualified},
		{"contacted", StatusContacted},
		{"disqualified", StatusDisqualified},
		{"converted", StatusConverted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeProspectStore(map[string]Status{"1": tt.current})
			svc := NewService(store, newFakeQueue(), nil)

			_, err := svc.Reject(context.Background(), "1")
			require.ErrorIs(t, err, ErrInvalidTransition)
			require.Equal(t, tt.current, store.statuses["1"])
		})
	}
}

func TestApproveNotifierFailureDoesNotFailAction(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"1": StatusNew})
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	svc := NewService(store, newFakeQueue(), nil).WithNotifier(notifier)

	status, err := svc.Approve(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, StatusQualified, status)
}

func TestApproveNotifiesOnSuccess(t *testing.T) {
	store := newFakeProspectStore(map[string]Status{"1": StatusNew})
	notifier := &fakeNotifier{}
	svc := NewService(store, newFakeQueue(), nil).WithNotifier(notifier)

	_, err := svc.Approve(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, notifier.notified)
}
