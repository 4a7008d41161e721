package sniper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeFeedStore struct {
	page      []Prospect
	lastLimit int32
	err       error
}

func (f *fakeFeedStore) ListRecent(ctx context.Context, limit int32) ([]Prospect, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if int32(len(f.page)) > limit {
		return f.page[:limit], nil
	}
	return f.page, nil
}

func (f *fakeFeedStore) TransitionStatus(ctx context.Context, id string, from, to Status) error {
	return nil
}

func prospect(id string, status Status, createdAt time.Time) Prospect {
	return Prospect{
		ID:        id,
		Address:   DefaultAddress,
		OwnerName: DefaultOwnerName,
		Source:    SourceGoogleMaps,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestBootstrapLoadsBoundedPage(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeFeedStore{page: []Prospect{
		prospect("2", StatusNew, now),
		prospect("1", StatusNew, now.Add(-time.Hour)),
	}}
	feed := NewFeed(store, nil).WithPageSize(50)

	require.NoError(t, feed.Bootstrap(context.Background()))
	require.Equal(t, int32(50), store.lastLimit)

	list := feed.Snapshot()
	require.Len(t, list, 2)
	require.Equal(t, "2", list[0].ID)
	require.Equal(t, "1", list[1].ID)
}

func TestBootstrapErrorLeavesListEmpty(t *testing.T) {
	store := &fakeFeedStore{err: errors.New("store down")}
	feed := NewFeed(store, nil)

	err := feed.Bootstrap(context.Background())
	require.Error(t, err)
	require.Empty(t, feed.Snapshot())
}

func TestStreamedInsertPrependsNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeFeedStore{page: []Prospect{
		prospect("1", StatusNew, now),
		prospect("2", StatusNew, now.Add(-time.Hour)),
	}}
	feed := NewFeed(store, nil)
	require.NoError(t, feed.Bootstrap(context.Background()))

	require.True(t, feed.Apply(prospect("3", StatusNew, now.Add(time.Minute))))

	list := feed.Snapshot()
	ids := []string{list[0].ID, list[1].ID, list[2].ID}
	require.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestApplyDeduplicatesByID(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	now := time.Now().UTC()

	require.True(t, feed.Apply(prospect("1", StatusNew, now)))
	require.False(t, feed.Apply(prospect("1", StatusNew, now)))
	require.Len(t, feed.Snapshot(), 1)
}

func TestBootstrapAfterReconnectSkipsKnownIDs(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeFeedStore{page: []Prospect{prospect("1", StatusNew, now)}}
	feed := NewFeed(store, nil)

	// Stream delivered the row before the resync page arrived.
	require.True(t, feed.Apply(prospect("1", StatusNew, now)))
	require.NoError(t, feed.Bootstrap(context.Background()))
	require.Len(t, feed.Snapshot(), 1)
}

func TestStatsIdentityHoldsAfterEveryMutation(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	now := time.Now().UTC()

	check := func() {
		s := feed.Stats()
		require.Equal(t, s.Total, s.New+s.Qualified+s.Contacted+s.Disqualified+s.Converted)
	}

	feed.Apply(prospect("1", StatusNew, now))
	check()
	feed.Apply(prospect("2", StatusContacted, now))
	check()
	feed.Apply(prospect("3", StatusConverted, now))
	check()
	feed.SetStatus("1", StatusQualified)
	check()

	s := feed.Stats()
	require.Equal(t, 3, s.Total)
	require.Equal(t, 1, s.Qualified)
	require.Equal(t, 1, s.Contacted)
	require.Equal(t, 0, s.New)
}

func TestSetStatusCommitsConfirmedChange(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	feed.Apply(prospect("1", StatusNew, time.Now().UTC()))

	feed.SetStatus("1", StatusQualified)
	require.Equal(t, StatusQualified, feed.Snapshot()[0].Status)
}

func TestSubscribeDeliversStreamedInserts(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	ch, cancel := feed.Subscribe()
	defer cancel()

	feed.Apply(prospect("1", StatusNew, time.Now().UTC()))

	select {
	case p := <-ch:
		require.Equal(t, "1", p.ID)
	case <-time.After(time.Second):
		t.Fatal("expected streamed insert on subscription")
	}
}

func TestSubscriptionCancelReleasesChannel(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	ch, cancel := feed.Subscribe()
	cancel()
	cancel() // safe twice

	_, open := <-ch
	require.False(t, open, "cancel must close the subscription channel")

	// Applying after cancel must not deliver anywhere.
	feed.Apply(prospect("1", StatusNew, time.Now().UTC()))
}

func TestCloseReleasesAllSubscriptions(t *testing.T) {
	feed := NewFeed(&fakeFeedStore{}, nil)
	ch1, _ := feed.Subscribe()
	ch2, _ := feed.Subscribe()

	feed.Close()

	if _, open := <-ch1; open {
		t.Fatal("expected ch1 closed")
	}
	if _, open := <-ch2; open {
		t.Fatal("expected ch2 closed")
	}
	require.False(t, feed.Apply(prospect("1", StatusNew, time.Now().UTC())))
}
