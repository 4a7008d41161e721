package sniper

import (
	"context"
	"fmt"
	"sync"

	"github.com/puntaluxe/growth-engine/internal/observability/metrics"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// Feed holds the operator's in-memory prospect list: streamed inserts in
// arrival order (newest first), followed by the initially loaded page in
// creation-time-descending order. The list is a read-through cache of the
// store; local status edits are committed only after the store write
// succeeded.
type Feed struct {
	store    ProspectStore
	metrics  *metrics.FeedMetrics
	logger   *logging.Logger
	pageSize int32

	mu          sync.RWMutex
	prospects   []Prospect
	seen        map[string]struct{}
	subscribers map[int]chan Prospect
	nextSub     int
	closed      bool
}

func NewFeed(store ProspectStore, logger *logging.Logger) *Feed {
	if logger == nil {
		logger = logging.Default()
	}
	return &Feed{
		store:       store,
		logger:      logger,
		pageSize:    50,
		seen:        make(map[string]struct{}),
		subscribers: make(map[int]chan Prospect),
	}
}

// WithMetrics enables feed counters.
func (f *Feed) WithMetrics(m *metrics.FeedMetrics) *Feed {
	f.metrics = m
	return f
}

// WithPageSize overrides the bounded-load size.
func (f *Feed) WithPageSize(n int32) *Feed {
	if n > 0 {
		f.pageSize = n
	}
	return f
}

// Bootstrap performs the bounded initial load. It is also called after a
// stream reconnect to resynchronize; rows already known by id are skipped,
// so an insert that raced the read never appears twice.
func (f *Feed) Bootstrap(ctx context.Context) error {
	page, err := f.store.ListRecent(ctx, f.pageSize)
	if err != nil {
		return fmt.Errorf("sniper: feed bootstrap: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range page {
		if _, dup := f.seen[p.ID]; dup {
			continue
		}
		f.seen[p.ID] = struct{}{}
		// Page rows are older than anything the stream delivered meanwhile.
		f.prospects = append(f.prospects, p)
	}
	return nil
}

// Apply merges one streamed insert event into the list, newest first.
// Returns false for duplicates.
func (f *Feed) Apply(p Prospect) bool {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false
	}
	if _, dup := f.seen[p.ID]; dup {
		f.mu.Unlock()
		f.metrics.ObserveEvent("duplicate")
		return false
	}
	f.seen[p.ID] = struct{}{}
	f.prospects = append([]Prospect{p}, f.prospects...)
	// Non-blocking fan-out under the lock keeps sends and channel closes
	// serialized. A slow consumer catches up from a snapshot.
	for _, ch := range f.subscribers {
		select {
		case ch <- p:
		default:
		}
	}
	f.mu.Unlock()

	f.metrics.ObserveEvent("applied")
	return true
}

// SetStatus commits a confirmed status change to the local list.
func (f *Feed) SetStatus(id string, status Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.prospects {
		if f.prospects[i].ID == id {
			f.prospects[i].Status = status
			return
		}
	}
}

// Snapshot returns a copy of the current list, newest first.
func (f *Feed) Snapshot() []Prospect {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Prospect, len(f.prospects))
	copy(out, f.prospects)
	return out
}

// Stats recomputes the derived counters from the current list.
func (f *Feed) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ComputeStats(f.prospects)
}

// Subscribe registers for streamed inserts. The returned cancel func must
// be called on consumer teardown; it is safe to call twice.
func (f *Feed) Subscribe() (<-chan Prospect, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Prospect, 16)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.subscribers[id]; ok {
				delete(f.subscribers, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close tears the feed down and releases every subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subscribers {
		delete(f.subscribers, id)
		close(ch)
	}
}
