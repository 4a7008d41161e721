package sniper

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/puntaluxe/growth-engine/internal/observability/metrics"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// prospectNotification is the row_to_json payload emitted by the insert
// trigger on prospect_properties.
type prospectNotification struct {
	ID             string     `json:"id"`
	Address        *string    `json:"address"`
	OwnerName      *string    `json:"owner_name"`
	ListedPrice    *float64   `json:"listed_price"`
	MarketEstimate *float64   `json:"market_price_estimate"`
	Source         *string    `json:"source"`
	Status         *string    `json:"status"`
	QualityScore   *int       `json:"quality_score"`
	DaysOnMarket   *int       `json:"days_on_market"`
	LastContact    *time.Time `json:"last_contact"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (n prospectNotification) record() ProspectRecord {
	return ProspectRecord{
		ID:             n.ID,
		Address:        n.Address,
		OwnerName:      n.OwnerName,
		ListedPrice:    n.ListedPrice,
		MarketEstimate: n.MarketEstimate,
		Source:         n.Source,
		Status:         n.Status,
		QualityScore:   n.QualityScore,
		DaysOnMarket:   n.DaysOnMarket,
		LastContact:    n.LastContact,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

// Listener is the change-feed subscription: it LISTENs on the prospect
// insert channel and merges every notification into the feed. Disconnects
// reconnect with exponential backoff, and each (re)connect re-runs the
// bounded load so nothing delivered during the gap is lost; the feed's
// id-based de-duplication absorbs the resulting duplicate risk.
type Listener struct {
	pool     *pgxpool.Pool
	feed     *Feed
	channel  string
	metrics  *metrics.FeedMetrics
	logger   *logging.Logger
	baseWait time.Duration
	maxWait  time.Duration
}

func NewListener(pool *pgxpool.Pool, feed *Feed, channel string, logger *logging.Logger) *Listener {
	if logger == nil {
		logger = logging.Default()
	}
	return &Listener{
		pool:     pool,
		feed:     feed,
		channel:  channel,
		logger:   logger,
		baseWait: 1 * time.Second,
		maxWait:  30 * time.Second,
	}
}

// WithMetrics enables reconnect counters.
func (l *Listener) WithMetrics(m *metrics.FeedMetrics) *Listener {
	l.metrics = m
	return l
}

// WithBackoff overrides the reconnect backoff bounds.
func (l *Listener) WithBackoff(base, max time.Duration) *Listener {
	if base > 0 {
		l.baseWait = base
	}
	if max >= l.baseWait {
		l.maxWait = max
	}
	return l
}

// Run blocks until ctx is done, holding one dedicated connection for the
// subscription's lifetime.
func (l *Listener) Run(ctx context.Context) {
	wait := l.baseWait
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Warn("prospect feed disconnected", "error", err, "retry_in", wait)
			l.metrics.ObserveReconnect()
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			if wait *= 2; wait > l.maxWait {
				wait = l.maxWait
			}
			continue
		}
		wait = l.baseWait
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}

	// Resynchronize: anything inserted before the LISTEN took effect comes
	// in through the bounded page instead.
	if err := l.feed.Bootstrap(ctx); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.handle(notification.Payload)
	}
}

func (l *Listener) handle(payload string) {
	var n prospectNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		l.logger.Error("prospect notification decode failed", "error", err)
		return
	}
	if n.ID == "" {
		l.logger.Warn("prospect notification without id dropped")
		return
	}
	l.feed.Apply(n.record().Normalize())
}
