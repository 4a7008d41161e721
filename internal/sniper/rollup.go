package sniper

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rollup decisions tracked per day.
var rollupDecisions = []string{"approved", "video_audit", "rejected"}

// Rollup keeps daily triage-decision counters in Redis for the dashboard
// stat cards. Strictly best-effort: the triage flow never waits on it.
type Rollup struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRollup(client *redis.Client, ttl time.Duration) *Rollup {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}
	return &Rollup{
		client: client,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func rollupKey(day time.Time, decision string) string {
	return fmt.Sprintf("sniper:rollup:%s:%s", day.Format("2006-01-02"), decision)
}

// RecordDecision increments today's counter for the decision.
func (r *Rollup) RecordDecision(ctx context.Context, decision string) error {
	if r == nil {
		return nil
	}
	key := rollupKey(r.now(), decision)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sniper: rollup incr: %w", err)
	}
	return nil
}

// Day returns the counters recorded for the given day.
func (r *Rollup) Day(ctx context.Context, day time.Time) (map[string]int64, error) {
	if r == nil {
		return map[string]int64{}, nil
	}
	keys := make([]string, len(rollupDecisions))
	for i, d := range rollupDecisions {
		keys[i] = rollupKey(day, d)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("sniper: rollup read: %w", err)
	}

	out := make(map[string]int64, len(rollupDecisions))
	for i, d := range rollupDecisions {
		var n int64
		if s, ok := values[i].(string); ok {
			fmt.Sscanf(s, "%d", &n)
		}
		out[d] = n
	}
	return out, nil
}
