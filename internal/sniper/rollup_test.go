package sniper

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRollupRecordsAndReadsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rollup := NewRollup(client, time.Hour)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rollup.RecordDecision(ctx, "approved"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := rollup.RecordDecision(ctx, "rejected"); err != nil {
		t.Fatalf("record: %v", err)
	}

	counts, err := rollup.Day(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if counts["approved"] != 3 || counts["rejected"] != 1 || counts["video_audit"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestRollupKeysExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rollup := NewRollup(client, time.Minute)

	if err := rollup.RecordDecision(context.Background(), "approved"); err != nil {
		t.Fatalf("record: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	counts, err := rollup.Day(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if counts["approved"] != 0 {
		t.Fatalf("expected expired counter, got %v", counts)
	}
}

func TestRollupNilSafe(t *testing.T) {
	var rollup *Rollup
	if err := rollup.RecordDecision(context.Background(), "approved"); err != nil {
		t.Fatalf("nil rollup must be a no-op, got %v", err)
	}
}
