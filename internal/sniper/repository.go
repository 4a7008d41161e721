package sniper

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storeDB is the slice of pgx the repository needs; satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type storeDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProspectStore is the only way this service touches prospect rows. It
// carries exactly the operation shapes of the store contract: one bounded
// query and one guarded point-write.
type ProspectStore interface {
	// ListRecent returns at most limit prospects, newest creation first.
	ListRecent(ctx context.Context, limit int32) ([]Prospect, error)
	// TransitionStatus performs a compare-and-set status write. It returns
	// ErrNotFound for unknown ids and ErrInvalidTransition when the row is
	// not in the expected from status.
	TransitionStatus(ctx context.Context, id string, from, to Status) error
}

// PostgresStore implements ProspectStore on the prospect_properties table.
type PostgresStore struct {
	db storeDB
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("sniper: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting a mock database for testing.
func NewPostgresStoreWithDB(db storeDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const prospectColumns = `id, address, owner_name, listed_price, market_price_estimate,
	       source, status, quality_score, days_on_market, last_contact, created_at, updated_at`

func (s *PostgresStore) ListRecent(ctx context.Context, limit int32) ([]Prospect, error) {
	query := `
		SELECT ` + prospectColumns + `
		FROM prospect_properties
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sniper: list recent: %w", err)
	}
	defer rows.Close()

	var out []Prospect
	for rows.Next() {
		var r ProspectRecord
		if err := rows.Scan(&r.ID, &r.Address, &r.OwnerName, &r.ListedPrice, &r.MarketEstimate,
			&r.Source, &r.Status, &r.QualityScore, &r.DaysOnMarket, &r.LastContact,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sniper: scan prospect: %w", err)
		}
		out = append(out, r.Normalize())
	}
	if out == nil {
		out = []Prospect{}
	}
	return out, rows.Err()
}

func (s *PostgresStore) TransitionStatus(ctx context.Context, id string, from, to Status) error {
	query := `
		UPDATE prospect_properties
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	ct, err := s.db.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("sniper: update status: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// CAS miss: distinguish a missing row from a row that moved on.
	var current string
	err = s.db.QueryRow(ctx, `SELECT status FROM prospect_properties WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sniper: read status after miss: %w", err)
	}
	return fmt.Errorf("%w: %s is %s, expected %s", ErrInvalidTransition, id, current, from)
}
