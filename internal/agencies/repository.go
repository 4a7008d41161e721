package agencies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAgencyNotFound = errors.New("agencies: agency not found")
	ErrSlugTaken      = errors.New("agencies: slug already taken")
)

type repoDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db repoDB
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("agencies: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db repoDB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *Agency) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO agencies (id, name, slug, contact_email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		a.ID, a.Name, a.Slug, a.ContactEmail, a.Phone).Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("agencies: create: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Agency, error) {
	var a Agency
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, contact_email, phone, created_at
		FROM agencies WHERE id = $1`, id).Scan(
		&a.ID, &a.Name, &a.Slug, &a.ContactEmail, &a.Phone, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAgencyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("agencies: get: %w", err)
	}
	return &a, nil
}

func (r *Repository) AddMember(ctx context.Context, m *Member) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO agency_users (id, agency_id, email, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		m.ID, m.AgencyID, m.Email, m.Role).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("agencies: add member: %w", err)
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, agencyID string) ([]Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, agency_id, email, role, created_at
		FROM agency_users WHERE agency_id = $1
		ORDER BY created_at ASC`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("agencies: list members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.AgencyID, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("agencies: scan member: %w", err)
		}
		out = append(out, m)
	}
	if out == nil {
		out = []Member{}
	}
	return out, rows.Err()
}
