package agencies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestCreateReturnsTimestamp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO agencies").
		WithArgs("ag-1", "Costa Este Propiedades", "costa-este-propiedades", "info@costaeste.uy", "+598 99 123 456").
		WillReturnRows(mock.NewRows([]string{"created_at"}).AddRow(created))

	repo := NewRepositoryWithDB(mock)
	agency := &Agency{ID: "ag-1", Name: "Costa Este Propiedades", Slug: "costa-este-propiedades", ContactEmail: "info@costaeste.uy", Phone: "+598 99 123 456"}
	if err := repo.Create(context.Background(), agency); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !agency.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at backfilled, got %v", agency.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestGetMissingAgency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM agencies").
		WithArgs("missing").
		WillReturnRows(mock.NewRows([]string{"id", "name", "slug", "contact_email", "phone", "created_at"}))

	repo := NewRepositoryWithDB(mock)
	_, err = repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrAgencyNotFound) {
		t.Fatalf("expected ErrAgencyNotFound, got %v", err)
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO agencies").
		WithArgs("ag-2", "Costa Este Propiedades", "costa-este-propiedades", "otro@costaeste.uy", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "agencies_slug_key"})

	repo := NewRepositoryWithDB(mock)
	agency := &Agency{ID: "ag-2", Name: "Costa Este Propiedades", Slug: "costa-este-propiedades", ContactEmail: "otro@costaeste.uy"}
	if err := repo.Create(context.Background(), agency); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Costa Este Propiedades": "costa-este-propiedades",
		"  José Ignacio Realty ": "jos-ignacio-realty",
		"---":                    "",
		"Punta 360":              "punta-360",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListMembersEmptyIsNotNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM agency_users").
		WithArgs("ag-1").
		WillReturnRows(mock.NewRows([]string{"id", "agency_id", "email", "role", "created_at"}))

	repo := NewRepositoryWithDB(mock)
	members, err := repo.ListMembers(context.Background(), "ag-1")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if members == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

func TestAddMemberScansTimestamp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO agency_users").
		WithArgs("u-1", "ag-1", "broker@costaeste.uy", RoleBroker).
		WillReturnRows(mock.NewRows([]string{"created_at"}).AddRow(created))

	repo := NewRepositoryWithDB(mock)
	m := &Member{ID: "u-1", AgencyID: "ag-1", Email: "broker@costaeste.uy", Role: RoleBroker}
	if err := repo.AddMember(context.Background(), m); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if !m.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at backfilled, got %v", m.CreatedAt)
	}
}
