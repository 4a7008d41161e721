package listings

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const propertyColumns = `id, agency_id, title, description, neighborhood, property_type, price_usd,
	       bedrooms, bathrooms, area_m2, features, lifestyle_tags,
	       hero_image_url, published, featured, views, lead_id, created_at, updated_at`

func scanProperty(row interface{ Scan(...any) error }) (Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.AgencyID, &p.Title, &p.Description, &p.Neighborhood, &p.PropertyType,
		&p.PriceUSD, &p.Bedrooms, &p.Bathrooms, &p.AreaM2,
		pq.Array(&p.Features), pq.Array(&p.LifestyleTags),
		&p.HeroImageURL, &p.Published, &p.Featured, &p.Views, &p.LeadID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Property{}, err
	}
	normalizeArrays(&p)
	return p, nil
}

func (r *Repository) List(ctx context.Context, publishedOnly bool) ([]Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties`
	if publishedOnly {
		query += ` WHERE published = true`
	}
	query += ` ORDER BY featured DESC, updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

func (r *Repository) ListByAgency(ctx context.Context, agencyID string) ([]Property, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+propertyColumns+`
		FROM properties WHERE agency_id = $1
		ORDER BY updated_at DESC`, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]Property, error) {
	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if out == nil {
		out = []Property{}
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Property, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Upsert(ctx context.Context, p *Property) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO properties (id, agency_id, title, description, neighborhood, property_type, price_usd,
		    bedrooms, bathrooms, area_m2, features, lifestyle_tags,
		    hero_image_url, published, featured, lead_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$17)
		ON CONFLICT (id) DO UPDATE SET
		    agency_id=EXCLUDED.agency_id, title=EXCLUDED.title, description=EXCLUDED.description,
		    neighborhood=EXCLUDED.neighborhood, property_type=EXCLUDED.property_type,
		    price_usd=EXCLUDED.price_usd, bedrooms=EXCLUDED.bedrooms,
		    bathrooms=EXCLUDED.bathrooms, area_m2=EXCLUDED.area_m2,
		    features=EXCLUDED.features, lifestyle_tags=EXCLUDED.lifestyle_tags,
		    hero_image_url=EXCLUDED.hero_image_url, published=EXCLUDED.published,
		    featured=EXCLUDED.featured, lead_id=EXCLUDED.lead_id, updated_at=$17`,
		p.ID, p.AgencyID, p.Title, p.Description, p.Neighborhood, p.PropertyType, p.PriceUSD,
		p.Bedrooms, p.Bathrooms, p.AreaM2, pq.Array(p.Features), pq.Array(p.LifestyleTags),
		p.HeroImageURL, p.Published, p.Featured, p.LeadID, now)
	return err
}

// IncrementViews bumps the view counter; detail-page reads call it
// best-effort.
func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE properties SET views = views + 1 WHERE id = $1`, id)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	return err
}

func normalizeArrays(p *Property) {
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.LifestyleTags == nil {
		p.LifestyleTags = []string{}
	}
}
