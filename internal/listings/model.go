package listings

import "time"

// Property is a published listing in the PuntaLuxe catalog. Listings are
// created from converted prospects but live their own lifecycle.
type Property struct {
	ID            string    `json:"id"`
	AgencyID      string    `json:"agencyId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Neighborhood  string    `json:"neighborhood"`
	PropertyType  string    `json:"propertyType"`
	PriceUSD      float64   `json:"priceUsd"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	AreaM2        float64   `json:"areaM2"`
	Features      []string  `json:"features"`
	LifestyleTags []string  `json:"lifestyleTags"`
	HeroImageURL  string    `json:"heroImageUrl"`
	Published     bool      `json:"published"`
	Featured      bool      `json:"featured"`
	Views         int64     `json:"views"`
	LeadID        string    `json:"leadId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
