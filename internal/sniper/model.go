package sniper

import "time"

// Status is the triage state of a prospect. The scraper creates rows as
// StatusNew; this service only ever moves them forward, never back and
// never out of a terminal state.
type Status string

const (
	StatusNew          Status = "new"
	StatusQualified    Status = "qualified"
	StatusContacted    Status = "contacted"
	StatusDisqualified Status = "disqualified"
	StatusConverted    Status = "converted"
)

// Valid reports whether s is a known triage status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusQualified, StatusContacted, StatusDisqualified, StatusConverted:
		return true
	}
	return false
}

// transitions lists the moves this service is allowed to make. Conversion
// happens downstream in the CRM, not here.
var transitions = map[Status][]Status{
	StatusNew: {StatusQualified, StatusContacted, StatusDisqualified},
}

// CanTransition reports whether from→to is a legal triage move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Source is the channel the scraper discovered a prospect on.
type Source string

const (
	SourceGoogleMaps   Source = "google_maps"
	SourceMercadoLibre Source = "mercadolibre"
	SourceFacebook     Source = "facebook"
)

// Valid reports whether s is a known source channel.
func (s Source) Valid() bool {
	switch s {
	case SourceGoogleMaps, SourceMercadoLibre, SourceFacebook:
		return true
	}
	return false
}

// Defaults applied when the scraper left a column empty.
const (
	DefaultAddress   = "Sin dirección"
	DefaultOwnerName = "Desconocido"
)

// Prospect is a candidate property lead after nullable→default mapping.
type Prospect struct {
	ID             string     `json:"id"`
	Address        string     `json:"address"`
	OwnerName      string     `json:"owner_name"`
	ListedPrice    float64    `json:"listed_price"`
	MarketEstimate float64    `json:"market_estimate"`
	Source         Source     `json:"source"`
	Status         Status     `json:"status"`
	QualityScore   int        `json:"quality_score"`
	DaysOnMarket   int        `json:"days_on_market"`
	LastContact    *time.Time `json:"last_contact"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProspectRecord is a raw store row; nullable columns stay pointers so the
// mapping rules live in exactly one place.
type ProspectRecord struct {
	ID             string
	Address        *string
	OwnerName      *string
	ListedPrice    *float64
	MarketEstimate *float64
	Source         *string
	Status         *string
	QualityScore   *int
	DaysOnMarket   *int
	LastContact    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Normalize maps a raw row into the Prospect shape, applying the same
// defaulting rules for the initial page and for streamed inserts.
func (r ProspectRecord) Normalize() Prospect {
	p := Prospect{
		ID:          r.ID,
		Address:     DefaultAddress,
		OwnerName:   DefaultOwnerName,
		Source:      SourceGoogleMaps,
		Status:      StatusNew,
		LastContact: r.LastContact,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Address != nil && *r.Address != "" {
		p.Address = *r.Address
	}
	if r.OwnerName != nil && *r.OwnerName != "" {
		p.OwnerName = *r.OwnerName
	}
	if r.ListedPrice != nil {
		p.ListedPrice = *r.ListedPrice
	}
	if r.MarketEstimate != nil {
		p.MarketEstimate = *r.MarketEstimate
	}
	if r.Source != nil && Source(*r.Source).Valid() {
		p.Source = Source(*r.Source)
	}
	if r.Status != nil && Status(*r.Status).Valid() {
		p.Status = Status(*r.Status)
	}
	if r.QualityScore != nil {
		p.QualityScore = *r.QualityScore
	}
	if r.DaysOnMarket != nil {
		p.DaysOnMarket = *r.DaysOnMarket
	}
	return p
}

// Stats are the derived counters shown on the dashboard stat cards. Pure
// function of the current feed contents, recomputed on every change.
type Stats struct {
	Total        int `json:"total"`
	New          int `json:"new"`
	Qualified    int `json:"qualified"`
	Contacted    int `json:"contacted"`
	Disqualified int `json:"disqualified"`
	Converted    int `json:"converted"`
}

// ComputeStats tallies statuses over the given prospects.
func ComputeStats(prospects []Prospect) Stats {
	s := Stats{Total: len(prospects)}
	for _, p := range prospects {
		switch p.Status {
		case StatusNew:
			s.New++
		case StatusQualified:
			s.Qualified++
		case StatusContacted:
			s.Contacted++
		case StatusDisqualified:
			s.Disqualified++
		case StatusConverted:
			s.Converted++
		}
	}
	return s
}
