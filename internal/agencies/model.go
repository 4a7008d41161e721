package agencies

import (
	"strings"
	"time"
)

// Agency is a partner brokerage with access to the sniper dashboard.
type Agency struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contactEmail"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Slugify derives the unique URL slug for an agency name.
func Slugify(name string) string {
	var b []rune
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, r)
			lastDash = false
		default:
			if !lastDash {
				b = append(b, '-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(string(b), "-")
}

// Member is a user account attached to an agency.
type Member struct {
	ID        string    `json:"id"`
	AgencyID  string    `json:"agencyId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	RoleOwner  = "owner"
	RoleBroker = "broker"
)
