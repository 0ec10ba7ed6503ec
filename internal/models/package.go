package models

import "time"

type Package struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Details    string    `json:"details"`
	Type       string    `json:"type"`
	CustomType string    `json:"custom_type,omitempty"` // set only when Type is OTHER
	Amount     float64   `json:"amount"`
	Duration   int       `json:"duration"` // days
	Nights     int       `json:"nights"`
	Included   []string  `json:"included"`
	Excluded   []string  `json:"excluded"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidPackageType reports whether t is one of the campaign categories.
func ValidPackageType(t string) bool {
	for _, known := range PackageTypes {
		if t == known {
			return true
		}
	}
	return false
}
