package models

import "time"

type Booking struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PackageID     string    `json:"package_id,omitempty"`
	DestinationID string    `json:"destination_id,omitempty"`
	// Denormalized name of the linked package or destination, filled on read.
	ReferenceName string    `json:"reference_name,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status"` // PENDING, APPROVED, REJECTED, COMPLETED
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReferenceKind reports whether the booking points at a package or a destination.
func (b *Booking) ReferenceKind() string {
	if b.PackageID != "" {
		return "package"
	}
	return "destination"
}
