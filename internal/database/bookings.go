package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `b.id, b.name, b.email, b.package_id, b.destination_id,
	b.start_date, b.end_date, b.message, b.status, b.created_at, b.updated_at,
	COALESCE(p.name, d.name, '')`

const bookingJoins = `FROM bookings b
	LEFT JOIN packages p ON p.id = b.package_id
	LEFT JOIN destinations d ON d.id = b.destination_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}

	query := `INSERT INTO bookings (
				id, name, email, package_id, destination_id,
				start_date, end_date, message, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.Name,
		booking.Email,
		nullString(booking.PackageID),
		nullString(booking.DestinationID),
		booking.StartDate,
		booking.EndDate,
		booking.Message,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + ` WHERE b.id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListBookings returns all bookings, newest first, with the linked
// package/destination name populated.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + ` ORDER BY b.created_at DESC, b.id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateBookingStatus moves a booking from currentStatus to targetStatus.
// The WHERE clause doubles as an optimistic guard: a concurrent transition
// between the caller's read and this write returns ErrStatusConflict.
func (db *DB) UpdateBookingStatus(ctx context.Context, id, currentStatus, targetStatus string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, targetStatus, time.Now(), id, currentStatus)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check booking existence: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var packageID, destinationID, message sql.NullString

	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Email,
		&packageID,
		&destinationID,
		&b.StartDate,
		&b.EndDate,
		&message,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.ReferenceName,
	)
	if err != nil {
		return nil, err
	}

	b.PackageID = packageID.String
	b.DestinationID = destinationID.String
	b.Message = message.String
	return &b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
