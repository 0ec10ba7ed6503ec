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

func (db *DB) CreateDestination(ctx context.Context, d *models.Destination) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	whatToCarry, err := encodeList(d.WhatToCarry)
	if err != nil {
		return err
	}
	inclusive, err := encodeList(d.Inclusive)
	if err != nil {
		return err
	}
	exclusive, err := encodeList(d.Exclusive)
	if err != nil {
		return err
	}

	query := `INSERT INTO destinations (
				id, name, title, description, best_time_to_travel, what_to_carry,
				location, inclusive, exclusive, amount, image_url, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err = db.ExecContext(ctx, query,
		d.ID,
		d.Name,
		d.Title,
		d.Description,
		d.BestTimeToTravel,
		whatToCarry,
		d.Location,
		inclusive,
		exclusive,
		d.Amount,
		d.ImageURL,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

func (db *DB) GetDestination(ctx context.Context, id string) (*models.Destination, error) {
	query := `SELECT id, name, title, description, best_time_to_travel, what_to_carry,
	                 location, inclusive, exclusive, amount, image_url, created_at, updated_at
	          FROM destinations WHERE id = ?`

	d, err := scanDestination(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}
	return d, nil
}

// GetDestinationName returns only the name, used for booking emails.
func (db *DB) GetDestinationName(ctx context.Context, id string) (string, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM destinations WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get destination name: %w", err)
	}
	return name, nil
}

// ListDestinations returns one page, newest first, plus the total row count.
func (db *DB) ListDestinations(ctx context.Context, page, pageSize int) ([]models.Destination, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM destinations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count destinations: %w", err)
	}

	query := `SELECT id, name, title, description, best_time_to_travel, what_to_carry,
	                 location, inclusive, exclusive, amount, image_url, created_at, updated_at
	          FROM destinations ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list destinations: %w", err)
	}
	defer rows.Close()

	destinations := []models.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan destination: %w", err)
		}
		destinations = append(destinations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return destinations, total, nil
}

func (db *DB) UpdateDestination(ctx context.Context, d *models.Destination) error {
	whatToCarry, err := encodeList(d.WhatToCarry)
	if err != nil {
		return err
	}
	inclusive, err := encodeList(d.Inclusive)
	if err != nil {
		return err
	}
	exclusive, err := encodeList(d.Exclusive)
	if err != nil {
		return err
	}

	query := `UPDATE destinations SET
				name = ?, title = ?, description = ?, best_time_to_travel = ?,
				what_to_carry = ?, location = ?, inclusive = ?, exclusive = ?,
				amount = ?, image_url = CASE WHEN ? = '' THEN image_url ELSE ? END,
				updated_at = ?
			  WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		d.Name,
		d.Title,
		d.Description,
		d.BestTimeToTravel,
		whatToCarry,
		d.Location,
		inclusive,
		exclusive,
		d.Amount,
		d.ImageURL, d.ImageURL,
		now,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update destination: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	d.UpdatedAt = now
	return nil
}

func (db *DB) DeleteDestination(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM destinations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete destination: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDestination(row rowScanner) (*models.Destination, error) {
	var d models.Destination
	var whatToCarry, inclusive, exclusive string
	var bestTime, location, imageURL sql.NullString

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Title,
		&d.Description,
		&bestTime,
		&whatToCarry,
		&location,
		&inclusive,
		&exclusive,
		&d.Amount,
		&imageURL,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.BestTimeToTravel = bestTime.String
	d.Location = location.String
	d.ImageURL = imageURL.String

	if d.WhatToCarry, err = decodeList(whatToCarry); err != nil {
		return nil, err
	}
	if d.Inclusive, err = decodeList(inclusive); err != nil {
		return nil, err
	}
	if d.Exclusive, err = decodeList(exclusive); err != nil {
		return nil, err
	}

	return &d, nil
}
