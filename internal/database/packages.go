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

func (db *DB) CreatePackage(ctx context.Context, p *models.Package) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	included, err := encodeList(p.Included)
	if err != nil {
		return err
	}
	excluded, err := encodeList(p.Excluded)
	if err != nil {
		return err
	}

	query := `INSERT INTO packages (
				id, name, details, type, custom_type, amount, duration, nights,
				included, excluded, image_url, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err = db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Details,
		p.Type,
		p.CustomType,
		p.Amount,
		p.Duration,
		p.Nights,
		included,
		excluded,
		p.ImageURL,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	query := `SELECT id, name, details, type, custom_type, amount, duration, nights,
	                 included, excluded, image_url, created_at, updated_at
	          FROM packages WHERE id = ?`

	p, err := scanPackage(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return p, nil
}

// GetPackageName returns only the name, used for booking emails.
func (db *DB) GetPackageName(ctx context.Context, id string) (string, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM packages WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get package name: %w", err)
	}
	return name, nil
}

// ListPackages returns one page, newest first, optionally filtered by type,
// plus the total row count for the same filter.
func (db *DB) ListPackages(ctx context.Context, page, pageSize int, packageType string) ([]models.Package, int, error) {
	if page < 1 {
		page = 1
	}

	countQuery := `SELECT COUNT(*) FROM packages`
	listQuery := `SELECT id, name, details, type, custom_type, amount, duration, nights,
	                     included, excluded, image_url, created_at, updated_at
	              FROM packages`
	var countArgs, listArgs []any
	if packageType != "" {
		countQuery += ` WHERE type = ?`
		listQuery += ` WHERE type = ?`
		countArgs = append(countArgs, packageType)
		listArgs = append(listArgs, packageType)
	}
	listQuery += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	listArgs = append(listArgs, pageSize, (page-1)*pageSize)

	var total int
	if err := db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count packages: %w", err)
	}

	rows, err := db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	packages := []models.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return packages, total, nil
}

func (db *DB) UpdatePackage(ctx context.Context, p *models.Package) error {
	included, err := encodeList(p.Included)
	if err != nil {
		return err
	}
	excluded, err := encodeList(p.Excluded)
	if err != nil {
		return err
	}

	query := `UPDATE packages SET
				name = ?, details = ?, type = ?, custom_type = ?, amount = ?,
				duration = ?, nights = ?, included = ?, excluded = ?,
				image_url = CASE WHEN ? = '' THEN image_url ELSE ? END,
				updated_at = ?
			  WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		p.Name,
		p.Details,
		p.Type,
		p.CustomType,
		p.Amount,
		p.Duration,
		p.Nights,
		included,
		excluded,
		p.ImageURL, p.ImageURL,
		now,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	p.UpdatedAt = now
	return nil
}

func (db *DB) DeletePackage(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
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

func scanPackage(row rowScanner) (*models.Package, error) {
	var p models.Package
	var included, excluded string
	var customType, imageURL sql.NullString

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Details,
		&p.Type,
		&customType,
		&p.Amount,
		&p.Duration,
		&p.Nights,
		&included,
		&excluded,
		&imageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CustomType = customType.String
	p.ImageURL = imageURL.String

	if p.Included, err = decodeList(included); err != nil {
		return nil, err
	}
	if p.Excluded, err = decodeList(excluded); err != nil {
		return nil, err
	}

	return &p, nil
}
