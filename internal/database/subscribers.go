package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

func (db *DB) GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	query := `SELECT id, email, subscribed_at FROM subscribers WHERE email = ?`

	var s models.Subscriber
	err := db.QueryRowContext(ctx, query, email).Scan(&s.ID, &s.Email, &s.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return &s, nil
}

func (db *DB) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	now := time.Now()
	query := `INSERT INTO subscribers (id, email, subscribed_at) VALUES (?, ?, ?)`
	_, err := db.ExecContext(ctx, query, s.ID, s.Email, now)
	if err != nil {
		// The duplicate check runs before insert, but the unique index is the
		// backstop against the check-then-insert race.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateSubscriber
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}

	s.SubscribedAt = now
	return nil
}

func (db *DB) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	query := `SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := []models.Subscriber{}
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subscribers, nil
}
