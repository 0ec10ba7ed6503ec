package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (template, recipient, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		n.Template,
		n.Recipient,
		n.Payload,
		n.Status,
		n.RetryCount,
		n.LastError,
		now,
		n.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.CreatedAt = now

	return nil
}

// queuedRequeueAfter is how long a row may stay claimed by a redis or
// in-memory queue before polling reclaims it.
const queuedRequeueAfter = 5 * time.Minute

func (db *DB) GetPendingNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	query := `SELECT id, template, recipient, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM notifications
              WHERE (status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?))
                 OR (status = 'queued' AND created_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	now := time.Now()
	rows, err := db.QueryContext(ctx, query, now, now.Add(-queuedRequeueAfter), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (db *DB) UpdateNotificationStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	now := time.Now()

	switch status {
	case "retry":
		query = `UPDATE notifications SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	case "completed", "failed":
		query = `UPDATE notifications SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, &now, id}
	default:
		query = `UPDATE notifications SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	}

	_, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return nil
}

func (db *DB) GetFailedNotifications(ctx context.Context) ([]models.Notification, error) {
	query := `SELECT id, template, recipient, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM notifications WHERE status = 'failed' ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var lastError sql.NullString
	var processedAt, nextRetryAt sql.NullTime

	err := row.Scan(
		&n.ID, &n.Template, &n.Recipient, &n.Payload, &n.Status,
		&n.RetryCount, &lastError, &n.CreatedAt, &processedAt, &nextRetryAt,
	)
	if err != nil {
		return nil, err
	}

	n.LastError = lastError.String
	if processedAt.Valid {
		n.ProcessedAt = &processedAt.Time
	}
	if nextRetryAt.Valid {
		n.NextRetryAt = &nextRetryAt.Time
	}
	return &n, nil
}
