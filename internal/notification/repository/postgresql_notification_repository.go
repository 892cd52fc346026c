// Package repository provides data persistence implementations for notification entities.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/notification/domain"

	apperrors "github.com/allisson/marketplace/internal/errors"
)

// PostgreSQLNotificationRepository handles notification persistence for PostgreSQL
type PostgreSQLNotificationRepository struct {
	db *sql.DB
}

// NewPostgreSQLNotificationRepository creates a new PostgreSQLNotificationRepository
func NewPostgreSQLNotificationRepository(db *sql.DB) *PostgreSQLNotificationRepository {
	return &PostgreSQLNotificationRepository{
		db: db,
	}
}

// Create inserts a new notification
func (r *PostgreSQLNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO notifications (id, recipient_id, order_id, type, payload, created_at)
			  VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := querier.ExecContext(ctx, query,
		notification.ID, notification.RecipientID, notification.OrderID,
		notification.Type, []byte(notification.Payload),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create notification")
	}
	return nil
}

// ListByRecipient returns a page of the user's notifications, newest first
func (r *PostgreSQLNotificationRepository) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	offset, limit int,
) ([]*domain.Notification, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, recipient_id, order_id, type, payload, created_at
			  FROM notifications
			  WHERE recipient_id = $1
			  ORDER BY created_at DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, recipientID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var notification domain.Notification
		var payload []byte

		err := rows.Scan(&notification.ID, &notification.RecipientID, &notification.OrderID,
			&notification.Type, &payload, &notification.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}
		notification.Payload = payload

		notifications = append(notifications, &notification)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate notifications")
	}
	return notifications, nil
}

// CountByRecipient returns the total number of the user's notifications
func (r *PostgreSQLNotificationRepository) CountByRecipient(ctx context.Context, recipientID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`

	var count int
	if err := querier.QueryRowContext(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count notifications")
	}
	return count, nil
}
