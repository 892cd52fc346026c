// Package repository provides data persistence implementations for chat entities.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/marketplace/internal/chat/domain"
	"github.com/allisson/marketplace/internal/database"

	apperrors "github.com/allisson/marketplace/internal/errors"
)

// PostgreSQLChatRepository handles chat message persistence for PostgreSQL
type PostgreSQLChatRepository struct {
	db *sql.DB
}

// NewPostgreSQLChatRepository creates a new PostgreSQLChatRepository
func NewPostgreSQLChatRepository(db *sql.DB) *PostgreSQLChatRepository {
	return &PostgreSQLChatRepository{
		db: db,
	}
}

// Create inserts a new chat message
func (r *PostgreSQLChatRepository) Create(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO chat_messages (id, room_key, product_id, sender_id, receiver_id, body, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(ctx, query,
		message.ID, message.RoomKey, message.ProductID, message.SenderID, message.ReceiverID, message.Body,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create chat message")
	}
	return nil
}

// ListByRoom returns a page of a room's messages ordered by createdAt ascending
func (r *PostgreSQLChatRepository) ListByRoom(
	ctx context.Context,
	roomKey string,
	offset, limit int,
) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, room_key, product_id, sender_id, receiver_id, body, created_at
			  FROM chat_messages
			  WHERE room_key = $1
			  ORDER BY created_at ASC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, roomKey, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list chat messages")
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var message domain.Message

		err := rows.Scan(&message.ID, &message.RoomKey, &message.ProductID,
			&message.SenderID, &message.ReceiverID, &message.Body, &message.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan chat message")
		}

		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate chat messages")
	}
	return messages, nil
}
