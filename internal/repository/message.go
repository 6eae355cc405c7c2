package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tokenvault/backend/internal/domain"
)

type messageRepository struct {
	db *sqlx.DB
}

func newMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
	INSERT INTO message (id, escrow_id, sender_id, body)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?);
	`
	_, err := r.db.ExecContext(ctx, query, message.ID, message.EscrowID, message.SenderID, message.Body)
	if err != nil {
		return fmt.Errorf("db insert message: %w", err)
	}

	return nil
}

func (r *messageRepository) ListByEscrow(ctx context.Context, escrowID uuid.UUID) ([]domain.Message, error) {
	const query = `
	SELECT id, escrow_id, sender_id, body, created_at
	FROM message WHERE escrow_id = uuid_to_bin(?)
	ORDER BY created_at ASC;
	`
	var messages []domain.Message
	if err := r.db.SelectContext(ctx, &messages, query, escrowID); err != nil {
		return nil, fmt.Errorf("select messages by escrow failed: %w", err)
	}

	return messages, nil
}
