package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tokenvault/backend/internal/domain"
)

type sessionRepository struct {
	db *sqlx.DB
}

func newSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
	INSERT INTO session (id, user_id, token, expires_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?);
	`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.Token, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db insert session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const query = `
	SELECT id, user_id, token, expires_at, created_at, deleted_at
	FROM session WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select session by id failed: %w", err)
	}

	return &session, nil
}

// DeleteByID is idempotent: deleting an already-gone session is not an error.
func (r *sessionRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE session SET deleted_at = now() WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `
	UPDATE session SET deleted_at = now() WHERE user_id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user sessions failed: %w", err)
	}
	return nil
}
