package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tokenvault/backend/internal/db"
	"github.com/tokenvault/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
	INSERT INTO user (id, email, display_name, wallet_address, verified)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.WalletAddress,
		user.Verified,
	)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
	SELECT id, email, display_name, wallet_address, verified, created_at, updated_at, deleted_at
	FROM user WHERE email = ? AND deleted_at IS NULL;
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select user by email failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
	SELECT id, email, display_name, wallet_address, verified, created_at, updated_at, deleted_at
	FROM user WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select user by id failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) SetVerified(ctx context.Context, id uuid.UUID, displayName string) error {
	const query = `
	UPDATE user SET verified = true, display_name = COALESCE(NULLIF(?, ''), display_name)
	WHERE id = uuid_to_bin(?);
	`
	if _, err := r.db.ExecContext(ctx, query, displayName, id); err != nil {
		return fmt.Errorf("update user verified failed: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateWalletAddress(ctx context.Context, id uuid.UUID, walletAddress string) error {
	const query = `
	UPDATE user SET wallet_address = ? WHERE id = uuid_to_bin(?);
	`
	if _, err := r.db.ExecContext(ctx, query, walletAddress, id); err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("update user wallet failed: %w", err)
	}
	return nil
}
