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

type verificationCodeRepository struct {
	db *sqlx.DB
}

func newVerificationCodeRepository(db *sqlx.DB) *verificationCodeRepository {
	return &verificationCodeRepository{
		db: db,
	}
}

func (r *verificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	const op = "repository.verificationCode.Create"

	const query = `
	INSERT INTO verification_code (id, user_id, code, purpose, expires_at)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :code, :purpose, :expires_at)
	`

	res, err := r.db.NamedExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("%s: insert verification code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

// GetActive returns the matching unused, unexpired code for the user, or
// domain.ErrNotFound.
func (r *verificationCodeRepository) GetActive(ctx context.Context, userID uuid.UUID, code string) (*domain.VerificationCode, error) {
	const op = "repository.verificationCode.GetActive"

	const query = `
	SELECT id, user_id, code, purpose, used, expires_at, created_at
	FROM verification_code
	WHERE user_id = uuid_to_bin(?) AND code = ? AND used = false AND expires_at > now()
	ORDER BY created_at DESC
	LIMIT 1
	`

	var vc domain.VerificationCode
	if err := r.db.GetContext(ctx, &vc, query, userID, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verification code failed: %w", op, err)
	}

	return &vc, nil
}

// InvalidateActive marks every unused code of the purpose used, so a freshly
// issued code is the only live one.
func (r *verificationCodeRepository) InvalidateActive(ctx context.Context, userID uuid.UUID, purpose domain.CodePurpose) error {
	const query = `
	UPDATE verification_code SET used = true
	WHERE user_id = uuid_to_bin(?) AND purpose = ? AND used = false;
	`
	if _, err := r.db.ExecContext(ctx, query, userID, purpose); err != nil {
		return fmt.Errorf("invalidate verification codes failed: %w", err)
	}
	return nil
}

// Consume marks a code used. The used = false condition makes consumption
// single-use even under concurrent verification attempts.
func (r *verificationCodeRepository) Consume(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE verification_code SET used = true WHERE id = uuid_to_bin(?) AND used = false;
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("consume verification code failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume verification code rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}
