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

type escrowRepository struct {
	db *sqlx.DB
}

func newEscrowRepository(db *sqlx.DB) *escrowRepository {
	return &escrowRepository{
		db: db,
	}
}

func (r *escrowRepository) Create(ctx context.Context, escrow *domain.Escrow) error {
	const op = "repository.escrow.Create"

	const query = `
	INSERT INTO escrow
	(id, token_address, token_symbol, amount, description, terms, creator_id, recipient_email, status)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, uuid_to_bin(?), ?, ?);
	`

	res, err := r.db.ExecContext(ctx, query,
		escrow.ID,
		escrow.TokenAddress,
		escrow.TokenSymbol,
		escrow.Amount,
		escrow.Description,
		escrow.Terms,
		escrow.CreatorID,
		escrow.RecipientEmail,
		escrow.Status,
	)
	if err != nil {
		return fmt.Errorf("%s: insert escrow failed: %w", op, err)
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

const escrowColumns = `
	id, token_address, token_symbol, amount, description, terms,
	creator_id, creator_wallet, recipient_email, recipient_id, recipient_wallet,
	buyer_confirmed, seller_confirmed, disputed, dispute_reason,
	status, transaction_hash, completed_at, created_at, updated_at`

func (r *escrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Escrow, error) {
	const query = `SELECT` + escrowColumns + `
	FROM escrow WHERE id = uuid_to_bin(?);
	`
	var escrow domain.Escrow
	if err := r.db.GetContext(ctx, &escrow, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select escrow by id failed: %w", err)
	}

	return &escrow, nil
}

// ListByParty returns escrows the user created, is bound to as recipient, or
// is invited to by email, newest first.
func (r *escrowRepository) ListByParty(ctx context.Context, userID uuid.UUID, email string) ([]domain.Escrow, error) {
	const query = `SELECT` + escrowColumns + `
	FROM escrow
	WHERE creator_id = uuid_to_bin(?)
	   OR recipient_id = uuid_to_bin(?)
	   OR (recipient_id IS NULL AND recipient_email = ?)
	ORDER BY created_at DESC;
	`
	var escrows []domain.Escrow
	if err := r.db.SelectContext(ctx, &escrows, query, userID, userID, email); err != nil {
		return nil, fmt.Errorf("select escrows by party failed: %w", err)
	}

	return escrows, nil
}

// BindRecipient attaches the user as the escrow recipient if none is bound
// yet. Losing the race to another bind is fine: the recipient_id IS NULL
// condition keeps the first binding in place.
func (r *escrowRepository) BindRecipient(ctx context.Context, escrowID uuid.UUID, userID uuid.UUID) error {
	const query = `
	UPDATE escrow SET recipient_id = uuid_to_bin(?)
	WHERE id = uuid_to_bin(?) AND recipient_id IS NULL;
	`
	if _, err := r.db.ExecContext(ctx, query, userID, escrowID); err != nil {
		return fmt.Errorf("bind escrow recipient failed: %w", err)
	}
	return nil
}

func (r *escrowRepository) UpdateWallets(ctx context.Context, escrowID uuid.UUID, creatorWallet *string, recipientWallet *string) error {
	const query = `
	UPDATE escrow SET
		creator_wallet = COALESCE(?, creator_wallet),
		recipient_wallet = COALESCE(?, recipient_wallet)
	WHERE id = uuid_to_bin(?);
	`
	if _, err := r.db.ExecContext(ctx, query, creatorWallet, recipientWallet, escrowID); err != nil {
		return fmt.Errorf("update escrow wallets failed: %w", err)
	}
	return nil
}

// UpdateLifecycle writes the confirmation/dispute flags and the status
// projection as one compare-and-swap against the previously read state.
// A concurrent confirm or dispute that got there first leaves this write
// affecting zero rows, surfaced as domain.ErrNoRowsAffected so the caller
// can re-read and re-evaluate.
func (r *escrowRepository) UpdateLifecycle(ctx context.Context, escrow *domain.Escrow, prev LifecycleState) error {
	const op = "repository.escrow.UpdateLifecycle"

	const query = `
	UPDATE escrow SET
		buyer_confirmed = ?,
		seller_confirmed = ?,
		disputed = ?,
		dispute_reason = ?,
		status = ?,
		completed_at = ?
	WHERE id = uuid_to_bin(?)
	  AND buyer_confirmed = ? AND seller_confirmed = ? AND disputed = ? AND status = ?;
	`

	res, err := r.db.ExecContext(ctx, query,
		escrow.BuyerConfirmed,
		escrow.SellerConfirmed,
		escrow.Disputed,
		escrow.DisputeReason,
		escrow.Status,
		escrow.CompletedAt,
		escrow.ID,
		prev.BuyerConfirmed,
		prev.SellerConfirmed,
		prev.Disputed,
		prev.Status,
	)
	if err != nil {
		return fmt.Errorf("%s: update escrow failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *escrowRepository) SetTransactionHash(ctx context.Context, escrowID uuid.UUID, hash string) error {
	const query = `
	UPDATE escrow SET transaction_hash = ? WHERE id = uuid_to_bin(?) AND transaction_hash IS NULL;
	`
	if _, err := r.db.ExecContext(ctx, query, hash, escrowID); err != nil {
		return fmt.Errorf("set escrow transaction hash failed: %w", err)
	}
	return nil
}
