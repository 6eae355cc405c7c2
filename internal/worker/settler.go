package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/tokenvault/backend/internal/repository"
	"github.com/tokenvault/backend/internal/settlement"
)

const settleLockTTL = time.Hour

type settler struct {
	redis     redis.UniversalClient
	escrows   repository.Escrows
	simulator *settlement.Simulator
}

func newSettler(
	redis redis.UniversalClient,
	escrows repository.Escrows,
	simulator *settlement.Simulator,
) *settler {
	return &settler{
		redis:     redis,
		escrows:   escrows,
		simulator: simulator,
	}
}

// SettleEscrow runs the simulated transfer and persists the receipt hash.
// A redis SETNX lock plus the transaction_hash IS NULL write condition keep
// retried tasks from settling the same escrow twice.
func (s *settler) SettleEscrow(ctx context.Context, escrowID uuid.UUID, transfer settlement.Transfer) error {
	lockKey := "settle:" + escrowID.String()

	locked, err := s.redis.SetNX(ctx, lockKey, 1, settleLockTTL).Result()
	if err != nil {
		return errors.Wrap(err, "acquire settle lock")
	}
	if !locked {
		return nil
	}

	escrow, err := s.escrows.GetByID(ctx, escrowID)
	if err != nil {
		return errors.Wrap(err, "load escrow for settlement")
	}
	if escrow.TransactionHash.Valid {
		return nil
	}

	receipt, err := s.simulator.SimulateTokenTransfer(transfer)
	if err != nil {
		return errors.Wrap(err, "simulate transfer")
	}

	if err := s.escrows.SetTransactionHash(ctx, escrowID, receipt.TransactionHash); err != nil {
		return errors.Wrap(err, "persist transaction hash")
	}

	return nil
}
