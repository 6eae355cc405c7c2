package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tokenvault/backend/internal/queue/task"
	"github.com/tokenvault/backend/internal/settlement"
	"github.com/tokenvault/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type settleEscrowProcessor struct {
	workers *worker.Workers
}

func NewSettleEscrowProcessor(workers *worker.Workers) *settleEscrowProcessor {
	return &settleEscrowProcessor{
		workers: workers,
	}
}

func (p *settleEscrowProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SettleEscrow
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process settle escrow task json unmarshal failed: %w", err)
	}

	escrowID, err := uuid.Parse(data.EscrowID)
	if err != nil {
		return fmt.Errorf("parse escrow id failed: %w", err)
	}

	transfer := settlement.Transfer{
		FromWallet:   data.FromWallet,
		ToWallet:     data.ToWallet,
		TokenAddress: data.TokenAddress,
		Amount:       data.Amount,
	}

	if err := p.workers.Settler.SettleEscrow(ctx, escrowID, transfer); err != nil {
		return fmt.Errorf("settle escrow failed: %w", err)
	}

	return nil
}
