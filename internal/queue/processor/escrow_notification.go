package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tokenvault/backend/internal/queue/task"
	"github.com/tokenvault/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type escrowNotificationProcessor struct {
	workers *worker.Workers
}

func NewEscrowNotificationProcessor(workers *worker.Workers) *escrowNotificationProcessor {
	return &escrowNotificationProcessor{
		workers: workers,
	}
}

func (p *escrowNotificationProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.EscrowNotification
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process escrow notification task json unmarshal failed: %w", err)
	}

	input := worker.EscrowEmailInput{
		Email:       data.Email,
		Name:        data.Name,
		EscrowID:    data.EscrowID,
		TokenSymbol: data.TokenSymbol,
		Amount:      data.Amount,
	}

	switch data.Kind {
	case task.EscrowEmailKindCreated:
		if err := p.workers.EmailSender.SendEscrowCreatedEmail(ctx, input); err != nil {
			return fmt.Errorf("send escrow created email failed: %w", err)
		}
	case task.EscrowEmailKindReceived:
		if err := p.workers.EmailSender.SendEscrowReceivedEmail(ctx, input); err != nil {
			return fmt.Errorf("send escrow received email failed: %w", err)
		}
	case task.EscrowEmailKindConfirmation:
		if err := p.workers.EmailSender.SendEscrowConfirmationEmail(ctx, input, data.IsCompleted, data.WaitingFor); err != nil {
			return fmt.Errorf("send escrow confirmation email failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown escrow email kind: %s", data.Kind)
	}

	return nil
}
