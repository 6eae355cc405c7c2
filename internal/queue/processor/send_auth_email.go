package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tokenvault/backend/internal/queue/task"
	"github.com/tokenvault/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type sendAuthEmailProcessor struct {
	workers *worker.Workers
}

func NewSendAuthEmailProcessor(workers *worker.Workers) *sendAuthEmailProcessor {
	return &sendAuthEmailProcessor{
		workers: workers,
	}
}

func (p *sendAuthEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendAuthEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process auth email task json unmarshal failed: %w", err)
	}

	switch data.Kind {
	case task.AuthEmailKindLoginCode:
		if err := p.workers.EmailSender.SendLoginCode(ctx, data.Email, data.Code, data.Name); err != nil {
			return fmt.Errorf("send login code email failed: %w", err)
		}
	case task.AuthEmailKindWelcome:
		if err := p.workers.EmailSender.SendWelcomeEmail(ctx, data.Email, data.Name); err != nil {
			return fmt.Errorf("send welcome email failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown auth email kind: %s", data.Kind)
	}

	return nil
}
