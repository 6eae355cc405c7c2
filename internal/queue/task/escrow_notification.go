package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const EscrowNotificationTaskName = "escrowNotificationTask"

const (
	EscrowEmailKindCreated      = "created"
	EscrowEmailKindReceived     = "received"
	EscrowEmailKindConfirmation = "confirmation"
)

type EscrowNotification struct {
	Kind        string `json:"kind"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	EscrowID    string `json:"escrow_id"`
	TokenSymbol string `json:"token_symbol"`
	Amount      string `json:"amount"`
	// Confirmation-only fields.
	IsCompleted bool   `json:"is_completed,omitempty"`
	WaitingFor  string `json:"waiting_for,omitempty"`
}

func NewEscrowNotificationTask(data EscrowNotification) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		EscrowNotificationTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(EmailQueueName),
	), nil
}
