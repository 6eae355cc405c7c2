package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SettleEscrowTaskName = "settleEscrowTask"
	SettlementQueueName  = "settlementQueue"
	settleEscrowMaxRetry = 10
)

type SettleEscrow struct {
	EscrowID     string `json:"escrow_id"`
	FromWallet   string `json:"from_wallet"`
	ToWallet     string `json:"to_wallet"`
	TokenAddress string `json:"token_address"`
	Amount       string `json:"amount"`
}

func NewSettleEscrowTask(data SettleEscrow) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SettleEscrowTaskName,
		payload,
		asynq.MaxRetry(settleEscrowMaxRetry),
		asynq.Queue(SettlementQueueName),
	), nil
}
