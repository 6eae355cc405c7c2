package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendAuthEmailTaskName = "sendAuthEmailTask"
	EmailQueueName        = "emailQueue"
)

const (
	AuthEmailKindLoginCode = "login_code"
	AuthEmailKindWelcome   = "welcome"
)

type SendAuthEmail struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code,omitempty"`
}

func NewSendAuthEmailTask(kind, email, name, code string) (*asynq.Task, error) {
	data := SendAuthEmail{
		Kind:  kind,
		Email: email,
		Name:  name,
		Code:  code,
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendAuthEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(EmailQueueName),
	), nil
}
