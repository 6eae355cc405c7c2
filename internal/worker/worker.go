package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tokenvault/backend/internal/config"
	"github.com/tokenvault/backend/internal/repository"
	"github.com/tokenvault/backend/internal/settlement"
	emailProvider "github.com/tokenvault/backend/pkg/email"
)

type Workers struct {
	EmailSender EmailSender
	Settler     Settler
}

type Deps struct {
	Redis         redis.UniversalClient
	Repos         *repository.Repositories
	EmailProvider emailProvider.Sender
	Simulator     *settlement.Simulator
	Config        *config.Config
}

type EscrowEmailInput struct {
	Email       string
	Name        string
	EscrowID    string
	TokenSymbol string
	Amount      string
}

type EmailSender interface {
	SendLoginCode(ctx context.Context, email string, code string, name string) error
	SendWelcomeEmail(ctx context.Context, email string, name string) error
	SendEscrowCreatedEmail(ctx context.Context, input EscrowEmailInput) error
	SendEscrowReceivedEmail(ctx context.Context, input EscrowEmailInput) error
	SendEscrowConfirmationEmail(ctx context.Context, input EscrowEmailInput, isCompleted bool, waitingFor string) error
}

type Settler interface {
	SettleEscrow(ctx context.Context, escrowID uuid.UUID, transfer settlement.Transfer) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
		Settler:     newSettler(deps.Redis, deps.Repos.Escrows, deps.Simulator),
	}
}
