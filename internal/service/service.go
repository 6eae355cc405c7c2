package service

import (
	"context"

	"github.com/tokenvault/backend/internal/config"
	"github.com/tokenvault/backend/internal/domain"
	"github.com/tokenvault/backend/internal/repository"
	"github.com/tokenvault/backend/pkg/auth"
	"github.com/tokenvault/backend/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Auth    Auth
	Escrows Escrows
}

type Deps struct {
	Config       *config.Config
	TokenManager auth.TokenManager
	OtpGenerator otp.Generator
	Repos        *repository.Repositories
}

func NewServices(deps Deps) *Services {
	return &Services{
		Auth: newAuthService(deps.Repos.Users,
			deps.Repos.Sessions,
			deps.Repos.VerificationCodes,
			deps.TokenManager,
			deps.OtpGenerator,
			deps.Config.Auth,
		),
		Escrows: newEscrowService(deps.Repos.Escrows,
			deps.Repos.Messages,
			deps.Repos.Users,
		),
	}
}

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID    uuid.UUID
	Email string
}

type AuthResult struct {
	Token string
	User  *domain.PublicUser
}

type Auth interface {
	RequestCode(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.VerificationCode, error)
	VerifyCode(ctx context.Context, email string, code string, displayName string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	LinkWallet(ctx context.Context, userID uuid.UUID, walletAddress string) (*domain.PublicUser, error)
}

type CreateEscrowInput struct {
	TokenAddress   string
	TokenSymbol    string
	Amount         string
	RecipientEmail string
	Description    string
	Terms          string
}

type Escrows interface {
	Create(ctx context.Context, caller Caller, input CreateEscrowInput) (*domain.Escrow, error)
	Get(ctx context.Context, escrowID uuid.UUID, caller Caller) (*domain.Escrow, error)
	ListByUser(ctx context.Context, caller Caller) ([]domain.Escrow, error)
	Confirm(ctx context.Context, escrowID uuid.UUID, caller Caller) (*domain.Escrow, error)
	Dispute(ctx context.Context, escrowID uuid.UUID, caller Caller, reason string) (*domain.Escrow, error)
	SetWallet(ctx context.Context, escrowID uuid.UUID, caller Caller, walletAddress string) (*domain.Escrow, error)
	PostMessage(ctx context.Context, escrowID uuid.UUID, caller Caller, body string) (*domain.Message, error)
	ListMessages(ctx context.Context, escrowID uuid.UUID, caller Caller) ([]domain.Message, error)
}
