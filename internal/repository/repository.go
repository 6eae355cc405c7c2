package repository

import (
	"context"

	"github.com/tokenvault/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users             Users
	Sessions          Sessions
	VerificationCodes VerificationCodes
	Escrows           Escrows
	Messages          Messages
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:             newUserRepository(db),
		Sessions:          newSessionRepository(db),
		VerificationCodes: newVerificationCodeRepository(db),
		Escrows:           newEscrowRepository(db),
		Messages:          newMessageRepository(db),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetVerified(ctx context.Context, id uuid.UUID, displayName string) error
	UpdateWalletAddress(ctx context.Context, id uuid.UUID, walletAddress string) error
}

type Sessions interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type VerificationCodes interface {
	Create(ctx context.Context, code *domain.VerificationCode) error
	GetActive(ctx context.Context, userID uuid.UUID, code string) (*domain.VerificationCode, error)
	InvalidateActive(ctx context.Context, userID uuid.UUID, purpose domain.CodePurpose) error
	Consume(ctx context.Context, id uuid.UUID) error
}

// LifecycleState is the previously observed escrow state a lifecycle write is
// conditioned on. A write against a stale state affects zero rows.
type LifecycleState struct {
	Status          domain.EscrowStatus
	BuyerConfirmed  bool
	SellerConfirmed bool
	Disputed        bool
}

func LifecycleStateOf(e *domain.Escrow) LifecycleState {
	return LifecycleState{
		Status:          e.Status,
		BuyerConfirmed:  e.BuyerConfirmed,
		SellerConfirmed: e.SellerConfirmed,
		Disputed:        e.Disputed,
	}
}

type Escrows interface {
	Create(ctx context.Context, escrow *domain.Escrow) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Escrow, error)
	ListByParty(ctx context.Context, userID uuid.UUID, email string) ([]domain.Escrow, error)
	BindRecipient(ctx context.Context, escrowID uuid.UUID, userID uuid.UUID) error
	UpdateWallets(ctx context.Context, escrowID uuid.UUID, creatorWallet *string, recipientWallet *string) error
	UpdateLifecycle(ctx context.Context, escrow *domain.Escrow, prev LifecycleState) error
	SetTransactionHash(ctx context.Context, escrowID uuid.UUID, hash string) error
}

type Messages interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByEscrow(ctx context.Context, escrowID uuid.UUID) ([]domain.Message, error)
}
