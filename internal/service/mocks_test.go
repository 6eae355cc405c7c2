package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tokenvault/backend/internal/domain"
	"github.com/tokenvault/backend/internal/repository"
)

// In-memory repositories mirroring the SQL semantics the services rely on:
// unique keys report domain.ErrDuplicateEntry, misses report domain.ErrNotFound
// and conditional writes report domain.ErrNoRowsAffected when the condition
// does not hold.

type mockUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEntry
		}
	}
	stored := *user
	stored.CreatedAt = time.Now()
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) SetVerified(ctx context.Context, id uuid.UUID, displayName string) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Verified = true
	if displayName != "" {
		u.DisplayName.String = displayName
		u.DisplayName.Valid = true
	}
	return nil
}

func (m *mockUserRepo) UpdateWalletAddress(ctx context.Context, id uuid.UUID, walletAddress string) error {
	for otherID, u := range m.users {
		if otherID != id && u.WalletAddress.Valid && u.WalletAddress.String == walletAddress {
			return domain.ErrDuplicateEntry
		}
	}
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.WalletAddress.String = walletAddress
	u.WalletAddress.Valid = true
	return nil
}

type mockSessionRepo struct {
	sessions map[uuid.UUID]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *domain.Session) error {
	stored := *session
	m.sessions[session.ID] = &stored
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

type mockCodeRepo struct {
	codes map[uuid.UUID]*domain.VerificationCode
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{codes: make(map[uuid.UUID]*domain.VerificationCode)}
}

func (m *mockCodeRepo) Create(ctx context.Context, code *domain.VerificationCode) error {
	stored := *code
	m.codes[code.ID] = &stored
	return nil
}

func (m *mockCodeRepo) GetActive(ctx context.Context, userID uuid.UUID, code string) (*domain.VerificationCode, error) {
	for _, c := range m.codes {
		if c.UserID == userID && c.Code == code && !c.Used && time.Now().Before(c.ExpiresAt) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCodeRepo) InvalidateActive(ctx context.Context, userID uuid.UUID, purpose domain.CodePurpose) error {
	for _, c := range m.codes {
		if c.UserID == userID && c.Purpose == purpose {
			c.Used = true
		}
	}
	return nil
}

func (m *mockCodeRepo) Consume(ctx context.Context, id uuid.UUID) error {
	c, ok := m.codes[id]
	if !ok || c.Used {
		return domain.ErrNoRowsAffected
	}
	c.Used = true
	return nil
}

type mockEscrowRepo struct {
	escrows map[uuid.UUID]*domain.Escrow
}

func newMockEscrowRepo() *mockEscrowRepo {
	return &mockEscrowRepo{escrows: make(map[uuid.UUID]*domain.Escrow)}
}

func (m *mockEscrowRepo) Create(ctx context.Context, escrow *domain.Escrow) error {
	stored := *escrow
	stored.CreatedAt = time.Now()
	m.escrows[escrow.ID] = &stored
	return nil
}

func (m *mockEscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Escrow, error) {
	e, ok := m.escrows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEscrowRepo) ListByParty(ctx context.Context, userID uuid.UUID, email string) ([]domain.Escrow, error) {
	var out []domain.Escrow
	for _, e := range m.escrows {
		if e.RoleOf(userID, email) != domain.RoleNone {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEscrowRepo) BindRecipient(ctx context.Context, escrowID uuid.UUID, userID uuid.UUID) error {
	e, ok := m.escrows[escrowID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.RecipientID == nil {
		id := userID
		e.RecipientID = &id
	}
	return nil
}

func (m *mockEscrowRepo) UpdateWallets(ctx context.Context, escrowID uuid.UUID, creatorWallet *string, recipientWallet *string) error {
	e, ok := m.escrows[escrowID]
	if !ok {
		return domain.ErrNotFound
	}
	if creatorWallet != nil {
		e.CreatorWallet.String = *creatorWallet
		e.CreatorWallet.Valid = true
	}
	if recipientWallet != nil {
		e.RecipientWallet.String = *recipientWallet
		e.RecipientWallet.Valid = true
	}
	return nil
}

func (m *mockEscrowRepo) UpdateLifecycle(ctx context.Context, escrow *domain.Escrow, prev repository.LifecycleState) error {
	e, ok := m.escrows[escrow.ID]
	if !ok {
		return domain.ErrNoRowsAffected
	}
	if repository.LifecycleStateOf(e) != prev {
		return domain.ErrNoRowsAffected
	}
	e.BuyerConfirmed = escrow.BuyerConfirmed
	e.SellerConfirmed = escrow.SellerConfirmed
	e.Disputed = escrow.Disputed
	e.DisputeReason = escrow.DisputeReason
	e.Status = escrow.Status
	e.CompletedAt = escrow.CompletedAt
	return nil
}

func (m *mockEscrowRepo) SetTransactionHash(ctx context.Context, escrowID uuid.UUID, hash string) error {
	e, ok := m.escrows[escrowID]
	if !ok || e.TransactionHash.Valid {
		return domain.ErrNoRowsAffected
	}
	e.TransactionHash.String = hash
	e.TransactionHash.Valid = true
	return nil
}

// contestedEscrowRepo loses every lifecycle compare-and-swap, as if another
// request always wins the race.
type contestedEscrowRepo struct {
	*mockEscrowRepo
}

func (m *contestedEscrowRepo) UpdateLifecycle(ctx context.Context, escrow *domain.Escrow, prev repository.LifecycleState) error {
	return domain.ErrNoRowsAffected
}

type mockMessageRepo struct {
	messages []domain.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	stored := *message
	stored.CreatedAt = time.Now()
	m.messages = append(m.messages, stored)
	return nil
}

func (m *mockMessageRepo) ListByEscrow(ctx context.Context, escrowID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.EscrowID == escrowID {
			out = append(out, msg)
		}
	}
	return out, nil
}
