package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvault/backend/internal/domain"
)

const (
	usdcAddress = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	aliceWallet = "0x52908400098527886E0F7030069857D2E4169EE7"
	bobWallet   = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"
)

type escrowFixture struct {
	service *escrowService
	escrows *mockEscrowRepo
	users   *mockUserRepo
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()

	escrows := newMockEscrowRepo()
	users := newMockUserRepo()

	return &escrowFixture{
		service: newEscrowService(escrows, newMockMessageRepo(), users),
		escrows: escrows,
		users:   users,
	}
}

func (f *escrowFixture) newParty(t *testing.T, email string) Caller {
	t.Helper()

	user := &domain.User{ID: uuid.New(), Email: email}
	require.NoError(t, f.users.Create(context.Background(), user))

	return Caller{ID: user.ID, Email: email}
}

func (f *escrowFixture) createEscrow(t *testing.T, creator Caller, recipientEmail string) *domain.Escrow {
	t.Helper()

	escrow, err := f.service.Create(context.Background(), creator, CreateEscrowInput{
		TokenAddress:   usdcAddress,
		TokenSymbol:    "USDC",
		Amount:         "1500.00",
		RecipientEmail: recipientEmail,
		Description:    "Landing page redesign",
		Terms:          "Net 7 after delivery",
	})
	require.NoError(t, err)

	return escrow
}

func TestEscrowService_Create(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")

	escrow := f.createEscrow(t, alice, "Bob@Example.com")

	assert.Equal(t, domain.EscrowPending, escrow.Status)
	assert.Equal(t, alice.ID, escrow.CreatorID)
	assert.Equal(t, "bob@example.com", escrow.RecipientEmail)
	assert.Nil(t, escrow.RecipientID)
	assert.False(t, escrow.BuyerConfirmed)
	assert.False(t, escrow.SellerConfirmed)
}

func TestEscrowService_Create_Validation(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	ctx := context.Background()

	_, err := f.service.Create(ctx, alice, CreateEscrowInput{
		TokenAddress: usdcAddress,
		TokenSymbol:  "USDC",
		Amount:       "1500.00",
		Description:  "No recipient",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Create(ctx, alice, CreateEscrowInput{
		TokenAddress:   "not-an-address",
		TokenSymbol:    "USDC",
		Amount:         "1500.00",
		RecipientEmail: "bob@example.com",
		Description:    "Bad token",
	})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, f.escrows.escrows, "nothing may be persisted on rejection")
}

func TestEscrowService_Get_NotParticipant(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	mallory := f.newParty(t, "mallory@example.com")

	escrow := f.createEscrow(t, alice, "bob@example.com")

	_, err := f.service.Get(context.Background(), escrow.ID, mallory)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestEscrowService_Get_BindsRecipientLazily(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")

	escrow := f.createEscrow(t, alice, "bob@example.com")

	// Bob's first authenticated read claims the recipient slot.
	got, err := f.service.Get(context.Background(), escrow.ID, bob)
	require.NoError(t, err)
	require.NotNil(t, got.RecipientID)
	assert.Equal(t, bob.ID, *got.RecipientID)

	stored := f.escrows.escrows[escrow.ID]
	require.NotNil(t, stored.RecipientID)
	assert.Equal(t, bob.ID, *stored.RecipientID)

	// A later caller with the same email but a different account stays out.
	impostor := Caller{ID: uuid.New(), Email: "bob@example.com"}
	_, err = f.service.Get(context.Background(), escrow.ID, impostor)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestEscrowService_ListByUser(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	ctx := context.Background()

	f.createEscrow(t, alice, "bob@example.com")
	f.createEscrow(t, alice, "carol@example.com")

	mine, err := f.service.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// Bob sees the escrow addressed to his email even before binding.
	theirs, err := f.service.ListByUser(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestEscrowService_Confirm(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")

	escrow := f.createEscrow(t, alice, "bob@example.com")

	got, err := f.service.Confirm(context.Background(), escrow.ID, alice)
	require.NoError(t, err)

	assert.True(t, got.SellerConfirmed)
	assert.False(t, got.BuyerConfirmed)
	assert.Equal(t, domain.EscrowActive, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestEscrowService_Confirm_Idempotent(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")

	first, err := f.service.Confirm(ctx, escrow.ID, alice)
	require.NoError(t, err)

	second, err := f.service.Confirm(ctx, escrow.ID, alice)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.True(t, second.SellerConfirmed)
	assert.False(t, second.BuyerConfirmed)
}

func TestEscrowService_Confirm_CompletesInEitherOrder(t *testing.T) {
	for name, creatorFirst := range map[string]bool{"creator first": true, "recipient first": false} {
		t.Run(name, func(t *testing.T) {
			f := newEscrowFixture(t)
			alice := f.newParty(t, "alice@example.com")
			bob := f.newParty(t, "bob@example.com")
			ctx := context.Background()

			escrow := f.createEscrow(t, alice, "bob@example.com")

			_, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
			require.NoError(t, err)
			_, err = f.service.SetWallet(ctx, escrow.ID, bob, bobWallet)
			require.NoError(t, err)

			order := []Caller{alice, bob}
			if !creatorFirst {
				order = []Caller{bob, alice}
			}

			mid, err := f.service.Confirm(ctx, escrow.ID, order[0])
			require.NoError(t, err)
			assert.Equal(t, domain.EscrowActive, mid.Status)

			done, err := f.service.Confirm(ctx, escrow.ID, order[1])
			require.NoError(t, err)
			assert.Equal(t, domain.EscrowCompleted, done.Status)
			assert.NotNil(t, done.CompletedAt)
			assert.True(t, done.BuyerConfirmed)
			assert.True(t, done.SellerConfirmed)
		})
	}
}

func TestEscrowService_Confirm_MissingWalletRejectedWhole(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")

	// Only the creator linked a wallet.
	_, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, escrow.ID, alice)
	require.NoError(t, err)

	// The completing confirmation is rejected and leaves no trace.
	_, err = f.service.Confirm(ctx, escrow.ID, bob)
	assert.ErrorIs(t, err, ErrMissingWallet)

	stored := f.escrows.escrows[escrow.ID]
	assert.False(t, stored.BuyerConfirmed)
	assert.Equal(t, domain.EscrowActive, stored.Status)

	// After the wallet arrives the same confirmation goes through.
	_, err = f.service.SetWallet(ctx, escrow.ID, bob, bobWallet)
	require.NoError(t, err)

	done, err := f.service.Confirm(ctx, escrow.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowCompleted, done.Status)
}

func TestEscrowService_Confirm_TerminalStates(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")
	_, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
	require.NoError(t, err)
	_, err = f.service.SetWallet(ctx, escrow.ID, bob, bobWallet)
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, escrow.ID, alice)
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, escrow.ID, bob)
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, escrow.ID, alice)
	assert.ErrorIs(t, err, ErrEscrowCompleted)

	disputed := f.createEscrow(t, alice, "bob@example.com")
	_, err = f.service.Dispute(ctx, disputed.ID, bob, "never delivered")
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, disputed.ID, alice)
	assert.ErrorIs(t, err, ErrEscrowDisputed)
}

func TestEscrowService_Confirm_ConcurrentUpdate(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")

	escrow := f.createEscrow(t, alice, "bob@example.com")

	contested := newEscrowService(&contestedEscrowRepo{f.escrows}, newMockMessageRepo(), f.users)

	_, err := contested.Confirm(context.Background(), escrow.ID, alice)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestEscrowService_Dispute(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")

	got, err := f.service.Dispute(ctx, escrow.ID, bob, "")
	require.NoError(t, err)

	assert.Equal(t, domain.EscrowDisputed, got.Status)
	assert.True(t, got.Disputed)
	assert.Equal(t, "No reason provided", got.DisputeReason.String)

	_, err = f.service.Dispute(ctx, escrow.ID, alice, "me too")
	assert.ErrorIs(t, err, ErrAlreadyDisputed)
}

func TestEscrowService_Dispute_CompletedEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")
	_, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
	require.NoError(t, err)
	_, err = f.service.SetWallet(ctx, escrow.ID, bob, bobWallet)
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, escrow.ID, alice)
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, escrow.ID, bob)
	require.NoError(t, err)

	_, err = f.service.Dispute(ctx, escrow.ID, bob, "changed my mind")
	assert.ErrorIs(t, err, ErrEscrowCompleted)
}

func TestEscrowService_SetWallet(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")

	_, err := f.service.SetWallet(ctx, escrow.ID, alice, "nope")
	assert.ErrorIs(t, err, ErrInvalidWallet)

	got, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
	require.NoError(t, err)
	assert.Equal(t, aliceWallet, got.CreatorWallet.String)
	assert.False(t, got.RecipientWallet.Valid)
	assert.Equal(t, domain.EscrowPending, got.Status, "a wallet write never moves state")

	got, err = f.service.SetWallet(ctx, escrow.ID, bob, bobWallet)
	require.NoError(t, err)
	assert.Equal(t, bobWallet, got.RecipientWallet.String)
	assert.Equal(t, aliceWallet, got.CreatorWallet.String)
}

func TestEscrowService_SetWallet_SelfEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "alice@example.com")

	got, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
	require.NoError(t, err)

	assert.Equal(t, aliceWallet, got.CreatorWallet.String)
	assert.Equal(t, aliceWallet, got.RecipientWallet.String)
}

func TestEscrowService_Messages(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	bob := f.newParty(t, "bob@example.com")
	mallory := f.newParty(t, "mallory@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")

	_, err := f.service.PostMessage(ctx, escrow.ID, alice, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.PostMessage(ctx, escrow.ID, mallory, "let me in")
	assert.ErrorIs(t, err, ErrNotParticipant)

	first, err := f.service.PostMessage(ctx, escrow.ID, alice, "work started")
	require.NoError(t, err)
	_, err = f.service.PostMessage(ctx, escrow.ID, bob, "looking forward to it")
	require.NoError(t, err)

	messages, err := f.service.ListMessages(ctx, escrow.ID, bob)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, "work started", messages[0].Body)

	_, err = f.service.ListMessages(ctx, escrow.ID, mallory)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

// Full walkthrough: invite by email, lazy binding, wallets, dual
// confirmation, completion.
func TestEscrowService_FullLifecycle(t *testing.T) {
	f := newEscrowFixture(t)
	alice := f.newParty(t, "alice@example.com")
	ctx := context.Background()

	escrow := f.createEscrow(t, alice, "bob@example.com")
	assert.Equal(t, domain.EscrowPending, escrow.Status)

	_, err := f.service.SetWallet(ctx, escrow.ID, alice, aliceWallet)
	require.NoError(t, err)

	mid, err := f.service.Confirm(ctx, escrow.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowActive, mid.Status)

	// Bob signs up only after being invited.
	bob := f.newParty(t, "bob@example.com")

	_, err = f.service.SetWallet(ctx, escrow.ID, bob, bobWallet)
	require.NoError(t, err)

	done, err := f.service.Confirm(ctx, escrow.ID, bob)
	require.NoError(t, err)

	assert.Equal(t, domain.EscrowCompleted, done.Status)
	require.NotNil(t, done.RecipientID)
	assert.Equal(t, bob.ID, *done.RecipientID)
	assert.NotNil(t, done.CompletedAt)
}
