package domain

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func wallet(addr string) sql.NullString {
	return sql.NullString{String: addr, Valid: true}
}

func TestEscrow_DeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		escrow Escrow
		want   EscrowStatus
	}{
		{"fresh", Escrow{}, EscrowPending},
		{"one confirmation", Escrow{SellerConfirmed: true}, EscrowActive},
		{"both confirmed, no wallets", Escrow{BuyerConfirmed: true, SellerConfirmed: true}, EscrowActive},
		{
			"both confirmed with wallets",
			Escrow{
				BuyerConfirmed:  true,
				SellerConfirmed: true,
				CreatorWallet:   wallet("0x1"),
				RecipientWallet: wallet("0x2"),
			},
			EscrowCompleted,
		},
		{"disputed wins over everything", Escrow{
			BuyerConfirmed:  true,
			SellerConfirmed: true,
			Disputed:        true,
			CreatorWallet:   wallet("0x1"),
			RecipientWallet: wallet("0x2"),
		}, EscrowDisputed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.escrow.DeriveStatus())
		})
	}
}

func TestEscrow_RoleOf(t *testing.T) {
	creatorID := uuid.New()
	recipientID := uuid.New()
	strangerID := uuid.New()

	unbound := Escrow{CreatorID: creatorID, RecipientEmail: "bob@example.com"}
	bound := Escrow{CreatorID: creatorID, RecipientEmail: "bob@example.com", RecipientID: &recipientID}

	assert.Equal(t, RoleCreator, unbound.RoleOf(creatorID, "alice@example.com"))
	assert.Equal(t, RoleRecipient, unbound.RoleOf(strangerID, "bob@example.com"))
	assert.Equal(t, RoleNone, unbound.RoleOf(strangerID, "mallory@example.com"))

	assert.Equal(t, RoleRecipient, bound.RoleOf(recipientID, "bob@example.com"))
	// Once bound, an email match alone no longer grants access.
	assert.Equal(t, RoleNone, bound.RoleOf(strangerID, "bob@example.com"))
}
