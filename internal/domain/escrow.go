package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type EscrowStatus string

const (
	EscrowPending   EscrowStatus = "PENDING"
	EscrowActive    EscrowStatus = "ACTIVE"
	EscrowCompleted EscrowStatus = "COMPLETED"
	EscrowDisputed  EscrowStatus = "DISPUTED"
	// Reserved for administrative tooling, not reachable from the API.
	EscrowCancelled EscrowStatus = "CANCELLED"
	EscrowExpired   EscrowStatus = "EXPIRED"
)

// EscrowRole is the resolved position of a caller relative to an escrow.
// By convention the recipient is the buyer and the creator is the seller.
type EscrowRole int

const (
	RoleNone EscrowRole = iota
	RoleCreator
	RoleRecipient
)

type Escrow struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TokenAddress string    `db:"token_address" json:"token_address"`
	TokenSymbol  string    `db:"token_symbol" json:"token_symbol"`
	// Amount is a decimal string, never a float.
	Amount      string `db:"amount" json:"amount"`
	Description string `db:"description" json:"description"`
	Terms       string `db:"terms" json:"terms"`

	CreatorID     uuid.UUID      `db:"creator_id" json:"creator_id"`
	CreatorWallet sql.NullString `db:"creator_wallet" json:"creator_wallet"`

	RecipientEmail  string         `db:"recipient_email" json:"recipient_email"`
	RecipientID     *uuid.UUID     `db:"recipient_id" json:"recipient_id"`
	RecipientWallet sql.NullString `db:"recipient_wallet" json:"recipient_wallet"`

	BuyerConfirmed  bool           `db:"buyer_confirmed" json:"buyer_confirmed"`
	SellerConfirmed bool           `db:"seller_confirmed" json:"seller_confirmed"`
	Disputed        bool           `db:"disputed" json:"disputed"`
	DisputeReason   sql.NullString `db:"dispute_reason" json:"dispute_reason"`

	Status          EscrowStatus   `db:"status" json:"status"`
	TransactionHash sql.NullString `db:"transaction_hash" json:"transaction_hash"`
	CompletedAt     *time.Time     `db:"completed_at" json:"completed_at"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (e *Escrow) BothConfirmed() bool {
	return e.BuyerConfirmed && e.SellerConfirmed
}

func (e *Escrow) WalletsPresent() bool {
	return e.CreatorWallet.Valid && e.CreatorWallet.String != "" &&
		e.RecipientWallet.Valid && e.RecipientWallet.String != ""
}

// RoleOf resolves a caller against the escrow parties. The email match keeps
// an escrow actionable by an invited recipient who has not been bound yet.
func (e *Escrow) RoleOf(userID uuid.UUID, email string) EscrowRole {
	if userID == e.CreatorID {
		return RoleCreator
	}
	if e.RecipientID != nil && *e.RecipientID == userID {
		return RoleRecipient
	}
	if e.RecipientID == nil && email != "" && email == e.RecipientEmail {
		return RoleRecipient
	}
	return RoleNone
}

// DeriveStatus computes the status projection from the flags it is cached
// from. The persisted status column must always equal this.
func (e *Escrow) DeriveStatus() EscrowStatus {
	switch {
	case e.Disputed:
		return EscrowDisputed
	case e.BothConfirmed() && e.WalletsPresent():
		return EscrowCompleted
	case e.BuyerConfirmed || e.SellerConfirmed:
		return EscrowActive
	default:
		return EscrowPending
	}
}
