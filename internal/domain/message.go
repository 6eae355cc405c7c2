package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an append-only note on an escrow. Listed ascending by creation
// time; never edited or deleted.
type Message struct {
	ID       uuid.UUID `db:"id" json:"id"`
	EscrowID uuid.UUID `db:"escrow_id" json:"escrow_id"`
	SenderID uuid.UUID `db:"sender_id" json:"sender_id"`
	Body     string    `db:"body" json:"body"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
