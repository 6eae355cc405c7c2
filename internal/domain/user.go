package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Email         string         `db:"email" json:"email"`
	DisplayName   sql.NullString `db:"display_name" json:"display_name"`
	WalletAddress sql.NullString `db:"wallet_address" json:"wallet_address"`
	Verified      bool           `db:"verified" json:"verified"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// PublicUser is the projection returned to API callers. Internal columns
// never leave the service layer.
type PublicUser struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	Verified      bool      `json:"verified"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName.String,
		WalletAddress: u.WalletAddress.String,
		Verified:      u.Verified,
	}
}
