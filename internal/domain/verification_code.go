package domain

import (
	"time"

	"github.com/google/uuid"
)

type CodePurpose string

const (
	PurposeLogin             CodePurpose = "LOGIN"
	PurposeEmailVerification CodePurpose = "EMAIL_VERIFICATION"
)

func (p CodePurpose) Valid() bool {
	return p == PurposeLogin || p == PurposeEmailVerification
}

// VerificationCode is a short-lived single-use secret. At most one unused,
// unexpired code per (user, purpose) is active: issuing a new one invalidates
// the rest.
type VerificationCode struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	UserID    uuid.UUID   `db:"user_id" json:"user_id"`
	Code      string      `db:"code" json:"code"`
	Purpose   CodePurpose `db:"purpose" json:"purpose"`
	Used      bool        `db:"used" json:"used"`
	ExpiresAt time.Time   `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
