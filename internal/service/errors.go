package service

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidCode    = errors.New("invalid or expired verification code")
	ErrInvalidPurpose = errors.New("invalid code purpose")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrWalletTaken    = errors.New("wallet address already linked to another account")
	ErrInvalidWallet  = errors.New("invalid wallet address")

	ErrValidation       = errors.New("missing or malformed field")
	ErrEscrowNotFound   = errors.New("escrow not found")
	ErrNotParticipant   = errors.New("caller is not a party to this escrow")
	ErrEscrowCompleted  = errors.New("escrow already completed")
	ErrEscrowDisputed   = errors.New("escrow is disputed")
	ErrAlreadyDisputed  = errors.New("escrow already disputed")
	ErrMissingWallet    = errors.New("both parties confirmed but a wallet is missing")
	ErrConcurrentUpdate = errors.New("escrow changed concurrently, retry")
)
