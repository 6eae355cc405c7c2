package v1

import (
	"net/http"

	"github.com/tokenvault/backend/internal/service"
)

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	NotAuthenticatedCode    = 1000
	NotAuthenticatedMessage = "authentication required"
	UserNotFoundCode        = 1001
	UserNotFoundMessage     = "user not found"
	InvalidCodeCode         = 1002
	InvalidCodeMessage      = "invalid or expired verification code"
	InvalidPurposeCode      = 1003
	InvalidPurposeMessage   = "invalid code purpose"
	InvalidTokenCode        = 1004
	InvalidTokenMessage     = "invalid token"
	InvalidSessionCode      = 1005
	InvalidSessionMessage   = "invalid or expired session"
	WalletTakenCode         = 1006
	WalletTakenMessage      = "wallet address already linked to another account"
	InvalidWalletCode       = 1007
	InvalidWalletMessage    = "invalid wallet address"

	EscrowNotFoundCode         = 2001
	EscrowNotFoundMessage      = "escrow not found"
	NotParticipantCode         = 2002
	NotParticipantMessage      = "caller is not a party to this escrow"
	EscrowCompletedCode        = 2003
	EscrowCompletedMessage     = "escrow already completed"
	EscrowDisputedCode         = 2004
	EscrowDisputedMessage      = "escrow is disputed"
	EscrowAlreadyDisputedCode  = 2005
	EscrowAlreadyDisputedMsg   = "escrow already disputed"
	EscrowMissingWalletCode    = 2006
	EscrowMissingWalletMessage = "both parties confirmed but a wallet is missing"
	EscrowConflictCode         = 2007
	EscrowConflictMessage      = "escrow changed concurrently, retry"

	ValidationErrorCode    = 6000
	ValidationErrorMessage = "validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
}

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

var errorStructs = map[ErrorCode]ErrorStruct{
	NotAuthenticatedCode:      {NotAuthenticatedCode, NotAuthenticatedMessage},
	UserNotFoundCode:          {UserNotFoundCode, UserNotFoundMessage},
	InvalidCodeCode:           {InvalidCodeCode, InvalidCodeMessage},
	InvalidPurposeCode:        {InvalidPurposeCode, InvalidPurposeMessage},
	InvalidTokenCode:          {InvalidTokenCode, InvalidTokenMessage},
	InvalidSessionCode:        {InvalidSessionCode, InvalidSessionMessage},
	WalletTakenCode:           {WalletTakenCode, WalletTakenMessage},
	InvalidWalletCode:         {InvalidWalletCode, InvalidWalletMessage},
	EscrowNotFoundCode:        {EscrowNotFoundCode, EscrowNotFoundMessage},
	NotParticipantCode:        {NotParticipantCode, NotParticipantMessage},
	EscrowCompletedCode:       {EscrowCompletedCode, EscrowCompletedMessage},
	EscrowDisputedCode:        {EscrowDisputedCode, EscrowDisputedMessage},
	EscrowAlreadyDisputedCode: {EscrowAlreadyDisputedCode, EscrowAlreadyDisputedMsg},
	EscrowMissingWalletCode:   {EscrowMissingWalletCode, EscrowMissingWalletMessage},
	EscrowConflictCode:        {EscrowConflictCode, EscrowConflictMessage},
	ValidationErrorCode:       {ValidationErrorCode, ValidationErrorMessage},
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	if es, ok := errorStructs[code]; ok {
		return &es
	}
	return &ErrorStruct{ErrorCode: UnknownErrorCode, ErrorMessage: UnknownErrorMessage}
}

type mappedError struct {
	status int
	code   ErrorCode
}

// serviceErrors maps each business error to a stable machine-readable code
// and an HTTP status. Anything unmapped is an internal error and stays
// opaque to the caller.
var serviceErrors = map[error]mappedError{
	service.ErrUserNotFound:     {http.StatusNotFound, UserNotFoundCode},
	service.ErrInvalidCode:      {http.StatusBadRequest, InvalidCodeCode},
	service.ErrInvalidPurpose:   {http.StatusBadRequest, InvalidPurposeCode},
	service.ErrInvalidToken:     {http.StatusUnauthorized, InvalidTokenCode},
	service.ErrInvalidSession:   {http.StatusUnauthorized, InvalidSessionCode},
	service.ErrWalletTaken:      {http.StatusConflict, WalletTakenCode},
	service.ErrInvalidWallet:    {http.StatusBadRequest, InvalidWalletCode},
	service.ErrValidation:       {http.StatusBadRequest, ValidationErrorCode},
	service.ErrEscrowNotFound:   {http.StatusNotFound, EscrowNotFoundCode},
	service.ErrNotParticipant:   {http.StatusForbidden, NotParticipantCode},
	service.ErrEscrowCompleted:  {http.StatusConflict, EscrowCompletedCode},
	service.ErrEscrowDisputed:   {http.StatusConflict, EscrowDisputedCode},
	service.ErrAlreadyDisputed:  {http.StatusConflict, EscrowAlreadyDisputedCode},
	service.ErrMissingWallet:    {http.StatusBadRequest, EscrowMissingWalletCode},
	service.ErrConcurrentUpdate: {http.StatusConflict, EscrowConflictCode},
}
