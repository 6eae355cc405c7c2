package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tokenvault/backend/internal/domain"
	"github.com/tokenvault/backend/internal/service"
)

func (h *Handler) initEscrowsRoutes(api *gin.RouterGroup) {
	escrows := api.Group("/escrows", h.userIdentityMiddleware)
	escrows.POST("", h.createEscrow)
	escrows.GET("", h.listEscrows)
	escrows.GET("/:id", h.getEscrow)
	escrows.POST("/:id/confirm", h.confirmEscrow)
	escrows.POST("/:id/dispute", h.disputeEscrow)
	escrows.PUT("/:id/wallet", h.setEscrowWallet)
	escrows.GET("/:id/messages", h.listEscrowMessages)
	escrows.POST("/:id/messages", h.postEscrowMessage)
}

type createEscrowInput struct {
	TokenAddress   string `json:"token_address" binding:"required,ethaddress"`
	TokenSymbol    string `json:"token_symbol" binding:"required,max=16"`
	Amount         string `json:"amount" binding:"required,tokenamount"`
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
	Description    string `json:"description" binding:"required,max=2000"`
	Terms          string `json:"terms" binding:"omitempty,max=10000"`
}

// @Summary Create escrow
// @Tags Escrows
// @Description Locks escrow terms for a recipient identified by email
// @ModuleID createEscrow
// @Accept  json
// @Produce  json
// @Param input body createEscrowInput true "escrow terms"
// @Success 201 {object} domain.Escrow
// @Failure 400 {object} ValidationErrorStruct
// @Security UserAuth
// @Router /escrows [post]
func (h *Handler) createEscrow(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		errorResponse(c, NotAuthenticatedCode)
		return
	}

	var input createEscrowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	escrow, err := h.services.Escrows.Create(c.Request.Context(), caller, service.CreateEscrowInput{
		TokenAddress:   input.TokenAddress,
		TokenSymbol:    input.TokenSymbol,
		Amount:         input.Amount,
		RecipientEmail: input.RecipientEmail,
		Description:    input.Description,
		Terms:          input.Terms,
	})
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, escrow)
}

// @Summary List escrows
// @Tags Escrows
// @Description Lists escrows the caller participates in, newest first
// @ModuleID listEscrows
// @Accept  json
// @Produce  json
// @Success 200 {array} domain.Escrow
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows [get]
func (h *Handler) listEscrows(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		errorResponse(c, NotAuthenticatedCode)
		return
	}

	escrows, err := h.services.Escrows.ListByUser(c.Request.Context(), caller)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, escrows)
}

// @Summary Get escrow
// @Tags Escrows
// @Description Returns one escrow; binds the caller as recipient on email match
// @ModuleID getEscrow
// @Accept  json
// @Produce  json
// @Param id path string true "escrow id"
// @Success 200 {object} domain.Escrow
// @Failure 403 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows/{id} [get]
func (h *Handler) getEscrow(c *gin.Context) {
	caller, escrowID, ok := h.escrowRequest(c)
	if !ok {
		return
	}

	escrow, err := h.services.Escrows.Get(c.Request.Context(), escrowID, caller)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// @Summary Confirm escrow
// @Tags Escrows
// @Description Sets the caller's confirmation flag; completes when both sides confirmed and both wallets present
// @ModuleID confirmEscrow
// @Accept  json
// @Produce  json
// @Param id path string true "escrow id"
// @Success 200 {object} domain.Escrow
// @Failure 400 {object} ErrorStruct
// @Failure 403 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows/{id}/confirm [post]
func (h *Handler) confirmEscrow(c *gin.Context) {
	caller, escrowID, ok := h.escrowRequest(c)
	if !ok {
		return
	}

	escrow, err := h.services.Escrows.Confirm(c.Request.Context(), escrowID, caller)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

type disputeEscrowInput struct {
	Reason string `json:"reason" binding:"omitempty,max=2000"`
}

// @Summary Dispute escrow
// @Tags Escrows
// @Description Opens a dispute; terminal pending external resolution
// @ModuleID disputeEscrow
// @Accept  json
// @Produce  json
// @Param id path string true "escrow id"
// @Param input body disputeEscrowInput false "dispute reason"
// @Success 200 {object} domain.Escrow
// @Failure 403 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows/{id}/dispute [post]
func (h *Handler) disputeEscrow(c *gin.Context) {
	caller, escrowID, ok := h.escrowRequest(c)
	if !ok {
		return
	}

	var input disputeEscrowInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		validationErrorResponse(c, err)
		return
	}

	escrow, err := h.services.Escrows.Dispute(c.Request.Context(), escrowID, caller, input.Reason)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

type setEscrowWalletInput struct {
	WalletAddress string `json:"wallet_address" binding:"required,ethaddress"`
}

// @Summary Set escrow wallet
// @Tags Escrows
// @Description Records the caller's settlement wallet on the escrow
// @ModuleID setEscrowWallet
// @Accept  json
// @Produce  json
// @Param id path string true "escrow id"
// @Param input body setEscrowWalletInput true "wallet address"
// @Success 200 {object} domain.Escrow
// @Failure 400 {object} ValidationErrorStruct
// @Failure 403 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows/{id}/wallet [put]
func (h *Handler) setEscrowWallet(c *gin.Context) {
	caller, escrowID, ok := h.escrowRequest(c)
	if !ok {
		return
	}

	var input setEscrowWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	escrow, err := h.services.Escrows.SetWallet(c.Request.Context(), escrowID, caller, input.WalletAddress)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// @Summary List escrow messages
// @Tags Messages
// @Description Lists messages on one escrow, oldest first
// @ModuleID listEscrowMessages
// @Accept  json
// @Produce  json
// @Param id path string true "escrow id"
// @Success 200 {array} domain.Message
// @Failure 403 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows/{id}/messages [get]
func (h *Handler) listEscrowMessages(c *gin.Context) {
	caller, escrowID, ok := h.escrowRequest(c)
	if !ok {
		return
	}

	messages, err := h.services.Escrows.ListMessages(c.Request.Context(), escrowID, caller)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	if messages == nil {
		messages = []domain.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

type postMessageInput struct {
	Body string `json:"body" binding:"required,max=5000"`
}

// @Summary Post escrow message
// @Tags Messages
// @Description Appends a message to the escrow thread
// @ModuleID postEscrowMessage
// @Accept  json
// @Produce  json
// @Param id path string true "escrow id"
// @Param input body postMessageInput true "message body"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ValidationErrorStruct
// @Failure 403 {object} ErrorStruct
// @Security UserAuth
// @Router /escrows/{id}/messages [post]
func (h *Handler) postEscrowMessage(c *gin.Context) {
	caller, escrowID, ok := h.escrowRequest(c)
	if !ok {
		return
	}

	var input postMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	message, err := h.services.Escrows.PostMessage(c.Request.Context(), escrowID, caller, input.Body)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *Handler) escrowRequest(c *gin.Context) (service.Caller, uuid.UUID, bool) {
	caller, err := getCaller(c)
	if err != nil {
		errorResponse(c, NotAuthenticatedCode)
		return service.Caller{}, uuid.Nil, false
	}

	escrowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, EscrowNotFoundCode)
		return service.Caller{}, uuid.Nil, false
	}

	return caller, escrowID, true
}
