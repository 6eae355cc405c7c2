package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.userIdentityMiddleware)
	users.GET("/me", h.me)
	users.PUT("/wallet", h.linkWallet)
}

// @Summary Current user
// @Tags Users
// @Description Returns the authenticated user's public profile
// @ModuleID me
// @Accept  json
// @Produce  json
// @Success 200 {object} domain.PublicUser
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [get]
func (h *Handler) me(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		errorResponse(c, NotAuthenticatedCode)
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

type linkWalletInput struct {
	WalletAddress string `json:"wallet_address" binding:"required,ethaddress"`
}

// @Summary Link wallet
// @Tags Users
// @Description Overwrites the user's wallet address
// @ModuleID linkWallet
// @Accept  json
// @Produce  json
// @Param input body linkWalletInput true "wallet address"
// @Success 200 {object} domain.PublicUser
// @Failure 400 {object} ValidationErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /users/wallet [put]
func (h *Handler) linkWallet(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		errorResponse(c, NotAuthenticatedCode)
		return
	}

	var input linkWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	updated, err := h.services.Auth.LinkWallet(c.Request.Context(), user.ID, input.WalletAddress)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
