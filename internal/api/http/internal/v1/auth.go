package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tokenvault/backend/internal/domain"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/code", h.requestCode)
	auth.POST("/verify", h.verifyCode)
	auth.POST("/logout", h.logout)
}

type requestCodeInput struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=LOGIN EMAIL_VERIFICATION"`
}

type requestCodeResponse struct {
	Sent      bool   `json:"sent"`
	ExpiresIn string `json:"expires_in"`
}

// @Summary Request verification code
// @Tags Auth
// @Description Issues a one-time code and emails it to the address; creates the account on first contact
// @ModuleID requestCode
// @Accept  json
// @Produce  json
// @Param input body requestCodeInput true "email and purpose"
// @Success 200 {object} requestCodeResponse
// @Failure 400 {object} ValidationErrorStruct
// @Router /auth/code [post]
func (h *Handler) requestCode(c *gin.Context) {
	var input requestCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	code, err := h.services.Auth.RequestCode(c.Request.Context(), input.Email, domain.CodePurpose(input.Purpose))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	// The code itself travels by email only.
	c.JSON(http.StatusOK, requestCodeResponse{
		Sent:      true,
		ExpiresIn: code.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

type verifyCodeInput struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,min=4,max=10"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
}

type verifyCodeResponse struct {
	Token string             `json:"token"`
	User  *domain.PublicUser `json:"user"`
}

// @Summary Verify code and start session
// @Tags Auth
// @Description Exchanges a valid code for a signed session token
// @ModuleID verifyCode
// @Accept  json
// @Produce  json
// @Param input body verifyCodeInput true "email, code and optional display name"
// @Success 200 {object} verifyCodeResponse
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Router /auth/verify [post]
func (h *Handler) verifyCode(c *gin.Context) {
	var input verifyCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Auth.VerifyCode(c.Request.Context(), input.Email, input.Code, input.DisplayName)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, verifyCodeResponse{Token: result.Token, User: result.User})
}

// @Summary Logout
// @Tags Auth
// @Description Deletes the token's session; idempotent
// @ModuleID logout
// @Accept  json
// @Produce  json
// @Success 200
// @Security UserAuth
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	token, err := parseAuthHeader(c)
	if err != nil {
		// Nothing to log out of.
		c.Status(http.StatusOK)
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), token); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}
