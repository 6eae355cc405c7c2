package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tokenvault/backend/internal/domain"
	"github.com/tokenvault/backend/internal/service"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "user"
)

// userIdentityMiddleware resolves the bearer token to the current user via a
// live session lookup and stores it for the handlers.
func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	token, err := parseAuthHeader(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, getErrorStruct(NotAuthenticatedCode))
		return
	}

	user, err := h.services.Auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		serviceErrorResponse(c, err)
		c.Abort()
		return
	}

	c.Set(userCtx, user)
}

func parseAuthHeader(c *gin.Context) (string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return "", errors.New("token is empty")
	}

	return headerParts[1], nil
}

func getUser(c *gin.Context) (*domain.User, error) {
	u, ok := c.Get(userCtx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, ok := u.(*domain.User)
	if !ok {
		return nil, errors.New("unexpected user type in context")
	}

	return user, nil
}

func getCaller(c *gin.Context) (service.Caller, error) {
	user, err := getUser(c)
	if err != nil {
		return service.Caller{}, err
	}

	return service.Caller{ID: user.ID, Email: user.Email}, nil
}
