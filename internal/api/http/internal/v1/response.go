package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tokenvault/backend/pkg/logger"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, code ErrorCode) {
	c.AbortWithStatusJSON(http.StatusBadRequest, getErrorStruct(code))
}

// serviceErrorResponse maps a business error to its stable code; unmapped
// errors are logged and reported as opaque internal errors, never as stack
// traces.
func serviceErrorResponse(c *gin.Context, err error) {
	for svcErr, mapped := range serviceErrors {
		if errors.Is(err, svcErr) {
			c.AbortWithStatusJSON(mapped.status, getErrorStruct(mapped.code))
			return
		}
	}

	logger.Error("unhandled service error", zap.Error(err), zap.String("path", c.FullPath()))
	c.AbortWithStatusJSON(http.StatusInternalServerError, getErrorStruct(UnknownErrorCode))
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		out := make([]ValidationError, len(verr))
		for i, ferr := range verr {
			out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
		}
		response := ValidationErrorStruct{
			ErrorCode:    ValidationErrorCode,
			ErrorMessage: ValidationErrorMessage,
		}
		response.Errors = out
		c.JSON(http.StatusBadRequest, response)
		return
	}

	errorResponse(c, ValidationErrorCode)
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %v", value)
	case "max":
		return fmt.Sprintf("Maximum length is %v", value)
	case "ethaddress":
		return "Address must be 0x followed by 40 hex characters"
	case "tokenamount":
		return "Amount must be a positive decimal string"
	case "oneof":
		return fmt.Sprintf("Value must be one of: %v", value)
	}
	return tag
}
