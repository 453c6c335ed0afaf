package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

// BindAndValidate binds the JSON body into obj and reports the first
// validation failure as a structured error response. Returns false when the
// request was rejected.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
			errorDetail = errorDetail.
				WithField(fieldErrors[0].Field()).
				WithDetails(formatValidationError(fieldErrors[0]))
		} else {
			errorDetail = errorDetail.WithDetails(err.Error())
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
