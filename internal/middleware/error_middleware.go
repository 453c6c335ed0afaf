package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to HTTP responses
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrChatNotFound,
		apperrors.ErrEventNotFound,
		apperrors.ErrAnnouncementNotFound):
		c.JSON(http.StatusNotFound, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error()),
		})
	case errors.Is(err, apperrors.ErrPermissionDenied) || errors.Is(err, apperrors.ErrNotChatParticipant):
		c.JSON(http.StatusForbidden, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied"),
		})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials"),
		})
	case errors.Is(err, apperrors.ErrProviderRejected):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeProviderRejected, "Identity provider rejected token"),
		})
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"),
		})
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenNotFound, apperrors.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"),
		})
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrInvalidPassword, apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error()),
		})
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists"),
		})
	case errors.Is(err, apperrors.ErrAlreadyJoined) || errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error()),
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}
