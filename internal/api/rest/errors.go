package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-registry/internal/domain"
	"github.com/feral-file/ff-registry/internal/logger"
)

// errorResponse wraps an APIError the way every error body is shaped
type errorResponse struct {
	Error *apierrors.APIError `json:"error"`
}

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errorResponse{apierrors.NewBadRequestError(message, details...)})
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, errorResponse{apierrors.NewNotFoundError(message, details...)})
}

// respondForbidden responds with a forbidden error
func respondForbidden(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusForbidden, errorResponse{apierrors.NewForbiddenError(message, details...)})
}

// respondUnauthorized responds with an unauthorized error
func respondUnauthorized(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusUnauthorized, errorResponse{apierrors.NewUnauthorizedError(message, details...)})
}

// respondValidationError responds with the validation error returned by a dto
func respondValidationError(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadRequest, errorResponse{apiErr})
		return
	}
	c.JSON(http.StatusBadRequest, errorResponse{apierrors.NewValidationError(err.Error())})
}

// respondDomainError maps a registry or authenticator error to its status code.
// Server-side failures are logged; their details never reach the client.
func respondDomainError(c *gin.Context, err error, message string) {
	status, apiErr := apierrors.FromDomainError(err, message)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	} else if errors.Is(err, domain.ErrNotAuthorized) {
		logger.InfoCtx(c.Request.Context(), "Ownership proof rejected",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.JSON(status, errorResponse{apiErr})
}
