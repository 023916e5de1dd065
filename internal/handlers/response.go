package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/services"
)

// ErrorResponse is the envelope every error reply uses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// serviceError maps a service-layer error onto an HTTP reply. Sentinel
// errors carry their own status; anything else is a 500 and gets logged.
func serviceError(c *gin.Context, logger *logrus.Logger, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrRoomFull):
		status, code = http.StatusBadRequest, "capacity_exceeded"
	case errors.Is(err, services.ErrReviewLimit):
		status, code = http.StatusBadRequest, "review_limit_reached"
	case errors.Is(err, services.ErrInvalidSignature):
		status, code = http.StatusBadRequest, "invalid_signature"
	case errors.Is(err, services.ErrInvalidTransition):
		status, code = http.StatusBadRequest, "invalid_transition"
	case errors.Is(err, services.ErrNoReviews):
		status, code = http.StatusNotFound, "no_reviews"
	case errors.Is(err, services.ErrUpstream):
		status, code = http.StatusBadGateway, "upstream_error"
	default:
		logger.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

// badRequest replies with a 400 for malformed request payloads
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
