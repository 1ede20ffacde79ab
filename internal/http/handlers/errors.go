package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"railway-backend/internal/domain"
	"railway-backend/internal/http/middleware"
	"railway-backend/internal/utils"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsOverflow(err):
		respondError(c, http.StatusUnprocessableEntity, "seat_overflow", err.Error(), nil)
	case domain.IsCapacityRace(err):
		c.Header("Retry-After", "1")
		respondError(c, http.StatusServiceUnavailable, "capacity_race", err.Error(), nil)
	case domain.IsPersistence(err):
		utils.LogError(middleware.GetRequestID(c), "http", "persistence", err)
		respondError(c, http.StatusInternalServerError, "persistence_error", "storage unavailable", nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", "internal", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
