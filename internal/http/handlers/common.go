package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"railway-backend/internal/domain"
	"railway-backend/internal/http/middleware"
)

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

// currentUserID returns the authenticated caller or responds 401.
func currentUserID(c *gin.Context) (int64, bool) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok || rc.UserID <= 0 {
		RespondDomainError(c, domain.UnauthorizedError{Msg: "user not authenticated"})
		return 0, false
	}
	return int64(rc.UserID), true
}
