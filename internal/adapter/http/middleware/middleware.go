package middleware

import (
	"net/http"
	"time"

	"pocket-ledger/internal/core/ports"
	"pocket-ledger/pkg/apperror"
	"pocket-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderUserID scopes a request to one ledger owner.
	HeaderUserID = "X-User-ID"

	// Context keys
	CtxUserID  = "user_id"
	CtxUserKey = "user"
)

// UserScope creates a middleware that resolves the X-User-ID header to a
// registered ledger owner. Every route behind it can rely on CtxUserID
// holding a valid uuid.UUID.
func UserScope(userRepo ports.UserRepository, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderUserID)
		if raw == "" {
			response.Error(c, apperror.ErrMissingUserScope())
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.ErrMissingUserScope())
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch user")
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}
		if user == nil {
			response.Error(c, apperror.ErrMissingUserScope())
			c.Abort()
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Set(CtxUserKey, user)

		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
