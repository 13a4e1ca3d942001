package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"auth-service/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

func corsMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id":  id,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Info("http request")
	}
}

// errorHandler renders errors handlers attached with c.Error when nothing was written.
func errorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, msg := classifyError(err)

		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"status":     status,
		})
		if status >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
			sentry.CaptureException(err)
		} else {
			entry.WithError(err).Warn("request rejected")
		}

		c.JSON(status, gin.H{"errors": []gin.H{{
			"type":     "error",
			"msg":      msg,
			"path":     "",
			"location": "",
		}}})
	}
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusBadRequest, "Email already exists!"
	case errors.Is(err, service.ErrInvalidUserInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
