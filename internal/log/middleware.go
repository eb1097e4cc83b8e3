package log

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

type contextKey string

// RequestIDKey is the gin and context key holding the request id
const RequestIDKey = "request_id"

const requestIDCtxKey contextKey = RequestIDKey

// ContextWithRequestID stores id on ctx so services can log it
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFrom returns the request id stored on ctx, or ""
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// RequestLogger logs one line per request: info below 400, warn for 4xx, error for 5xx
func RequestLogger(logger *Logger) gin.HandlerFunc {
	httpLogger := logger.WithComponent(ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := NewFields().
			WithRequestID(c.GetString(RequestIDKey)).
			WithHTTP(c.Request.Method, path, c.Request.URL.RawQuery, status, time.Since(start).Milliseconds())
		fields[FieldClientIP] = c.ClientIP()
		if len(c.Errors) > 0 {
			fields[FieldError] = c.Errors.String()
		}
		httpLogger.Log(c.Request.Context(), level, "HTTP request completed", fields.ToSlice()...)
	}
}
