package tracing

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
)

// Header carries the trace ID in both directions.
const Header = "X-Trace-ID"

type traceIDKey struct{}

// NewID returns a fresh trace ID.
func NewID() string {
	return uuid.NewString()
}

// WithID returns ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// FromContext returns the trace ID in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// Middleware propagates the caller's trace ID, or assigns one, and logs
// each request when it completes.
func Middleware(logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logger.Named("http")

	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = NewID()
		}
		c.Request = c.Request.WithContext(WithID(c.Request.Context(), id))
		c.Header(Header, id)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("trace_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Warn("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		log.Debug("request", fields...)
	}
}
