package middleware

import (
	"log/slog"

	deliverycontext "marketmap/internal/delivery/context"
	"marketmap/internal/infra/geolocation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestContextMiddleware tags every request with an ID, a request-scoped
// logger and the caller's IP, which the geolocation lookup resolves.
type RequestContextMiddleware struct {
	logger *slog.Logger
}

// NewRequestContextMiddleware creates a new request context middleware
func NewRequestContextMiddleware(logger *slog.Logger) *RequestContextMiddleware {
	return &RequestContextMiddleware{
		logger: logger,
	}
}

// Process stores the request ID, logger and client IP on the request context
func (m *RequestContextMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(deliverycontext.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		deliverycontext.SetRequestID(c, requestID)
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		reqLogger := m.logger.With(slog.String("request_id", requestID))

		ctx := c.Request().Context()
		ctx = deliverycontext.WithRequestID(ctx, requestID)
		ctx = deliverycontext.WithLogger(ctx, reqLogger)
		ctx = geolocation.WithClientIP(ctx, c.RealIP())
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
