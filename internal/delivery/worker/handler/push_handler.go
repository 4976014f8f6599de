// Package handler contains the worker's push endpoints.
package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"marketmap/config"
	deliverycontext "marketmap/internal/delivery/context"
	"marketmap/internal/domain/service"
	"marketmap/internal/infra/metrics"
	"marketmap/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func newRetryableError(err error) error {
	return &retryableError{err: err}
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler reloads map sessions when the backend reports business changes
type PushHandler struct {
	token   string
	logger  *slog.Logger
	mapUC   usecase.MapUsecase
	metrics *metrics.Metrics
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	MapUC   usecase.MapUsecase
	Metrics *metrics.Metrics `optional:"true"`
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	var token string
	if params.Config.Worker != nil {
		token = params.Config.Worker.Token
	}

	return &PushHandler{
		token:   token,
		logger:  params.Logger,
		mapUC:   params.MapUC,
		metrics: params.Metrics,
	}
}

// HandlePush handles incoming Pub/Sub push messages. Malformed messages are
// answered with 400 and a failed reload with 503 so the broker retries.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.token != "" && !validBearer(c.Request(), h.token) {
		h.logger.Warn("[Worker] Invalid push token")

		return c.NoContent(http.StatusUnauthorized)
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.BusinessUpdateEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse business update event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}
	if !event.Type.IsValid() {
		h.logger.Error("[Worker] Unknown business type in update event",
			slog.String("type", event.Type.String()),
			slog.String("message_id", pushMsg.Message.MessageID),
		)

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	h.metrics.PushEvent(event.Event)
	reqLogger.Info("[Worker] Processing business update",
		slog.String("business_id", event.BusinessID),
		slog.String("type", event.Type.String()),
		slog.String("event", event.Event),
	)

	sessions, err := h.processEvent(ctx, &event)
	if err != nil {
		reqLogger.Error("[Worker] Failed to process business update",
			slog.String("business_id", event.BusinessID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Business update processed",
		slog.String("business_id", event.BusinessID),
		slog.Int("sessions", sessions),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID prefers message attributes, then the event, then the
// request header, and generates one as a last resort
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.BusinessUpdateEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}
	if event.RequestID != "" {
		return event.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

func (h *PushHandler) processEvent(ctx context.Context, event *service.BusinessUpdateEvent) (int, error) {
	sessions, err := h.mapUC.RefreshType(ctx, event.Type, event.BusinessID)
	if err != nil {
		return 0, newRetryableError(errors.WithStack(err))
	}

	return sessions, nil
}

func validBearer(req *http.Request, token string) bool {
	const bearerPrefix = "Bearer "

	header := req.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}

	got := strings.TrimPrefix(header, bearerPrefix)

	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}
