package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketmap/config"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/infra/metrics"
	mockService "marketmap/internal/mocks/service"
	"marketmap/internal/usecase"
	"marketmap/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func pushBody(data string) string {
	return fmt.Sprintf(`{"message":{"data":%q,"messageId":"m-1","attributes":{"request_id":"req-1"}},"subscription":"projects/p/subscriptions/business-updates"}`,
		base64.StdEncoding.EncodeToString([]byte(data)))
}

func newTestPushHandler(t *testing.T, directory *mockService.MockBusinessDirectory, token string) (*echo.Echo, usecase.MapUsecase) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Map:    &config.MapConfig{DefaultZoom: 13, SessionTTL: time.Minute, MaxSessions: 10},
		Worker: &config.WorkerConfig{Token: token},
	}
	cfg.Map.DefaultCenter.Lat, cfg.Map.DefaultCenter.Lng = 19.04, -98.34

	lc := fxtest.NewLifecycle(t)
	mapUC := impl.NewMapService(impl.MapServiceParams{
		Lc:        lc,
		Config:    cfg,
		Directory: directory,
		Logger:    logger,
	})
	lc.RequireStart()
	t.Cleanup(lc.RequireStop)

	h := NewPushHandler(PushHandlerParams{
		Config:  cfg,
		Logger:  logger,
		MapUC:   mapUC,
		Metrics: metrics.New(prometheus.NewRegistry()),
	})

	e := echo.New()
	e.POST("/push", h.HandlePush)

	return e, mapUC
}

func post(e *echo.Echo, body, authorization string) int {
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec.Code
}

func TestPushHandler_ReloadsSessions(t *testing.T) {
	directory := mockService.NewMockBusinessDirectory(t)
	directory.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return([]entity.Business{
		{ID: "a", Name: "Tacos", Location: entity.NewLocation(-98.34, 19.04)},
	}, nil).Once()
	directory.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return([]entity.Business{
		{ID: "a", Name: "Tacos", Location: entity.NewLocation(-98.34, 19.04)},
		{ID: "b", Name: "Cemitas", Location: entity.NewLocation(-98.35, 19.05)},
	}, nil).Once()

	e, mapUC := newTestPushHandler(t, directory, "")
	ctx := context.Background()

	snap, err := mapUC.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)
	require.Equal(t, 1, snap.Points)

	code := post(e, pushBody(`{"business_id":"b","type":"food","event":"created"}`), "")
	assert.Equal(t, http.StatusOK, code)

	snap, err = mapUC.GetSession(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Points)

	// No session shows stores, so the backend is not asked
	code = post(e, pushBody(`{"business_id":"s","type":"store","event":"updated"}`), "")
	assert.Equal(t, http.StatusOK, code)
}

func TestPushHandler_BackendFailureIsRetryable(t *testing.T) {
	directory := mockService.NewMockBusinessDirectory(t)
	directory.EXPECT().ListByType(mock.Anything, entity.BusinessTypeStore).Return(nil, nil).Once()
	directory.EXPECT().ListByType(mock.Anything, entity.BusinessTypeStore).Return(nil, domainerrors.ErrBackendUnavailable).Once()

	e, mapUC := newTestPushHandler(t, directory, "")
	_, err := mapUC.CreateSession(context.Background(), &usecase.CreateSessionInput{Type: entity.BusinessTypeStore})
	require.NoError(t, err)

	code := post(e, pushBody(`{"business_id":"s","type":"store","event":"updated"}`), "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestPushHandler_RejectsBadMessages(t *testing.T) {
	e, _ := newTestPushHandler(t, mockService.NewMockBusinessDirectory(t), "")

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"message":`},
		{name: "data not base64", body: `{"message":{"data":"***"}}`},
		{name: "event not json", body: pushBody(`business b changed`)},
		{name: "unknown type", body: pushBody(`{"business_id":"b","type":"pharmacy"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(e, tt.body, ""))
		})
	}
}

func TestPushHandler_Token(t *testing.T) {
	e, _ := newTestPushHandler(t, mockService.NewMockBusinessDirectory(t), "s3cret")
	body := pushBody(`{"business_id":"b","type":"food","event":"updated"}`)

	assert.Equal(t, http.StatusUnauthorized, post(e, body, ""))
	assert.Equal(t, http.StatusUnauthorized, post(e, body, "Bearer wrong"))
	assert.Equal(t, http.StatusOK, post(e, body, "Bearer s3cret"))
}
