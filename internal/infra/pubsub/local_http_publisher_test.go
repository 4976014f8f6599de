package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketmap/config"
	"marketmap/internal/domain/entity"
	"marketmap/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalHTTPPublisher_PublishBusinessUpdate(t *testing.T) {
	var (
		got     PushMessage
		auth    string
		request string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		request = r.Header.Get("X-Request-Id")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, "secret", discardLogger())
	event := &service.BusinessUpdateEvent{
		BusinessID: "b-1",
		Type:       entity.BusinessTypeFood,
		Event:      "opened",
		RequestID:  "req-9",
	}

	require.NoError(t, publisher.PublishBusinessUpdate(context.Background(), event))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "req-9", request)
	assert.Equal(t, localSubscription, got.Subscription)
	assert.NotEmpty(t, got.Message.MessageID)
	assert.Equal(t, map[string]string{
		"business_id": "b-1",
		"type":        "food",
		"request_id":  "req-9",
	}, got.Message.Attributes)

	data, err := base64.StdEncoding.DecodeString(got.Message.Data)
	require.NoError(t, err)
	var decoded service.BusinessUpdateEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *event, decoded)
}

func TestLocalHTTPPublisher_WorkerRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, "", discardLogger())
	err := publisher.PublishBusinessUpdate(context.Background(), &service.BusinessUpdateEvent{
		BusinessID: "b-1",
		Type:       entity.BusinessTypeStore,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewEventPublisher(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.PubSubConfig
		wantErr string
	}{
		{name: "not configured", cfg: nil},
		{name: "local", cfg: &config.PubSubConfig{Provider: "local", LocalEndpoint: "http://localhost:8081/push"}},
		{name: "local without endpoint", cfg: &config.PubSubConfig{Provider: "local"}, wantErr: "local endpoint is required"},
		{name: "google without project", cfg: &config.PubSubConfig{Provider: "google", TopicID: "t"}, wantErr: "project ID is required"},
		{name: "google without topic", cfg: &config.PubSubConfig{Provider: "google", ProjectID: "p"}, wantErr: "topic ID is required"},
		{name: "unknown", cfg: &config.PubSubConfig{Provider: "kafka"}, wantErr: "unknown pubsub provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			publisher, err := NewEventPublisher(PublisherParams{
				Lc:     lc,
				Ctx:    context.Background(),
				Config: &config.Config{PubSub: tt.cfg},
				Logger: discardLogger(),
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, publisher)
			lc.RequireStart().RequireStop()
		})
	}
}

func TestNewEventPublisher_LocalSendsWorkerToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	lc := fxtest.NewLifecycle(t)
	publisher, err := NewEventPublisher(PublisherParams{
		Lc:  lc,
		Ctx: context.Background(),
		Config: &config.Config{
			PubSub: &config.PubSubConfig{Provider: "local", LocalEndpoint: server.URL},
			Worker: &config.WorkerConfig{Token: "push-secret"},
		},
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	lc.RequireStart()
	defer lc.RequireStop()

	require.NoError(t, publisher.PublishBusinessUpdate(context.Background(), &service.BusinessUpdateEvent{
		BusinessID: "b-2",
		Type:       entity.BusinessTypeShipping,
	}))
	assert.Equal(t, "Bearer push-secret", auth)
}
