package geolocation

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marketmap/config"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPLocator_Locate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/json/203.0.113.7":
			_, _ = w.Write([]byte(`{"status":"success","lat":19.04,"lon":-98.2}`))
		case "/json/10.0.0.1":
			_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
		case "/json/198.51.100.1":
			_, _ = w.Write([]byte(`{"status":"success","lat":123,"lon":0}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	l := NewHTTPLocator(srv.URL+"/json/{ip}", time.Second, time.Minute, discardLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	p, err := l.Locate(ctx)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-98.2, 19.04}, p)

	_, err = l.Locate(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "second lookup is served from cache")

	now = now.Add(2 * time.Minute)
	_, err = l.Locate(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "expired entry is fetched again")

	for _, ip := range []string{"10.0.0.1", "198.51.100.1", "192.0.2.9"} {
		_, err := l.Locate(WithClientIP(context.Background(), ip))
		assert.True(t, errors.Is(err, ErrUnavailable), ip)
	}
}

func TestHTTPLocator_RespectsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	l := NewHTTPLocator(srv.URL, 5*time.Second, 0, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Locate(ctx)
	assert.Error(t, err)
}

func TestNewLocator(t *testing.T) {
	newConfig := func(provider, endpoint string) *config.Config {
		cfg := &config.Config{
			Map:         &config.MapConfig{},
			Geolocation: &config.GeolocationConfig{Provider: provider, Endpoint: endpoint, Timeout: time.Second},
		}
		cfg.Map.DefaultCenter.Lat, cfg.Map.DefaultCenter.Lng = 19.039, -98.339
		return cfg
	}

	tests := []struct {
		name     string
		provider string
		endpoint string
		wantType any
		wantErr  bool
	}{
		{"static", "static", "", StaticLocator{}, false},
		{"http", "http", "http://ip-api.com/json/{ip}", &HTTPLocator{}, false},
		{"http without endpoint", "http", "", nil, true},
		{"unknown", "gps", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewLocator(LocatorParams{Config: newConfig(tt.provider, tt.endpoint), Logger: discardLogger()})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, loc)
		})
	}

	loc, err := NewLocator(LocatorParams{Config: newConfig("static", ""), Logger: discardLogger()})
	require.NoError(t, err)
	p, err := loc.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-98.339, 19.039}, p)
}
