package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func jsonBody(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)
}

func TestClient_ListByType(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bare array",
			body: `[{"_id":"b1","name":"Tacos","location":{"type":"Point","coordinates":[-98.2,19.0]}},{"_id":"b2","name":"Sin mapa","location":null}]`,
		},
		{
			name: "data envelope",
			body: `{"success":true,"data":[{"id":"b1","name":"Tacos","location":{"type":"Point","coordinates":[-98.2,19.0]}},{"id":"b2","name":"Sin mapa"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, map[string]func(http.ResponseWriter){
				"/api/businesses/type/food": jsonBody(http.StatusOK, tt.body),
			})

			got, err := c.ListByType(context.Background(), entity.BusinessTypeFood)

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "b1", got[0].ID)
			lon, lat, ok := got[0].Location.LonLat()
			assert.True(t, ok)
			assert.Equal(t, -98.2, lon)
			assert.Equal(t, 19.0, lat)
			_, _, ok = got[1].Location.LonLat()
			assert.False(t, ok)
		})
	}
}

func TestClient_Errors(t *testing.T) {
	c := newTestServer(t, map[string]func(http.ResponseWriter){
		"/api/businesses/type/store": jsonBody(http.StatusBadGateway, `upstream`),
		"/api/businesses/type/food":  jsonBody(http.StatusOK, `{not json`),
		"/api/coupons/SAVE10":        jsonBody(http.StatusOK, `{"coupon":{"code":"SAVE10","type":"percent","value":10,"minOrder":"100","active":true}}`),
	})
	ctx := context.Background()

	_, err := c.ListByType(ctx, entity.BusinessTypeStore)
	assert.True(t, errors.Is(err, domainerrors.ErrBackendUnavailable))

	_, err = c.ListByType(ctx, entity.BusinessTypeFood)
	assert.Error(t, err)

	_, err = c.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domainerrors.ErrBusinessNotFound))

	_, err = c.FindCoupon(ctx, "NOPE")
	assert.True(t, errors.Is(err, domainerrors.ErrCouponInvalid))

	coupon, err := c.FindCoupon(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, entity.CouponPercent, coupon.Kind)
	assert.Equal(t, "100", coupon.MinOrder.String())
}

func TestClient_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "b1")
	assert.True(t, errors.Is(err, domainerrors.ErrBackendUnavailable))
}

func TestClient_ResponseSizeLimit(t *testing.T) {
	body := `[{"id":"b1","name":"Tacos","location":{"type":"Point","coordinates":[-98.2,19.0]}}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonBody(http.StatusOK, body)(w)
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "within limit", limit: int64(len(body))},
		{name: "over limit", limit: int64(len(body)) - 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithMaxResponseBytes(tt.limit))
			require.NoError(t, err)

			got, err := c.ListByType(context.Background(), entity.BusinessTypeFood)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "exceeds")
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}
