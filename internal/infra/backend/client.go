// Package backend is the client of the marketplace REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketmap/config"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultTimeout                = 10 * time.Second
	defaultMaxResponseBytes int64 = 10 << 20
	errorBodyReadLimit      int64 = 1024
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client calls /api/businesses and /api/coupons.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	logger           *slog.Logger
	maxResponseBytes int64
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxResponseBytes caps the size of a successful response body.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	c := &Client{
		baseURL:          trimmed,
		httpClient:       &http.Client{Timeout: defaultTimeout},
		logger:           slog.Default(),
		maxResponseBytes: defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// Params defines the dependencies of the fx constructor
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Result exposes the client under every port it implements
type Result struct {
	fx.Out

	Client     *Client
	Businesses service.BusinessDirectory
	Coupons    service.CouponDirectory
}

// New is the fx constructor.
func New(params Params) (Result, error) {
	c, err := NewClient(params.Config.Backend.BaseURL,
		WithHTTPClient(&http.Client{Timeout: params.Config.Backend.Timeout}),
		WithLogger(params.Logger),
		WithMaxResponseBytes(params.Config.Backend.MaxResponseBytes),
	)
	if err != nil {
		return Result{}, err
	}

	return Result{Client: c, Businesses: c, Coupons: c}, nil
}

// ListByType fetches GET /api/businesses/type/{type}.
func (c *Client) ListByType(ctx context.Context, businessType entity.BusinessType) ([]entity.Business, error) {
	var businesses []entity.Business
	if err := c.get(ctx, "/api/businesses/type/"+url.PathEscape(businessType.String()), &businesses); err != nil {
		return nil, errors.WithMessagef(err, "list %s businesses", businessType)
	}

	return businesses, nil
}

// Get fetches GET /api/businesses/{id}.
func (c *Client) Get(ctx context.Context, id string) (*entity.Business, error) {
	var business entity.Business
	if err := c.get(ctx, "/api/businesses/"+url.PathEscape(id), &business); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domainerrors.ErrBusinessNotFound.WithDetails(id)
		}
		return nil, errors.WithMessagef(err, "get business %s", id)
	}

	return &business, nil
}

// FindCoupon fetches GET /api/coupons/{code}.
func (c *Client) FindCoupon(ctx context.Context, code string) (*entity.Coupon, error) {
	var coupon entity.Coupon
	if err := c.get(ctx, "/api/coupons/"+url.PathEscape(code), &coupon); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domainerrors.ErrCouponInvalid.WithDetails(code)
		}
		return nil, errors.WithMessagef(err, "find coupon %s", code)
	}

	return &coupon, nil
}

var errNotFound = errors.New("resource not found")

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Backend request failed",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return domainerrors.ErrBackendUnavailable.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		c.logger.WarnContext(ctx, "Backend returned server error",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return domainerrors.ErrBackendUnavailable.WithDetails(resp.Status)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return errors.Errorf("backend %s: %d %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}
	if int64(len(body)) > c.maxResponseBytes {
		return errors.Errorf("backend %s: response body exceeds %d bytes", path, c.maxResponseBytes)
	}

	return decodePayload(body, dst)
}

// decodePayload accepts either the bare payload or one wrapped in a
// {"data": ...} or {"businesses": ...} envelope.
func decodePayload(body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return errors.Wrap(err, "decode response")
		}
		for _, key := range []string{"data", "businesses", "business", "coupon"} {
			if inner, ok := envelope[key]; ok && len(inner) > 0 && string(inner) != "null" {
				trimmed = inner
				break
			}
		}
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		return errors.Wrap(err, "decode response")
	}

	return nil
}
