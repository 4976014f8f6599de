package geolocation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const responseReadLimit int64 = 4096

// ErrUnavailable is returned when no position could be resolved.
var ErrUnavailable = errors.New("device position unavailable")

type cachedPosition struct {
	point    orb.Point
	resolved time.Time
}

// HTTPLocator resolves positions through an IP geolocation endpoint that
// answers ip-api.com style documents: {"status":"success","lat":..,"lon":..}.
type HTTPLocator struct {
	endpoint   string
	httpClient *http.Client
	maxAge     time.Duration
	logger     *slog.Logger
	now        func() time.Time

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cachedPosition
}

// NewHTTPLocator builds a locator. endpoint may contain {ip}.
func NewHTTPLocator(endpoint string, timeout, maxAge time.Duration, logger *slog.Logger) *HTTPLocator {
	return &HTTPLocator{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		maxAge:     maxAge,
		logger:     logger,
		now:        time.Now,
		cache:      make(map[string]cachedPosition),
	}
}

type ipAPIResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Locate implements service.Locator. A position resolved less than maxAge ago
// for the same client is reused without a request.
func (l *HTTPLocator) Locate(ctx context.Context) (orb.Point, error) {
	ip := ClientIP(ctx)

	if p, ok := l.cached(ip); ok {
		return p, nil
	}

	ch := l.group.DoChan(ip, func() (any, error) {
		return l.fetch(ctx, ip)
	})

	select {
	case <-ctx.Done():
		return orb.Point{}, errors.Wrap(ctx.Err(), "locate")
	case res := <-ch:
		if res.Err != nil {
			return orb.Point{}, res.Err
		}
		p := res.Val.(orb.Point)
		l.store(ip, p)
		return p, nil
	}
}

func (l *HTTPLocator) cached(ip string) (orb.Point, bool) {
	if l.maxAge <= 0 {
		return orb.Point{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.cache[ip]
	if !ok || l.now().Sub(entry.resolved) > l.maxAge {
		return orb.Point{}, false
	}
	return entry.point, true
}

func (l *HTTPLocator) store(ip string, p orb.Point) {
	if l.maxAge <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.cache {
		if now.Sub(entry.resolved) > l.maxAge {
			delete(l.cache, key)
		}
	}
	l.cache[ip] = cachedPosition{point: p, resolved: now}
}

func (l *HTTPLocator) fetch(ctx context.Context, ip string) (orb.Point, error) {
	target := strings.ReplaceAll(l.endpoint, "{ip}", url.PathEscape(ip))
	target = strings.TrimRight(target, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "build geolocation request")
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return orb.Point{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, errors.Wrapf(ErrUnavailable, "geolocation status %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseReadLimit)).Decode(&body); err != nil {
		return orb.Point{}, errors.Wrap(ErrUnavailable, "decode geolocation response")
	}

	if body.Status != "" && body.Status != "success" {
		l.logger.DebugContext(ctx, "Geolocation lookup failed",
			slog.String("ip", ip),
			slog.String("message", body.Message),
		)
		return orb.Point{}, errors.Wrapf(ErrUnavailable, "geolocation %s: %s", body.Status, body.Message)
	}
	if body.Lat == nil || body.Lon == nil || !validCoordinate(*body.Lon, *body.Lat) {
		return orb.Point{}, errors.Wrap(ErrUnavailable, "geolocation response without coordinates")
	}

	return orb.Point{*body.Lon, *body.Lat}, nil
}

func validCoordinate(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}
