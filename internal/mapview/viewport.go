package mapview

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/service"

	"github.com/paulmach/orb"
)

const tileSize = 256

// ViewportOptions configures a Viewport. DefaultCenter is a lon/lat point.
type ViewportOptions struct {
	Width         int
	Height        int
	Debounce      time.Duration
	ZoomStep      int
	MinZoom       int
	MaxZoom       int
	RecenterZoom  int
	DefaultCenter orb.Point
	DefaultZoom   int
	LocateTimeout time.Duration
}

// DefaultViewportOptions returns the stock viewport configuration.
func DefaultViewportOptions() ViewportOptions {
	return ViewportOptions{
		Width:         1024,
		Height:        768,
		Debounce:      150 * time.Millisecond,
		ZoomStep:      2,
		MinZoom:       0,
		MaxZoom:       20,
		RecenterZoom:  15,
		DefaultCenter: orb.Point{-98.339, 19.039},
		DefaultZoom:   13,
		LocateTimeout: 10 * time.Second,
	}
}

// ViewState is the visible map area.
type ViewState struct {
	Bounds orb.Bound `json:"bounds"`
	Center orb.Point `json:"center"`
	Zoom   int       `json:"zoom"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}

// Viewport owns the map bounds and zoom. Every settled change is reported to
// the listener exactly once. User moves are debounced; programmatic changes
// apply immediately and discard a pending move.
type Viewport struct {
	opts     ViewportOptions
	locator  service.Locator
	logger   *slog.Logger
	listener func(ViewState)

	mu      sync.Mutex
	state   ViewState
	pending *ViewState
	timer   *time.Timer
	gen     uint64
	user    *orb.Point
}

// NewViewport creates a viewport centered on DefaultCenter at DefaultZoom.
// listener may be nil.
func NewViewport(opts ViewportOptions, locator service.Locator, logger *slog.Logger, listener func(ViewState)) *Viewport {
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = 2
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 20
	}
	if opts.LocateTimeout <= 0 {
		opts.LocateTimeout = 10 * time.Second
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultViewportOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if logger == nil {
		logger = slog.Default()
	}

	v := &Viewport{
		opts:     opts,
		locator:  locator,
		logger:   logger,
		listener: listener,
	}
	v.state = v.stateAt(opts.DefaultCenter, v.clampZoom(opts.DefaultZoom))

	return v
}

// State returns the current settled state.
func (v *Viewport) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// UserLocation returns the last position resolved by the locator.
func (v *Viewport) UserLocation() (orb.Point, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.user == nil {
		return orb.Point{}, false
	}
	return *v.user, true
}

// Move records a user pan or zoom. The listener sees only the last move of a
// burst, Debounce after it arrived.
func (v *Viewport) Move(bounds orb.Bound, zoom int) error {
	if err := v.validate(bounds, zoom); err != nil {
		return err
	}

	next := ViewState{
		Bounds: bounds,
		Center: boundsCenter(bounds),
		Zoom:   zoom,
		Width:  v.opts.Width,
		Height: v.opts.Height,
	}

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.pending = &next
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	if v.opts.Debounce <= 0 {
		v.mu.Unlock()
		v.settle(gen)
		return nil
	}
	v.timer = time.AfterFunc(v.opts.Debounce, func() { v.settle(gen) })
	v.mu.Unlock()

	return nil
}

// Flush settles a pending move right away. It reports whether one was pending.
func (v *Viewport) Flush() bool {
	v.mu.Lock()
	if v.pending == nil {
		v.mu.Unlock()
		return false
	}
	gen := v.gen
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()

	return v.settle(gen)
}

func (v *Viewport) settle(gen uint64) bool {
	v.mu.Lock()
	if gen != v.gen || v.pending == nil {
		v.mu.Unlock()
		return false
	}
	v.state = *v.pending
	v.pending = nil
	v.timer = nil
	state := v.state
	v.mu.Unlock()

	v.notify(state)
	return true
}

// Recenter moves the map to the device position at RecenterZoom. When the
// locator fails or exceeds LocateTimeout the default center is used instead.
// It reports whether the device position was found.
func (v *Viewport) Recenter(ctx context.Context) (ViewState, bool) {
	center := v.opts.DefaultCenter
	located := false

	if v.locator != nil {
		locateCtx, cancel := context.WithTimeout(ctx, v.opts.LocateTimeout)
		pos, err := v.locator.Locate(locateCtx)
		cancel()

		if err != nil {
			v.logger.Debug("Geolocation unavailable, using default center",
				slog.Any("error", err),
				slog.Float64("lat", center[1]),
				slog.Float64("lng", center[0]),
			)
		} else {
			center = pos
			located = true
		}
	}

	v.mu.Lock()
	if located {
		p := center
		v.user = &p
	}
	v.mu.Unlock()

	return v.apply(center, v.opts.RecenterZoom), located
}

// ZoomInto centers on a coordinate and zooms in by ZoomStep.
func (v *Viewport) ZoomInto(lat, lng float64) ViewState {
	v.mu.Lock()
	zoom := v.state.Zoom + v.opts.ZoomStep
	v.mu.Unlock()

	return v.apply(orb.Point{lng, lat}, zoom)
}

// CenterOn centers on a coordinate at the given zoom.
func (v *Viewport) CenterOn(lat, lng float64, zoom int) ViewState {
	return v.apply(orb.Point{lng, lat}, zoom)
}

// Resize changes the pixel size and keeps the center and zoom.
func (v *Viewport) Resize(width, height int) ViewState {
	v.mu.Lock()
	if width > 0 && height > 0 {
		v.opts.Width, v.opts.Height = width, height
	}
	center, zoom := v.state.Center, v.state.Zoom
	v.mu.Unlock()

	return v.apply(center, zoom)
}

// Stop discards a pending move.
func (v *Viewport) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.pending = nil
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *Viewport) apply(center orb.Point, zoom int) ViewState {
	v.mu.Lock()
	v.gen++
	v.pending = nil
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.state = v.stateAt(center, v.clampZoom(zoom))
	state := v.state
	v.mu.Unlock()

	v.notify(state)
	return state
}

func (v *Viewport) notify(state ViewState) {
	if v.listener != nil {
		v.listener(state)
	}
}

func (v *Viewport) clampZoom(zoom int) int {
	return max(v.opts.MinZoom, min(zoom, v.opts.MaxZoom))
}

func (v *Viewport) stateAt(center orb.Point, zoom int) ViewState {
	return ViewState{
		Bounds: BoundsAround(center, zoom, v.opts.Width, v.opts.Height),
		Center: center,
		Zoom:   zoom,
		Width:  v.opts.Width,
		Height: v.opts.Height,
	}
}

func (v *Viewport) validate(b orb.Bound, zoom int) error {
	for _, c := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return domainerrors.ErrInvalidViewport.WithDetails("bounds must be finite")
		}
	}
	if b.Min[1] > b.Max[1] {
		return domainerrors.ErrInvalidViewport.WithDetails("south is above north")
	}
	if b.Min[1] < -90 || b.Max[1] > 90 {
		return domainerrors.ErrInvalidViewport.WithDetails("latitude out of range")
	}
	if zoom < v.opts.MinZoom || zoom > v.opts.MaxZoom {
		return domainerrors.ErrInvalidViewport.WithDetails("zoom out of range")
	}
	return nil
}

// BoundsAround returns the lon/lat bounds of a width x height pixel map
// centered on center at zoom. West may exceed east when the view crosses the
// antimeridian.
func BoundsAround(center orb.Point, zoom, width, height int) orb.Bound {
	world := float64(tileSize) * math.Exp2(float64(zoom))
	cx := lngX(center[0]) * world
	cy := latY(center[1]) * world
	hw, hh := float64(width)/2, float64(height)/2

	west, east := -180.0, 180.0
	if float64(width) < world {
		west = wrapLng(xLng((cx - hw) / world))
		east = wrapLng(xLng((cx + hw) / world))
	}

	north := yLat(clampUnit((cy - hh) / world))
	south := yLat(clampUnit((cy + hh) / world))

	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}
}

func boundsCenter(b orb.Bound) orb.Point {
	west, east := b.Min[0], b.Max[0]
	if west > east {
		east += 360
	}
	return orb.Point{wrapLng((west + east) / 2), (b.Min[1] + b.Max[1]) / 2}
}
