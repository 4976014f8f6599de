package mapview

import (
	"context"
	"log/slog"
	"sync"

	"marketmap/internal/domain/entity"
	"marketmap/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// SessionOptions bundles the configuration of every session component.
type SessionOptions struct {
	Cluster   Options
	Viewport  ViewportOptions
	Selection SelectionOptions
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	ID           string
	BusinessType entity.BusinessType
	Category     string
	Viewport     ViewState
	Markers      []Marker
	Selection    *Selected
	UserLocation *orb.Point
	Points       int
	Excluded     int
	LoadError    string
	Queries      int
}

// Session is one map view: the business list it shows, the cluster index over
// it, and the viewport, markers and selection derived from them.
type Session struct {
	id     string
	opts   SessionOptions
	logger *slog.Logger

	cache     *IconCache
	layer     *MemoryLayer
	renderer  *Renderer
	viewport  *Viewport
	selection *Selection

	mu           sync.Mutex
	businessType entity.BusinessType
	category     string
	raw          []entity.Business
	result       NormalizeResult
	index        *Index
	loadErr      error
	queries      int
	wg           sync.WaitGroup
}

// NewSession wires a session. It starts with no businesses.
func NewSession(id string, opts SessionOptions, directory service.BusinessDirectory, locator service.Locator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("session_id", id))

	s := &Session{
		id:     id,
		opts:   opts,
		logger: logger,
		cache:  NewIconCache(),
		layer:  NewMemoryLayer(),
		index:  Build(nil, opts.Cluster),
	}

	s.renderer = NewRenderer(s.cache, s.layer)
	s.viewport = NewViewport(opts.Viewport, locator, logger, s.refresh)
	s.selection = NewSelection(directory, opts.Selection, logger)

	s.renderer.OnClusterClick(func(lat, lng float64) { s.viewport.ZoomInto(lat, lng) })
	s.renderer.OnPointClick(func(p GeoPoint) { s.selection.Select(p) })
	s.selection.OnCenter(func(lat, lng float64, zoom int) { s.viewport.CenterOn(lat, lng, zoom) })

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// BusinessType returns the vertical the session shows.
func (s *Session) BusinessType() entity.BusinessType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.businessType
}

// Load replaces the business list and rebuilds the index. A non-nil loadErr
// records a failed list fetch; the map then shows no businesses.
func (s *Session) Load(businesses []entity.Business, businessType entity.BusinessType, category string, loadErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.businessType = businessType
	s.category = category
	s.loadErr = loadErr
	if loadErr != nil {
		s.raw = nil
		s.logger.Warn("Business list unavailable", slog.Any("error", loadErr))
	} else {
		s.raw = append([]entity.Business(nil), businesses...)
	}

	s.rebuild()
}

// LoadFailed reports whether the last business list fetch failed.
func (s *Session) LoadFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr != nil
}

// Reload replaces the business list keeping the vertical and category filter.
func (s *Session) Reload(businesses []entity.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadErr = nil
	s.raw = append([]entity.Business(nil), businesses...)
	s.rebuild()
}

// SetFilter changes the category filter over the business list already loaded.
func (s *Session) SetFilter(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.category = category
	s.rebuild()
}

func (s *Session) rebuild() {
	s.result = Normalize(s.raw, s.businessType, s.category)
	s.index = Build(s.result.Points, s.opts.Cluster)

	s.logger.Debug("Cluster index rebuilt",
		slog.String("type", s.businessType.String()),
		slog.String("category", s.category),
		slog.Int("points", len(s.result.Points)),
		slog.Int("excluded", s.result.Excluded),
	)

	s.query(s.viewport.State())
}

// refresh re-queries the viewport's latest settled state. Notifications may
// arrive out of order, so the state they carry is not used.
func (s *Session) refresh(ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query(s.viewport.State())
}

func (s *Session) query(state ViewState) {
	features := s.index.Query(state.Bounds, state.Zoom)
	stats := s.renderer.Render(features)
	s.queries++

	s.logger.Debug("Viewport queried",
		slog.Int("zoom", state.Zoom),
		slog.Int("features", len(features)),
		slog.Int("added", stats.Added),
		slog.Int("removed", stats.Removed),
	)
}

// Move applies a debounced user pan or zoom.
func (s *Session) Move(bounds orb.Bound, zoom int) error {
	return s.viewport.Move(bounds, zoom)
}

// Flush settles a pending move immediately.
func (s *Session) Flush() bool {
	return s.viewport.Flush()
}

// Resize changes the map's pixel size.
func (s *Session) Resize(width, height int) ViewState {
	return s.viewport.Resize(width, height)
}

// CenterOn moves the map without a locator round trip.
func (s *Session) CenterOn(lat, lng float64, zoom int) ViewState {
	return s.viewport.CenterOn(lat, lng, zoom)
}

// Recenter moves the map to the device position, or the default center when
// it cannot be found, and places the user-location marker.
func (s *Session) Recenter(ctx context.Context) (ViewState, bool) {
	state, located := s.viewport.Recenter(ctx)
	if located {
		if pos, ok := s.viewport.UserLocation(); ok {
			s.renderer.SetUserLocation(&pos)
		}
	}
	return state, located
}

// RecenterAsync runs Recenter in the background.
func (s *Session) RecenterAsync(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Recenter(ctx)
	}()
}

// Click dispatches a marker click.
func (s *Session) Click(markerID string) error {
	return s.renderer.Click(markerID)
}

// SelectBusiness opens a business shown on the map by its id.
func (s *Session) SelectBusiness(id string) (Selected, bool) {
	s.mu.Lock()
	var (
		point GeoPoint
		found bool
	)
	for _, p := range s.result.Points {
		if p.ID == id {
			point, found = p, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return Selected{}, false
	}
	return s.selection.Select(point), true
}

// CloseSelection closes the open business.
func (s *Session) CloseSelection() {
	s.selection.Close()
}

// RefreshSelection re-fetches the open business when it is businessID.
func (s *Session) RefreshSelection(ctx context.Context, businessID string) error {
	sel, ok := s.selection.Current()
	if !ok || sel.Point.ID != businessID {
		return nil
	}
	return s.selection.Refresh(ctx)
}

// Leaves returns the points aggregated by a cluster of the current index.
func (s *Session) Leaves(clusterID int) ([]GeoPoint, int, error) {
	s.mu.Lock()
	idx := s.index
	s.mu.Unlock()

	leaves, err := idx.Leaves(clusterID)
	if err != nil {
		return nil, 0, err
	}
	zoom, err := idx.ExpansionZoom(clusterID)
	if err != nil {
		return nil, 0, err
	}
	return leaves, zoom, nil
}

// Icons returns the icons of the given markers keyed by icon key.
func Icons(markers []Marker) map[string]*MarkerIcon {
	icons := make(map[string]*MarkerIcon, len(markers))
	for _, m := range markers {
		if m.Icon != nil {
			icons[m.Icon.Key] = m.Icon
		}
	}
	return icons
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:           s.id,
		BusinessType: s.businessType,
		Category:     s.category,
		Viewport:     s.viewport.State(),
		Markers:      s.layer.Markers(),
		Points:       len(s.result.Points),
		Excluded:     s.result.Excluded,
		Queries:      s.queries,
	}
	if s.loadErr != nil {
		snap.LoadError = "unable to load businesses"
	}
	if sel, ok := s.selection.Current(); ok {
		snap.Selection = &sel
	}
	if pos, ok := s.viewport.UserLocation(); ok {
		snap.UserLocation = &pos
	}
	return snap
}

// WaitIdle blocks until background locate and detail fetches have finished.
func (s *Session) WaitIdle() {
	s.wg.Wait()
	s.selection.Wait()
}

// Close stops timers and cancels background work.
func (s *Session) Close() {
	s.viewport.Stop()
	s.selection.Shutdown()
	s.wg.Wait()
}

// MarkerTile encodes the markers of the current index that fall on t as a
// gzipped vector tile.
func (s *Session) MarkerTile(t maptile.Tile) ([]byte, error) {
	s.mu.Lock()
	idx := s.index
	s.mu.Unlock()

	return EncodeTile(idx.TileFeatures(t), t)
}
