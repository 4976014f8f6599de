package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketmap/config"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/service"
	"marketmap/internal/infra/metrics"
	"marketmap/internal/mapview"
	"marketmap/internal/usecase"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionEntry fields other than session are guarded by mapService.mu.
type sessionEntry struct {
	session  *mapview.Session
	lastUsed time.Time
	// reason is set before an explicit removal
	reason string
}

type mapService struct {
	directory service.BusinessDirectory
	locator   service.Locator
	opts      mapview.SessionOptions
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	// sessions expires idle entries after ttl and drops the least recently
	// used one beyond map.maxSessions
	sessions *expirable.LRU[string, *sessionEntry]
	mu       sync.Mutex
	closing  sync.WaitGroup
}

// MapServiceParams holds dependencies for the map session registry, injected by Fx
type MapServiceParams struct {
	fx.In

	Lc        fx.Lifecycle
	Config    *config.Config
	Directory service.BusinessDirectory
	Locator   service.Locator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// NewMapService creates the session registry. Every open session is closed
// when the application stops.
func NewMapService(params MapServiceParams) usecase.MapUsecase {
	s := newMapService(params.Directory, params.Locator, params.Config.Map, params.Logger, params.Metrics)

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Close()

			return nil
		},
	})

	return s
}

func newMapService(
	directory service.BusinessDirectory,
	locator service.Locator,
	cfg *config.MapConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) *mapService {
	s := &mapService{
		directory: directory,
		locator:   locator,
		opts:      SessionOptionsFromConfig(cfg),
		ttl:       cfg.SessionTTL,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
	s.sessions = expirable.NewLRU[string, *sessionEntry](max(cfg.MaxSessions, 0), s.onEvict, cfg.SessionTTL)

	return s
}

// SessionOptionsFromConfig maps the map section onto the session components.
func SessionOptionsFromConfig(cfg *config.MapConfig) mapview.SessionOptions {
	cluster := mapview.Options{
		Radius:    cfg.Radius,
		MaxZoom:   cfg.MaxZoom,
		MinZoom:   cfg.MinZoom,
		Extent:    cfg.Extent,
		MinPoints: cfg.MinPoints,
	}

	viewport := mapview.DefaultViewportOptions()
	viewport.Debounce = cfg.Debounce
	if cfg.ZoomStep > 0 {
		viewport.ZoomStep = cfg.ZoomStep
	}
	if cfg.MaxMapZoom > 0 {
		viewport.MaxZoom = cfg.MaxMapZoom
	}
	if cfg.RecenterZoom > 0 {
		viewport.RecenterZoom = cfg.RecenterZoom
	}
	if cfg.DefaultZoom > 0 {
		viewport.DefaultZoom = cfg.DefaultZoom
	}
	if cfg.DefaultCenter.Lat != 0 || cfg.DefaultCenter.Lng != 0 {
		viewport.DefaultCenter = orb.Point{cfg.DefaultCenter.Lng, cfg.DefaultCenter.Lat}
	}

	return mapview.SessionOptions{
		Cluster:  cluster,
		Viewport: viewport,
		Selection: mapview.SelectionOptions{
			SelectZoom:    cfg.SelectZoom,
			DetailTimeout: cfg.DetailTimeout,
		},
	}
}

// CreateSession opens a session and loads its business list. A failed list
// fetch still opens the session; the snapshot carries the load error.
func (s *mapService) CreateSession(ctx context.Context, input *usecase.CreateSessionInput) (mapview.Snapshot, error) {
	if !input.Type.IsValid() {
		return mapview.Snapshot{}, domainerrors.ErrInvalidBusinessType.WithDetails(input.Type.String())
	}

	opts := s.opts
	if input.Width > 0 {
		opts.Viewport.Width = input.Width
	}
	if input.Height > 0 {
		opts.Viewport.Height = input.Height
	}
	if input.Lat != nil && input.Lng != nil {
		opts.Viewport.DefaultCenter = orb.Point{*input.Lng, *input.Lat}
	}
	if input.Zoom != nil {
		opts.Viewport.DefaultZoom = *input.Zoom
	}

	id := uuid.NewString()
	session := mapview.NewSession(id, opts, s.directory, s.locator, s.logger)

	businesses, err := s.loadBusinesses(ctx, input.Type)
	session.Load(businesses, input.Type, input.Category, err)

	s.register(id, session)

	if input.Locate {
		session.RecenterAsync(context.WithoutCancel(ctx))
	}

	s.logger.InfoContext(ctx, "Map session created",
		slog.String("session_id", id),
		slog.String("type", input.Type.String()),
		slog.String("category", input.Category),
	)

	return session.Snapshot(), nil
}

func (s *mapService) loadBusinesses(ctx context.Context, businessType entity.BusinessType) ([]entity.Business, error) {
	start := time.Now()
	businesses, err := s.directory.ListByType(ctx, businessType)
	s.metrics.BusinessListLoaded(businessType.String(), time.Since(start), len(businesses), err)

	return businesses, err
}

func (s *mapService) register(id string, session *mapview.Session) {
	s.metrics.SessionOpened()
	s.sessions.Add(id, &sessionEntry{session: session, lastUsed: s.now()})
}

// onEvict runs, under the cache lock, for every session leaving the registry.
// The session is closed in the background so a slow locate cannot stall the cache.
func (s *mapService) onEvict(id string, entry *sessionEntry) {
	s.mu.Lock()
	reason := entry.reason
	idle := s.now().Sub(entry.lastUsed)
	s.mu.Unlock()

	if reason == "" {
		reason = "evicted"
		if s.ttl > 0 && idle >= s.ttl {
			reason = "expired"
		}
	}

	s.closing.Add(1)
	go func() {
		defer s.closing.Done()

		entry.session.Close()
		s.metrics.SessionClosed(reason)
		s.logger.Debug("Map session closed",
			slog.String("session_id", id),
			slog.String("reason", reason),
		)
	}()
}

// session returns a live session and restarts its idle timer.
func (s *mapService) session(id string) (*mapview.Session, error) {
	entry, ok := s.sessions.Get(id)
	if !ok {
		return nil, domainerrors.ErrSessionNotFound.WithDetails(id)
	}

	s.mu.Lock()
	entry.lastUsed = s.now()
	s.mu.Unlock()
	s.sessions.Add(id, entry)

	return entry.session, nil
}

// GetSession returns the current snapshot of a session.
func (s *mapService) GetSession(_ context.Context, id string) (mapview.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return mapview.Snapshot{}, err
	}

	return session.Snapshot(), nil
}

// DeleteSession closes a session.
func (s *mapService) DeleteSession(_ context.Context, id string) error {
	entry, ok := s.sessions.Peek(id)
	if !ok {
		return domainerrors.ErrSessionNotFound.WithDetails(id)
	}

	s.mu.Lock()
	entry.reason = "deleted"
	s.mu.Unlock()

	if !s.sessions.Remove(id) {
		return domainerrors.ErrSessionNotFound.WithDetails(id)
	}

	return nil
}

// Move applies a user pan or zoom. Unless input.Flush is set the snapshot
// may still show the previous viewport.
func (s *mapService) Move(_ context.Context, id string, input *usecase.MoveInput) (mapview.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return mapview.Snapshot{}, err
	}

	bounds := orb.Bound{
		Min: orb.Point{input.West, input.South},
		Max: orb.Point{input.East, input.North},
	}
	if err := session.Move(bounds, input.Zoom); err != nil {
		return mapview.Snapshot{}, err
	}
	if input.Flush {
		session.Flush()
	}

	return session.Snapshot(), nil
}

// Recenter moves the map to the device position.
func (s *mapService) Recenter(ctx context.Context, id string) (*usecase.RecenterResult, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	_, located := session.Recenter(ctx)

	return &usecase.RecenterResult{Snapshot: session.Snapshot(), Located: located}, nil
}

// SetFilter switches the vertical or the category. A type switch, or any
// change after a failed list fetch, reloads the list from the backend.
func (s *mapService) SetFilter(ctx context.Context, id string, input *usecase.FilterInput) (mapview.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return mapview.Snapshot{}, err
	}

	current := session.Snapshot()
	category := current.Category
	if input.Category != nil {
		category = *input.Category
	}

	if input.Type != nil && *input.Type != current.BusinessType {
		if !input.Type.IsValid() {
			return mapview.Snapshot{}, domainerrors.ErrInvalidBusinessType.WithDetails(input.Type.String())
		}
		if input.Category == nil {
			category = ""
		}
		session.CloseSelection()
		businesses, err := s.loadBusinesses(ctx, *input.Type)
		session.Load(businesses, *input.Type, category, err)

		return session.Snapshot(), nil
	}

	if session.LoadFailed() {
		businesses, err := s.loadBusinesses(ctx, current.BusinessType)
		session.Load(businesses, current.BusinessType, category, err)

		return session.Snapshot(), nil
	}

	session.SetFilter(category)

	return session.Snapshot(), nil
}

// Click dispatches a marker click: clusters zoom in, points open the business.
func (s *mapService) Click(_ context.Context, id, markerID string) (mapview.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return mapview.Snapshot{}, err
	}
	if err := session.Click(markerID); err != nil {
		return mapview.Snapshot{}, err
	}

	return session.Snapshot(), nil
}

// SelectBusiness opens a business of the session's list by id.
func (s *mapService) SelectBusiness(_ context.Context, id, businessID string) (mapview.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return mapview.Snapshot{}, err
	}
	if _, ok := session.SelectBusiness(businessID); !ok {
		return mapview.Snapshot{}, domainerrors.ErrBusinessNotFound.WithDetails(businessID)
	}

	return session.Snapshot(), nil
}

// CloseSelection closes the open business.
func (s *mapService) CloseSelection(_ context.Context, id string) (mapview.Snapshot, error) {
	session, err := s.session(id)
	if err != nil {
		return mapview.Snapshot{}, err
	}
	session.CloseSelection()

	return session.Snapshot(), nil
}

// Leaves lists the businesses inside a cluster.
func (s *mapService) Leaves(_ context.Context, id string, clusterID int) (*usecase.ClusterLeaves, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	points, zoom, err := session.Leaves(clusterID)
	if err != nil {
		return nil, err
	}

	return &usecase.ClusterLeaves{ClusterID: clusterID, ExpansionZoom: zoom, Points: points}, nil
}

// MarkerTile renders the session's markers on a vector tile.
func (s *mapService) MarkerTile(_ context.Context, id string, tile maptile.Tile) ([]byte, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	return session.MarkerTile(tile)
}

// RefreshType reloads every session of a vertical with a single list fetch.
func (s *mapService) RefreshType(ctx context.Context, businessType entity.BusinessType, businessID string) (int, error) {
	if !businessType.IsValid() {
		return 0, domainerrors.ErrInvalidBusinessType.WithDetails(businessType.String())
	}

	var affected []*mapview.Session
	for _, entry := range s.sessions.Values() {
		if entry.session.BusinessType() == businessType {
			affected = append(affected, entry.session)
		}
	}
	if len(affected) == 0 {
		return 0, nil
	}

	businesses, err := s.loadBusinesses(ctx, businessType)
	if err != nil {
		return 0, errors.WithMessagef(err, "refresh %s sessions", businessType)
	}

	for _, session := range affected {
		session.Reload(businesses)
		if businessID == "" {
			continue
		}
		if err := session.RefreshSelection(ctx, businessID); err != nil {
			s.logger.DebugContext(ctx, "Selected business refresh failed",
				slog.String("session_id", session.ID()),
				slog.String("business_id", businessID),
				slog.Any("error", err),
			)
		}
	}

	s.logger.InfoContext(ctx, "Sessions reloaded after business update",
		slog.String("type", businessType.String()),
		slog.String("business_id", businessID),
		slog.Int("sessions", len(affected)),
	)

	return len(affected), nil
}

// Len returns the number of open sessions.
func (s *mapService) Len() int {
	return s.sessions.Len()
}

// Close closes every session.
func (s *mapService) Close() {
	s.mu.Lock()
	for _, entry := range s.sessions.Values() {
		entry.reason = "shutdown"
	}
	s.mu.Unlock()

	s.sessions.Purge()
	s.closing.Wait()
}
