package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"marketmap/config"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	mockService "marketmap/internal/mocks/service"
	"marketmap/internal/usecase"

	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMapConfig() *config.MapConfig {
	cfg := &config.MapConfig{
		Radius:      60,
		MaxZoom:     16,
		Extent:      512,
		MinPoints:   2,
		ZoomStep:    2,
		MaxMapZoom:  20,
		SelectZoom:  17,
		DefaultZoom: 13,
		SessionTTL:  time.Minute,
		MaxSessions: 2,
	}
	cfg.DefaultCenter.Lat, cfg.DefaultCenter.Lng = 19.04, -98.34
	return cfg
}

func foodBusinesses() []entity.Business {
	return []entity.Business{
		{ID: "a", Name: "Tacos Árabes", IsOpen: true, Rating: 4.6, Category: entity.Category{Slug: "tacos"}, Location: entity.NewLocation(-98.34, 19.04)},
		{ID: "b", Name: "Cemitas", Rating: 4.1, Category: entity.Category{Slug: "cemitas"}, Location: entity.NewLocation(-98.341, 19.041)},
		{ID: "c", Name: "Mole Poblano", IsOpen: true, Rating: 4.9, Category: entity.Category{Slug: "tacos"}, Location: entity.NewLocation(-99.00, 19.50)},
		{ID: "d", Name: "Sin mapa", Category: entity.Category{Slug: "tacos"}},
	}
}

func newTestMapService(t *testing.T, dir *mockService.MockBusinessDirectory) *mapService {
	t.Helper()

	s := newMapService(dir, nil, testMapConfig(), discardLogger(), nil)
	t.Cleanup(s.Close)
	return s
}

func markerIDs(t *testing.T, s *mapService, id string) []string {
	t.Helper()

	snap, err := s.GetSession(context.Background(), id)
	require.NoError(t, err)
	ids := make([]string, 0, len(snap.Markers))
	for _, m := range snap.Markers {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestMapService_CreateSession(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil).Once()
	s := newTestMapService(t, dir)

	snap, err := s.CreateSession(context.Background(), &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, entity.BusinessTypeFood, snap.BusinessType)
	assert.Equal(t, 3, snap.Points)
	assert.Equal(t, 1, snap.Excluded)
	assert.Equal(t, 13, snap.Viewport.Zoom)
	require.Len(t, snap.Markers, 1)
	assert.Equal(t, 2, snap.Markers[0].Count)
	assert.Equal(t, 1, s.Len())
}

func TestMapService_CreateSession_Errors(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		s := newTestMapService(t, mockService.NewMockBusinessDirectory(t))

		_, err := s.CreateSession(context.Background(), &usecase.CreateSessionInput{Type: "pharmacy"})
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidBusinessType))
		assert.Zero(t, s.Len())
	})

	t.Run("backend failure opens an empty map", func(t *testing.T) {
		dir := mockService.NewMockBusinessDirectory(t)
		dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeStore).Return(nil, domainerrors.ErrBackendUnavailable)
		s := newTestMapService(t, dir)

		snap, err := s.CreateSession(context.Background(), &usecase.CreateSessionInput{Type: entity.BusinessTypeStore})
		require.NoError(t, err)
		assert.Equal(t, "unable to load businesses", snap.LoadError)
		assert.Zero(t, snap.Points)
		assert.Empty(t, snap.Markers)
	})
}

func TestMapService_UnknownSession(t *testing.T) {
	s := newTestMapService(t, mockService.NewMockBusinessDirectory(t))
	ctx := context.Background()

	_, err := s.GetSession(ctx, "nope")
	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
	assert.True(t, errors.Is(s.DeleteSession(ctx, "nope"), domainerrors.ErrSessionNotFound))
	_, err = s.Click(ctx, "nope", "cluster-1")
	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
}

func TestMapService_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil)
	s := newTestMapService(t, dir)
	ctx := context.Background()
	input := &usecase.CreateSessionInput{Type: entity.BusinessTypeFood}

	first, err := s.CreateSession(ctx, input)
	require.NoError(t, err)
	second, err := s.CreateSession(ctx, input)
	require.NoError(t, err)

	_, err = s.GetSession(ctx, first.ID)
	require.NoError(t, err)

	third, err := s.CreateSession(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	_, err = s.GetSession(ctx, second.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
	_, err = s.GetSession(ctx, first.ID)
	assert.NoError(t, err)
	_, err = s.GetSession(ctx, third.ID)
	assert.NoError(t, err)
}

func TestMapService_ExpiresIdleSessions(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil)
	cfg := testMapConfig()
	cfg.SessionTTL = 200 * time.Millisecond
	s := newMapService(dir, nil, cfg, discardLogger(), nil)
	t.Cleanup(s.Close)
	ctx := context.Background()

	idle, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)
	active, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	deadline := time.Now().Add(cfg.SessionTTL * 3)
	for time.Now().Before(deadline) {
		_, err = s.GetSession(ctx, active.ID)
		require.NoError(t, err)
		time.Sleep(cfg.SessionTTL / 4)
	}

	_, err = s.GetSession(ctx, idle.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
	_, err = s.GetSession(ctx, active.ID)
	assert.NoError(t, err)
}

func TestMapService_DeleteSession(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil)
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	require.NoError(t, s.DeleteSession(ctx, snap.ID))
	assert.Zero(t, s.Len())
	assert.True(t, errors.Is(s.DeleteSession(ctx, snap.ID), domainerrors.ErrSessionNotFound))
}

func TestMapService_ClickClusterAndLeaves(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil)
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)
	cluster := snap.Markers[0]

	leaves, err := s.Leaves(ctx, snap.ID, cluster.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, 15, leaves.ExpansionZoom)
	assert.Len(t, leaves.Points, 2)

	after, err := s.Click(ctx, snap.ID, cluster.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, after.Viewport.Zoom)
	assert.Equal(t, []string{"point-a", "point-b"}, markerIDs(t, s, snap.ID))

	_, err = s.Click(ctx, snap.ID, "cluster-999")
	assert.True(t, errors.Is(err, domainerrors.ErrMarkerNotFound))
}

func TestMapService_SelectAndCloseBusiness(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil)
	dir.EXPECT().Get(mock.Anything, "c").Return(&entity.Business{ID: "c", Name: "Mole Poblano", Phone: "2225550101"}, nil).Maybe()
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	selected, err := s.SelectBusiness(ctx, snap.ID, "c")
	require.NoError(t, err)
	require.NotNil(t, selected.Selection)
	assert.Equal(t, "c", selected.Selection.Business.ID)
	assert.Equal(t, 17, selected.Viewport.Zoom)

	_, err = s.SelectBusiness(ctx, snap.ID, "d")
	assert.True(t, errors.Is(err, domainerrors.ErrBusinessNotFound))

	closed, err := s.CloseSelection(ctx, snap.ID)
	require.NoError(t, err)
	assert.Nil(t, closed.Selection)
}

func TestMapService_SetFilter(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil).Once()
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeStore).Return([]entity.Business{
		{ID: "s1", Name: "Abarrotes", Location: entity.NewLocation(-98.2, 19.0)},
	}, nil).Once()
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	tacos := "tacos"
	filtered, err := s.SetFilter(ctx, snap.ID, &usecase.FilterInput{Category: &tacos})
	require.NoError(t, err)
	assert.Equal(t, "tacos", filtered.Category)
	assert.Equal(t, 2, filtered.Points)
	assert.Equal(t, 1, filtered.Excluded)

	store := entity.BusinessTypeStore
	switched, err := s.SetFilter(ctx, snap.ID, &usecase.FilterInput{Type: &store})
	require.NoError(t, err)
	assert.Equal(t, entity.BusinessTypeStore, switched.BusinessType)
	assert.Empty(t, switched.Category)
	assert.Equal(t, 1, switched.Points)

	bad := entity.BusinessType("pharmacy")
	_, err = s.SetFilter(ctx, snap.ID, &usecase.FilterInput{Type: &bad})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidBusinessType))
}

func TestMapService_SetFilterRetriesFailedLoad(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(nil, domainerrors.ErrBackendUnavailable).Once()
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil).Once()
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)
	require.Equal(t, "unable to load businesses", snap.LoadError)

	tacos := "tacos"
	filtered, err := s.SetFilter(ctx, snap.ID, &usecase.FilterInput{Category: &tacos})
	require.NoError(t, err)
	assert.Empty(t, filtered.LoadError)
	assert.Equal(t, 2, filtered.Points)

	all := ""
	back, err := s.SetFilter(ctx, snap.ID, &usecase.FilterInput{Category: &all})
	require.NoError(t, err)
	assert.Equal(t, 3, back.Points)
}

func TestMapService_MoveAndMarkerTile(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil)
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	moved, err := s.Move(ctx, snap.ID, &usecase.MoveInput{West: -99.1, South: 18.9, East: -98.2, North: 19.6, Zoom: 12, Flush: true})
	require.NoError(t, err)
	assert.Equal(t, 12, moved.Viewport.Zoom)
	assert.Len(t, moved.Markers, 2)

	_, err = s.Move(ctx, snap.ID, &usecase.MoveInput{West: -99, South: 19.6, East: -98, North: 18.9, Zoom: 12})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidViewport))

	tile, err := s.MarkerTile(ctx, snap.ID, maptile.New(0, 0, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, tile)
}

func TestMapService_RefreshType(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil).Times(2)
	cfg := testMapConfig()
	cfg.MaxSessions = 10
	s := newMapService(dir, nil, cfg, discardLogger(), nil)
	t.Cleanup(s.Close)
	ctx := context.Background()

	for range 2 {
		_, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
		require.NoError(t, err)
	}

	updated := foodBusinesses()[:1]
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(updated, nil).Once()

	n, err := s.RefreshType(ctx, entity.BusinessTypeFood, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.RefreshType(ctx, entity.BusinessTypeShipping, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.RefreshType(ctx, "pharmacy", "")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidBusinessType))
}

func TestMapService_RefreshTypeBackendFailure(t *testing.T) {
	dir := mockService.NewMockBusinessDirectory(t)
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(foodBusinesses(), nil).Once()
	dir.EXPECT().ListByType(mock.Anything, entity.BusinessTypeFood).Return(nil, domainerrors.ErrBackendUnavailable).Once()
	s := newTestMapService(t, dir)
	ctx := context.Background()

	snap, err := s.CreateSession(ctx, &usecase.CreateSessionInput{Type: entity.BusinessTypeFood})
	require.NoError(t, err)

	_, err = s.RefreshType(ctx, entity.BusinessTypeFood, "")
	assert.True(t, errors.Is(err, domainerrors.ErrBackendUnavailable))

	kept, err := s.GetSession(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, kept.Points)
}

func TestSessionOptionsFromConfig(t *testing.T) {
	opts := SessionOptionsFromConfig(testMapConfig())

	assert.Equal(t, 16, opts.Cluster.MaxZoom)
	assert.Equal(t, 60.0, opts.Cluster.Radius)
	assert.Equal(t, 13, opts.Viewport.DefaultZoom)
	assert.Equal(t, -98.34, opts.Viewport.DefaultCenter.Lon())
	assert.Equal(t, 19.04, opts.Viewport.DefaultCenter.Lat())
	assert.Equal(t, 17, opts.Selection.SelectZoom)
	assert.Zero(t, opts.Viewport.Debounce)
}
