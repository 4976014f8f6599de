package usecase

import (
	"context"

	"marketmap/internal/domain/entity"
	"marketmap/internal/mapview"

	"github.com/paulmach/orb/maptile"
)

// CreateSessionInput opens a map over one business vertical
type CreateSessionInput struct {
	Type     entity.BusinessType `json:"type" validate:"required"`
	Category string              `json:"category"`
	Width    int                 `json:"width" validate:"omitempty,gte=1,lte=8192"`
	Height   int                 `json:"height" validate:"omitempty,gte=1,lte=8192"`
	Lat      *float64            `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng      *float64            `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Zoom     *int                `json:"zoom,omitempty" validate:"omitempty,gte=0,lte=22"`
	// Locate recenters on the device position in the background
	Locate bool `json:"locate"`
}

// MoveInput is a user pan or zoom
type MoveInput struct {
	West  float64 `json:"west" validate:"gte=-180,lte=180"`
	South float64 `json:"south" validate:"gte=-90,lte=90"`
	East  float64 `json:"east" validate:"gte=-180,lte=180"`
	North float64 `json:"north" validate:"gte=-90,lte=90"`
	Zoom  int     `json:"zoom" validate:"gte=0,lte=22"`
	// Flush settles the move immediately instead of waiting for the debounce
	Flush bool `json:"flush"`
}

// FilterInput changes the vertical or the category filter
type FilterInput struct {
	Type     *entity.BusinessType `json:"type,omitempty"`
	Category *string              `json:"category,omitempty"`
}

// ClusterLeaves lists the businesses aggregated by a cluster
type ClusterLeaves struct {
	ClusterID     int                `json:"cluster_id"`
	ExpansionZoom int                `json:"expansion_zoom"`
	Points        []mapview.GeoPoint `json:"points"`
}

// RecenterResult reports whether the device position was found
type RecenterResult struct {
	Snapshot mapview.Snapshot
	Located  bool
}

// MapUsecase manages map sessions
type MapUsecase interface {
	CreateSession(ctx context.Context, input *CreateSessionInput) (mapview.Snapshot, error)
	GetSession(ctx context.Context, id string) (mapview.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error

	Move(ctx context.Context, id string, input *MoveInput) (mapview.Snapshot, error)
	Recenter(ctx context.Context, id string) (*RecenterResult, error)
	SetFilter(ctx context.Context, id string, input *FilterInput) (mapview.Snapshot, error)

	Click(ctx context.Context, id, markerID string) (mapview.Snapshot, error)
	SelectBusiness(ctx context.Context, id, businessID string) (mapview.Snapshot, error)
	CloseSelection(ctx context.Context, id string) (mapview.Snapshot, error)
	Leaves(ctx context.Context, id string, clusterID int) (*ClusterLeaves, error)
	MarkerTile(ctx context.Context, id string, tile maptile.Tile) ([]byte, error)

	// RefreshType reloads every session showing businessType and re-fetches the
	// open business when it is businessID. It returns the number of sessions reloaded.
	RefreshType(ctx context.Context, businessType entity.BusinessType, businessID string) (int, error)
}
