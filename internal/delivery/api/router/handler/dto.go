package handler

import (
	"marketmap/internal/domain/entity"
	"marketmap/internal/mapview"

	"github.com/paulmach/orb/geojson"
)

// ViewportResponse is the settled map view.
type ViewportResponse struct {
	West      float64 `json:"west"`
	South     float64 `json:"south"`
	East      float64 `json:"east"`
	North     float64 `json:"north"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	Zoom      int     `json:"zoom"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// LatLng is a position in the order map clients expect.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SnapshotResponse is a map session as the client renders it. Markers
// reference icons by key; Icons carries each distinct icon once.
type SnapshotResponse struct {
	ID           string                         `json:"id"`
	Type         entity.BusinessType            `json:"type"`
	Category     string                         `json:"category,omitempty"`
	Viewport     ViewportResponse               `json:"viewport"`
	Markers      *geojson.FeatureCollection     `json:"markers"`
	Icons        map[string]*mapview.MarkerIcon `json:"icons"`
	Selection    *mapview.Selected              `json:"selection,omitempty"`
	UserLocation *LatLng                        `json:"user_location,omitempty"`
	Points       int                            `json:"points"`
	Excluded     int                            `json:"excluded"`
	LoadError    string                         `json:"load_error,omitempty"`
}

func newSnapshotResponse(snap mapview.Snapshot) *SnapshotResponse {
	v := snap.Viewport
	resp := &SnapshotResponse{
		ID:       snap.ID,
		Type:     snap.BusinessType,
		Category: snap.Category,
		Viewport: ViewportResponse{
			West:      v.Bounds.Min.Lon(),
			South:     v.Bounds.Min.Lat(),
			East:      v.Bounds.Max.Lon(),
			North:     v.Bounds.Max.Lat(),
			CenterLat: v.Center.Lat(),
			CenterLng: v.Center.Lon(),
			Zoom:      v.Zoom,
			Width:     v.Width,
			Height:    v.Height,
		},
		Markers:   mapview.MarkersGeoJSON(snap.Markers),
		Icons:     mapview.Icons(snap.Markers),
		Selection: snap.Selection,
		Points:    snap.Points,
		Excluded:  snap.Excluded,
		LoadError: snap.LoadError,
	}
	if p := snap.UserLocation; p != nil {
		resp.UserLocation = &LatLng{Lat: p.Lat(), Lng: p.Lon()}
	}

	return resp
}

// LeafResponse is one business inside a cluster.
type LeafResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	IsOpen bool    `json:"is_open"`
	Rating float64 `json:"rating"`
}

// LeavesResponse lists a cluster's businesses and the zoom that splits it.
type LeavesResponse struct {
	ClusterID     int            `json:"cluster_id"`
	ExpansionZoom int            `json:"expansion_zoom"`
	Leaves        []LeafResponse `json:"leaves"`
}

func newLeafResponses(points []mapview.GeoPoint) []LeafResponse {
	leaves := make([]LeafResponse, 0, len(points))
	for _, p := range points {
		leaves = append(leaves, LeafResponse{
			ID:     p.ID,
			Name:   p.Name,
			Lat:    p.Lat,
			Lng:    p.Lng,
			IsOpen: p.IsOpen,
			Rating: p.Rating,
		})
	}

	return leaves
}
