package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkersGeoJSON renders markers as a FeatureCollection of points. Icons are
// referenced by key; callers ship the icon bodies separately.
func MarkersGeoJSON(markers []Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(m.Position)
		f.ID = m.ID
		f.Properties = markerProperties(m)
		fc.Append(f)
	}
	return fc
}

func markerProperties(m Marker) geojson.Properties {
	props := geojson.Properties{
		"id":   m.ID,
		"kind": string(m.Kind),
	}
	if m.Icon != nil {
		props["icon"] = m.Icon.Key
	}

	switch m.Kind {
	case MarkerCluster:
		props["count"] = m.Count
		props["cluster_id"] = m.ClusterID
	case MarkerPoint:
		props["business_id"] = m.BusinessID
		props["label"] = m.Label
	}
	return props
}

// featureMarker describes a feature without touching the icon cache.
func featureMarker(f Feature) Marker {
	if f.IsCluster() {
		return Marker{
			ID:        MarkerID(f),
			Kind:      MarkerCluster,
			Position:  f.Center,
			Icon:      &MarkerIcon{Key: ClusterKey(f.Count)},
			Count:     f.Count,
			ClusterID: f.ClusterID,
		}
	}
	return Marker{
		ID:         MarkerID(f),
		Kind:       MarkerPoint,
		Position:   orb.Point{f.Point.Lng, f.Point.Lat},
		Icon:       &MarkerIcon{Key: PointKey(*f.Point)},
		Count:      1,
		BusinessID: f.Point.ID,
		Label:      f.Point.Label,
	}
}
