package mapview

import (
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
)

// MarkerLayerName is the vector tile layer holding session markers.
const MarkerLayerName = "markers"

// tileBuffer widens the tile query so markers straddling an edge appear in
// both neighbours.
const tileBuffer = 0.1

// EncodeTile renders features as a gzipped Mapbox vector tile with a single
// "markers" layer.
func EncodeTile(features []Feature, t maptile.Tile) ([]byte, error) {
	markers := make([]Marker, 0, len(features))
	for _, f := range features {
		markers = append(markers, featureMarker(f))
	}

	layers := mvt.NewLayers(map[string]*geojson.FeatureCollection{
		MarkerLayerName: MarkersGeoJSON(markers),
	})
	layers.ProjectToTile(t)
	layers.Clip(mvt.MapboxGLDefaultExtentBound)

	data, err := mvt.MarshalGzipped(layers)
	if err != nil {
		return nil, errors.Wrap(err, "marshal marker tile")
	}
	return data, nil
}

// TileFeatures returns the clusters and points covering t at its zoom.
func (x *Index) TileFeatures(t maptile.Tile) []Feature {
	b := t.Bound()
	return x.Query(b.Pad((b.Right()-b.Left())*tileBuffer), int(t.Z))
}
