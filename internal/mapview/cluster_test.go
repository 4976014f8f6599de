package mapview

import (
	"math/rand"
	"testing"

	domainerrors "marketmap/internal/domain/errors"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoPoint(id string, lat, lng float64) GeoPoint {
	return GeoPoint{ID: id, Lat: lat, Lng: lng, Name: id, Label: id, CacheKey: markerKey(id, true, 4, IconGlyph)}
}

func pueblaPoints() []GeoPoint {
	return []GeoPoint{
		geoPoint("a", 19.04, -98.34),
		geoPoint("b", 19.041, -98.341),
		geoPoint("c", 19.50, -99.00),
	}
}

var pueblaBound = orb.Bound{Min: orb.Point{-99.1, 18.9}, Max: orb.Point{-98.2, 19.6}}

func randomPoints(n int) []GeoPoint {
	rng := rand.New(rand.NewSource(42))
	out := make([]GeoPoint, n)
	for i := range out {
		out[i] = geoPoint(
			"p"+string(rune('a'+i%26))+string(rune('a'+(i/26)%26)),
			19.0+rng.Float64()*0.2,
			-98.4+rng.Float64()*0.3,
		)
	}
	return out
}

func splitFeatures(features []Feature) (clusters []Feature, points []Feature) {
	for _, f := range features {
		if f.IsCluster() {
			clusters = append(clusters, f)
		} else {
			points = append(points, f)
		}
	}
	return clusters, points
}

func TestIndex_ClustersSplitWhenZoomingIn(t *testing.T) {
	idx := Build(pueblaPoints(), DefaultOptions())

	clusters, points := splitFeatures(idx.Query(pueblaBound, 12))
	require.Len(t, clusters, 1)
	require.Len(t, points, 1)
	assert.Equal(t, 2, clusters[0].Count)
	assert.Equal(t, "c", points[0].Point.ID)

	leaves, err := idx.Leaves(clusters[0].ClusterID)
	require.NoError(t, err)
	ids := []string{leaves[0].ID, leaves[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	zoom, err := idx.ExpansionZoom(clusters[0].ClusterID)
	require.NoError(t, err)
	assert.Equal(t, 15, zoom)

	clusters, points = splitFeatures(idx.Query(pueblaBound, 18))
	assert.Empty(t, clusters)
	assert.Len(t, points, 3)
}

func TestIndex_QueryIsDeterministic(t *testing.T) {
	pts := randomPoints(400)
	idx := Build(pts, DefaultOptions())
	bound := orb.Bound{Min: orb.Point{-98.5, 18.9}, Max: orb.Point{-98.0, 19.3}}

	first := idx.Query(bound, 11)
	idx.Query(bound, 14)
	idx.Query(pueblaBound, 3)
	second := idx.Query(bound, 11)

	assert.Equal(t, first, second)

	rebuilt := Build(pts, DefaultOptions()).Query(bound, 11)
	assert.Equal(t, first, rebuilt)
}

func TestIndex_ConservesPoints(t *testing.T) {
	pts := randomPoints(500)
	idx := Build(pts, DefaultOptions())
	world := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

	for zoom := 0; zoom <= 20; zoom++ {
		total := 0
		for _, f := range idx.Query(world, zoom) {
			total += f.Count
		}
		assert.Equal(t, len(pts), total, "zoom %d", zoom)
	}
}

func TestIndex_NoClustersAboveMaxZoom(t *testing.T) {
	pts := append(randomPoints(200), geoPoint("dup1", 19.1, -98.2), geoPoint("dup2", 19.1, -98.2))
	opts := DefaultOptions()
	opts.MaxZoom = 14
	idx := Build(pts, opts)
	world := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

	for zoom := opts.MaxZoom + 1; zoom <= 22; zoom++ {
		features := idx.Query(world, zoom)
		assert.Len(t, features, len(pts))
		for _, f := range features {
			assert.False(t, f.IsCluster(), "zoom %d", zoom)
			assert.Equal(t, 1, f.Count)
		}
	}

	clusters, _ := splitFeatures(idx.Query(world, opts.MaxZoom))
	assert.NotEmpty(t, clusters)
}

func TestIndex_AntimeridianBounds(t *testing.T) {
	idx := Build([]GeoPoint{
		geoPoint("east", 0, 179.5),
		geoPoint("west", 0, -179.5),
		geoPoint("greenwich", 0, 0),
	}, DefaultOptions())

	features := idx.Query(orb.Bound{Min: orb.Point{179, -1}, Max: orb.Point{-179, 1}}, 10)

	ids := make([]string, 0, len(features))
	for _, f := range features {
		require.False(t, f.IsCluster())
		ids = append(ids, f.Point.ID)
	}
	assert.Equal(t, []string{"east", "west"}, ids)
}

func TestIndex_EmptyAndUnknownCluster(t *testing.T) {
	idx := Build(nil, Options{})

	assert.Empty(t, idx.Query(pueblaBound, 10))
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, DefaultOptions(), idx.Options())

	_, err := idx.Leaves(12345)
	assert.True(t, errors.Is(err, domainerrors.ErrClusterNotFound))

	_, err = idx.Children(12345)
	assert.True(t, errors.Is(err, domainerrors.ErrClusterNotFound))
}

func TestIndex_ChildrenSumToCluster(t *testing.T) {
	idx := Build(randomPoints(300), DefaultOptions())
	world := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

	clusters, _ := splitFeatures(idx.Query(world, 9))
	require.NotEmpty(t, clusters)

	for _, c := range clusters {
		children, err := idx.Children(c.ClusterID)
		require.NoError(t, err)

		sum := 0
		for _, ch := range children {
			sum += ch.Count
		}
		assert.Equal(t, c.Count, sum)

		leaves, err := idx.Leaves(c.ClusterID)
		require.NoError(t, err)
		assert.Len(t, leaves, c.Count)
	}
}
