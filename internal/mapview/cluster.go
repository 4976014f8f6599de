package mapview

import (
	"math"
	"sort"

	domainerrors "marketmap/internal/domain/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// Options tunes the clusterer. Radius is in pixels of an Extent-sized tile.
type Options struct {
	Radius    float64
	MaxZoom   int
	MinZoom   int
	Extent    float64
	MinPoints int
}

// DefaultOptions returns the stock clustering configuration.
func DefaultOptions() Options {
	return Options{
		Radius:    60,
		MaxZoom:   16,
		MinZoom:   0,
		Extent:    512,
		MinPoints: 2,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Radius <= 0 {
		o.Radius = d.Radius
	}
	if o.Extent <= 0 {
		o.Extent = d.Extent
	}
	if o.MinPoints < 2 {
		o.MinPoints = d.MinPoints
	}
	if o.MinZoom < 0 {
		o.MinZoom = 0
	}
	// Cluster ids reserve five bits for the zoom.
	if o.MaxZoom <= 0 || o.MaxZoom > 30 {
		o.MaxZoom = d.MaxZoom
	}
	if o.MinZoom > o.MaxZoom {
		o.MinZoom = o.MaxZoom
	}
	return o
}

// Feature is one query result: a standalone point or a cluster of points.
type Feature struct {
	// ClusterID is zero for standalone points.
	ClusterID int
	Count     int
	// Center is the point coordinate or the cluster centroid, in lon/lat.
	Center orb.Point
	Point  *GeoPoint
}

// IsCluster reports whether the feature aggregates several points.
func (f Feature) IsCluster() bool {
	return f.Point == nil
}

type node struct {
	x, y  float64
	count int
	id    int
	// point indexes Index.points for a standalone point and is -1 for clusters.
	point int
	// children index the level one zoom above the one the cluster was formed at.
	children []int
}

type nodeRef struct {
	idx int
	p   orb.Point
}

func (r nodeRef) Point() orb.Point { return r.p }

type level struct {
	nodes []node
	tree  *quadtree.Quadtree
}

type clusterRef struct {
	zoom int
	idx  int
}

var unitBound = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}

func newLevel(nodes []node) level {
	tree := quadtree.New(unitBound)
	for i, n := range nodes {
		// Coordinates are clamped to the unit square, Add cannot fail.
		_ = tree.Add(nodeRef{idx: i, p: orb.Point{n.x, n.y}})
	}
	return level{nodes: nodes, tree: tree}
}

// Index is an immutable cluster hierarchy over one GeoPoint set.
type Index struct {
	opts     Options
	points   []GeoPoint
	levels   []level
	clusters map[int]clusterRef
}

// Build clusters points for every zoom between MinZoom and MaxZoom. The level
// above MaxZoom holds the raw points.
func Build(points []GeoPoint, opts Options) *Index {
	opts = opts.normalized()
	idx := &Index{
		opts:     opts,
		points:   append([]GeoPoint(nil), points...),
		levels:   make([]level, opts.MaxZoom+2),
		clusters: make(map[int]clusterRef),
	}

	raw := make([]node, len(idx.points))
	for i, p := range idx.points {
		raw[i] = node{x: lngX(p.Lng), y: latY(p.Lat), count: 1, point: i}
	}
	idx.levels[opts.MaxZoom+1] = newLevel(raw)

	for z := opts.MaxZoom; z >= opts.MinZoom; z-- {
		idx.levels[z] = newLevel(idx.cluster(idx.levels[z+1], z))
	}

	return idx
}

func (x *Index) cluster(prev level, zoom int) []node {
	r := x.opts.Radius / (x.opts.Extent * math.Exp2(float64(zoom)))
	r2 := r * r

	visited := make([]bool, len(prev.nodes))
	next := make([]node, 0, len(prev.nodes))
	var buf []orb.Pointer
	var neighbors []int

	for i := range prev.nodes {
		if visited[i] {
			continue
		}
		visited[i] = true
		p := prev.nodes[i]

		buf = prev.tree.InBound(buf[:0], orb.Bound{
			Min: orb.Point{p.x - r, p.y - r},
			Max: orb.Point{p.x + r, p.y + r},
		})

		neighbors = neighbors[:0]
		count := p.count
		for _, ptr := range buf {
			j := ptr.(nodeRef).idx
			if visited[j] {
				continue
			}
			q := prev.nodes[j]
			dx, dy := q.x-p.x, q.y-p.y
			if dx*dx+dy*dy > r2 {
				continue
			}
			neighbors = append(neighbors, j)
			count += q.count
		}
		sort.Ints(neighbors)

		if len(neighbors) == 0 || count < x.opts.MinPoints {
			next = append(next, p)
			for _, j := range neighbors {
				visited[j] = true
				next = append(next, prev.nodes[j])
			}
			continue
		}

		wx, wy := p.x*float64(p.count), p.y*float64(p.count)
		children := make([]int, 0, len(neighbors)+1)
		children = append(children, i)
		for _, j := range neighbors {
			visited[j] = true
			q := prev.nodes[j]
			wx += q.x * float64(q.count)
			wy += q.y * float64(q.count)
			children = append(children, j)
		}

		id := (i+1)<<5 + zoom + 1
		x.clusters[id] = clusterRef{zoom: zoom, idx: len(next)}
		next = append(next, node{
			x:        wx / float64(count),
			y:        wy / float64(count),
			count:    count,
			id:       id,
			point:    -1,
			children: children,
		})
	}

	return next
}

// Len returns the number of indexed points.
func (x *Index) Len() int {
	return len(x.points)
}

// Options returns the effective clustering options.
func (x *Index) Options() Options {
	return x.opts
}

// Query returns the points and clusters visible in bound at zoom. A bound whose
// west edge is east of its east edge crosses the antimeridian.
func (x *Index) Query(bound orb.Bound, zoom int) []Feature {
	west, east := bound.Min[0], bound.Max[0]
	south, north := clampLat(bound.Min[1]), clampLat(bound.Max[1])

	if east-west >= 360 {
		west, east = -180, 180
	} else {
		west = wrapLng(west)
		if east != 180 {
			east = wrapLng(east)
		}
	}

	z := x.clampZoom(zoom)
	if west > east {
		eastern := x.query(west, south, 180, north, z)
		western := x.query(-180, south, east, north, z)
		return append(eastern, western...)
	}

	return x.query(west, south, east, north, z)
}

func (x *Index) clampZoom(zoom int) int {
	switch {
	case zoom < x.opts.MinZoom:
		return x.opts.MinZoom
	case zoom > x.opts.MaxZoom+1:
		return x.opts.MaxZoom + 1
	default:
		return zoom
	}
}

func (x *Index) query(west, south, east, north float64, zoom int) []Feature {
	lvl := x.levels[zoom]
	found := lvl.tree.InBound(nil, orb.Bound{
		Min: orb.Point{lngX(west), latY(north)},
		Max: orb.Point{lngX(east), latY(south)},
	})

	ids := make([]int, len(found))
	for i, ptr := range found {
		ids[i] = ptr.(nodeRef).idx
	}
	sort.Ints(ids)

	out := make([]Feature, 0, len(ids))
	for _, i := range ids {
		out = append(out, x.feature(lvl.nodes[i]))
	}
	return out
}

func (x *Index) feature(n node) Feature {
	if n.point >= 0 {
		p := &x.points[n.point]
		return Feature{Count: 1, Center: orb.Point{p.Lng, p.Lat}, Point: p}
	}
	return Feature{
		ClusterID: n.id,
		Count:     n.count,
		Center:    orb.Point{xLng(n.x), yLat(n.y)},
	}
}

// Children returns the features a cluster splits into one zoom deeper.
func (x *Index) Children(clusterID int) ([]Feature, error) {
	ref, ok := x.clusters[clusterID]
	if !ok {
		return nil, domainerrors.ErrClusterNotFound
	}

	n := x.levels[ref.zoom].nodes[ref.idx]
	out := make([]Feature, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, x.feature(x.levels[ref.zoom+1].nodes[c]))
	}
	return out, nil
}

// Leaves returns every point aggregated by a cluster.
func (x *Index) Leaves(clusterID int) ([]GeoPoint, error) {
	if _, ok := x.clusters[clusterID]; !ok {
		return nil, domainerrors.ErrClusterNotFound
	}
	return x.appendLeaves(nil, clusterID), nil
}

func (x *Index) appendLeaves(dst []GeoPoint, clusterID int) []GeoPoint {
	ref := x.clusters[clusterID]
	n := x.levels[ref.zoom].nodes[ref.idx]
	for _, c := range n.children {
		child := x.levels[ref.zoom+1].nodes[c]
		if child.point >= 0 {
			dst = append(dst, x.points[child.point])
			continue
		}
		dst = x.appendLeaves(dst, child.id)
	}
	return dst
}

// ExpansionZoom is the first zoom at which the cluster splits apart.
func (x *Index) ExpansionZoom(clusterID int) (int, error) {
	ref, ok := x.clusters[clusterID]
	if !ok {
		return 0, domainerrors.ErrClusterNotFound
	}
	return ref.zoom + 1, nil
}
