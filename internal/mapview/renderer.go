package mapview

import (
	"sort"
	"strconv"
	"sync"

	domainerrors "marketmap/internal/domain/errors"

	"github.com/paulmach/orb"
)

// MarkerKind distinguishes what a marker stands for.
type MarkerKind string

const (
	MarkerPoint   MarkerKind = "point"
	MarkerCluster MarkerKind = "cluster"
	MarkerUser    MarkerKind = "user"
)

const (
	pointMarkerPrefix   = "point-"
	clusterMarkerPrefix = "cluster-"
)

// Marker is one placed pin.
type Marker struct {
	ID         string
	Kind       MarkerKind
	Position   orb.Point
	Icon       *MarkerIcon
	Count      int
	ClusterID  int
	BusinessID string
	Label      string
}

func (m Marker) sameAs(o Marker) bool {
	return m.ID == o.ID &&
		m.Icon.Key == o.Icon.Key &&
		m.Position.Equal(o.Position) &&
		m.Label == o.Label &&
		m.Count == o.Count
}

// MarkerLayer is the surface markers are placed on.
type MarkerLayer interface {
	Add(m Marker)
	Remove(id string)
}

// MemoryLayer is a MarkerLayer that keeps markers in memory.
type MemoryLayer struct {
	mu      sync.Mutex
	markers map[string]Marker
	adds    int
	removes int
}

func NewMemoryLayer() *MemoryLayer {
	return &MemoryLayer{markers: make(map[string]Marker)}
}

func (l *MemoryLayer) Add(m Marker) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markers[m.ID] = m
	l.adds++
}

func (l *MemoryLayer) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.markers, id)
	l.removes++
}

// Markers returns the placed markers ordered by id.
func (l *MemoryLayer) Markers() []Marker {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Marker, 0, len(l.markers))
	for _, m := range l.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Ops returns how many Add and Remove calls the layer received.
func (l *MemoryLayer) Ops() (adds, removes int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adds, l.removes
}

// RenderStats summarizes one reconciliation.
type RenderStats struct {
	Added   int
	Removed int
	Kept    int
}

type placed struct {
	marker  Marker
	feature Feature
}

// Renderer reconciles query results against the markers already on a layer.
type Renderer struct {
	cache *IconCache
	layer MarkerLayer

	mu        sync.Mutex
	current   map[string]placed
	user      *Marker
	onCluster func(lat, lng float64)
	onPoint   func(p GeoPoint)
}

func NewRenderer(cache *IconCache, layer MarkerLayer) *Renderer {
	return &Renderer{
		cache:   cache,
		layer:   layer,
		current: make(map[string]placed),
	}
}

// OnClusterClick registers the handler run when a cluster marker is clicked.
func (r *Renderer) OnClusterClick(fn func(lat, lng float64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCluster = fn
}

// OnPointClick registers the handler run when a point marker is clicked.
func (r *Renderer) OnPointClick(fn func(p GeoPoint)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPoint = fn
}

// MarkerID returns the marker id a feature is rendered under.
func MarkerID(f Feature) string {
	if f.IsCluster() {
		return clusterMarkerPrefix + strconv.Itoa(f.ClusterID)
	}
	return pointMarkerPrefix + f.Point.ID
}

// Render places the markers for features, removing markers that are no longer
// visible and leaving unchanged ones in place.
func (r *Renderer) Render(features []Feature) RenderStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats RenderStats
	next := make(map[string]placed, len(features))

	for _, f := range features {
		m := r.marker(f)
		if _, dup := next[m.ID]; dup {
			continue
		}
		next[m.ID] = placed{marker: m, feature: f}
	}

	for id, old := range r.current {
		if cur, ok := next[id]; ok && cur.marker.sameAs(old.marker) {
			continue
		}
		r.layer.Remove(id)
		stats.Removed++
	}

	for id, cur := range next {
		if old, ok := r.current[id]; ok && cur.marker.sameAs(old.marker) {
			// the layer keeps the old marker; clicks resolve against the new index
			next[id] = placed{marker: old.marker, feature: cur.feature}
			stats.Kept++
			continue
		}
		r.layer.Add(cur.marker)
		stats.Added++
	}

	r.current = next
	return stats
}

func (r *Renderer) marker(f Feature) Marker {
	if f.IsCluster() {
		count := f.Count
		return Marker{
			ID:        MarkerID(f),
			Kind:      MarkerCluster,
			Position:  f.Center,
			Icon:      r.cache.GetOrCreate(ClusterKey(count), func() *MarkerIcon { return BuildClusterIcon(count) }),
			Count:     count,
			ClusterID: f.ClusterID,
		}
	}

	p := *f.Point
	return Marker{
		ID:         MarkerID(f),
		Kind:       MarkerPoint,
		Position:   f.Center,
		Icon:       r.cache.GetOrCreate(PointKey(p), func() *MarkerIcon { return BuildPointIcon(p) }),
		Count:      1,
		BusinessID: p.ID,
		Label:      p.Label,
	}
}

// SetUserLocation places, moves or (with nil) removes the user-location marker.
func (r *Renderer) SetUserLocation(pos *orb.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pos == nil {
		if r.user != nil {
			r.layer.Remove(UserLocationKey)
			r.user = nil
		}
		return
	}

	m := Marker{
		ID:       UserLocationKey,
		Kind:     MarkerUser,
		Position: *pos,
		Icon:     r.cache.GetOrCreate(UserLocationKey, BuildUserLocationIcon),
	}
	if r.user != nil && r.user.sameAs(m) {
		return
	}
	if r.user != nil {
		r.layer.Remove(UserLocationKey)
	}
	r.layer.Add(m)
	r.user = &m
}

// Click runs the handler of a rendered marker.
func (r *Renderer) Click(markerID string) error {
	r.mu.Lock()
	p, ok := r.current[markerID]
	onCluster, onPoint := r.onCluster, r.onPoint
	r.mu.Unlock()

	if !ok {
		return domainerrors.ErrMarkerNotFound.WithDetails(markerID)
	}

	switch {
	case p.feature.IsCluster():
		if onCluster != nil {
			onCluster(p.feature.Center[1], p.feature.Center[0])
		}
	default:
		if onPoint != nil {
			onPoint(*p.feature.Point)
		}
	}
	return nil
}

// Feature returns the feature behind a rendered marker.
func (r *Renderer) Feature(markerID string) (Feature, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.current[markerID]
	return p.feature, ok
}
