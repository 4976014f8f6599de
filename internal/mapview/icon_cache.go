package mapview

import (
	"strconv"
	"sync"
)

// UserLocationKey identifies the single user-location icon.
const UserLocationKey = "user-location"

// PointKey is the cache key of a point marker icon.
func PointKey(p GeoPoint) string {
	return p.CacheKey
}

// ClusterKey is the cache key of a cluster icon with count members.
func ClusterKey(count int) string {
	return "cluster-" + strconv.Itoa(count)
}

// IconCache memoizes marker icons for the lifetime of one map session.
// Entries are never evicted; the key space is bounded by the visible businesses.
type IconCache struct {
	mu    sync.Mutex
	icons map[string]*MarkerIcon
}

// NewIconCache returns an empty cache.
func NewIconCache() *IconCache {
	return &IconCache{icons: make(map[string]*MarkerIcon)}
}

// GetOrCreate returns the icon stored under key, building and storing it on
// first use. Once a key is stored, later builders are never called.
func (c *IconCache) GetOrCreate(key string, build func() *MarkerIcon) *MarkerIcon {
	c.mu.Lock()
	defer c.mu.Unlock()

	if icon, ok := c.icons[key]; ok {
		return icon
	}

	icon := build()
	if icon != nil && icon.Key == "" {
		icon.Key = key
	}
	c.icons[key] = icon

	return icon
}

// Len returns the number of cached icons.
func (c *IconCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.icons)
}
