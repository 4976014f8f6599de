package service

import (
	"context"

	"github.com/paulmach/orb/maptile"
)

// Tile is an encoded base map tile and the headers it should be served with.
type Tile struct {
	Data    []byte
	Headers map[string]string
}

// TileSource serves base map tiles.
type TileSource interface {
	Tile(ctx context.Context, t maptile.Tile) (*Tile, error)
}
