// Package tiles serves base map tiles out of a PMTiles archive.
package tiles

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"marketmap/config"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/service"

	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/protomaps/go-pmtiles/pmtiles"
)

const maxTileZoom = 22

// getter is the part of *pmtiles.Server the source needs.
type getter interface {
	Get(ctx context.Context, path string) (int, map[string]string, []byte)
}

type pmtilesSource struct {
	server      getter
	tilesetName string
	format      string
	logger      *slog.Logger
}

type disabledSource struct{}

func (disabledSource) Tile(context.Context, maptile.Tile) (*service.Tile, error) {
	return nil, domainerrors.ErrTilesDisabled
}

// New creates the TileSource configured by the tiles section. A disabled
// section yields a source that always answers ErrTilesDisabled.
func New(cfg *config.Config, logger *slog.Logger) (service.TileSource, error) {
	tc := cfg.Tiles
	if tc == nil || !tc.Enabled {
		logger.Info("Tile serving disabled")

		return disabledSource{}, nil
	}

	if tc.Source == "" {
		return nil, errors.New("tiles source is required when enabled")
	}

	// The PMTiles server expects a bucket and looks for {name}.pmtiles files in it
	bucketPath, prefix, tilesetName := parseSourcePath(tc.Source)

	silentLogger := log.New(io.Discard, "", 0)
	server, err := pmtiles.NewServer(bucketPath, prefix, silentLogger, tc.CacheSize, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PMTiles server")
	}
	server.Start()

	logger.Info("PMTiles tile source initialized",
		slog.String("source", tc.Source),
		slog.String("tileset", tilesetName),
		slog.String("format", tc.Format),
	)

	return newSource(server, tilesetName, tc.Format, logger), nil
}

func newSource(server getter, tilesetName, format string, logger *slog.Logger) *pmtilesSource {
	return &pmtilesSource{
		server:      server,
		tilesetName: tilesetName,
		format:      strings.TrimPrefix(format, "."),
		logger:      logger,
	}
}

// Tile implements service.TileSource.
func (s *pmtilesSource) Tile(ctx context.Context, t maptile.Tile) (*service.Tile, error) {
	if t.Z > maxTileZoom || !t.Valid() {
		return nil, domainerrors.ErrTileNotFound.WithDetails(tileKey(t))
	}

	status, headers, data := s.server.Get(ctx, s.tilePath(t))

	switch status {
	case http.StatusOK:
		return &service.Tile{Data: data, Headers: headers}, nil
	case http.StatusNoContent, http.StatusNotFound:
		return nil, domainerrors.ErrTileNotFound.WithDetails(tileKey(t))
	default:
		s.logger.WarnContext(ctx, "PMTiles lookup failed",
			slog.String("tile", tileKey(t)),
			slog.Int("status", status),
		)
		return nil, errors.Errorf("unexpected status code: %d", status)
	}
}

// tilePath builds /{tileset}/{z}/{x}/{y}.{format}.
func (s *pmtilesSource) tilePath(t maptile.Tile) string {
	return fmt.Sprintf("/%s/%d/%d/%d.%s", s.tilesetName, t.Z, t.X, t.Y, s.format)
}

func tileKey(t maptile.Tile) string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// parseSourcePath splits a source into the bucket, the key prefix inside the
// bucket and the tileset name.
// Examples:
//   - "/path/to/puebla.pmtiles" -> ("file:///path/to", "", "puebla")
//   - "https://example.com/tiles/puebla.pmtiles" -> ("https://example.com/tiles", "", "puebla")
//   - "gs://bucket/maps/puebla.pmtiles" -> ("gs://bucket", "maps", "puebla")
func parseSourcePath(source string) (bucketPath, prefix, tilesetName string) {
	if strings.HasPrefix(source, "file://") {
		path := strings.TrimPrefix(source, "file://")
		tilesetName = strings.TrimSuffix(filepath.Base(path), ".pmtiles")

		return "file://" + filepath.Dir(path), "", tilesetName
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		lastSlash := strings.LastIndex(source, "/")
		if lastSlash > 0 {
			tilesetName = strings.TrimSuffix(source[lastSlash+1:], ".pmtiles")

			return source[:lastSlash], "", tilesetName
		}
	}

	if scheme, rest, ok := strings.Cut(source, "://"); ok {
		// Cloud bucket: scheme://bucket/prefix/name.pmtiles
		bucket, key, _ := strings.Cut(rest, "/")
		dir := ""
		if i := strings.LastIndex(key, "/"); i >= 0 {
			dir, key = key[:i], key[i+1:]
		}

		return scheme + "://" + bucket, dir, strings.TrimSuffix(key, ".pmtiles")
	}

	tilesetName = strings.TrimSuffix(filepath.Base(source), ".pmtiles")

	return "file://" + filepath.Dir(source), "", tilesetName
}
