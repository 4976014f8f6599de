// Package mapview turns a business list into clustered, render-ready map markers
// and keeps one map session's viewport, marker layer and selection consistent.
package mapview

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"marketmap/internal/domain/entity"

	"github.com/pkg/errors"
)

const (
	labelMaxRunes = 18
	svgDataPrefix = "data:image/svg+xml;base64,"
)

// Default glyphs per business type.
const (
	GlyphFood     = "🍴"
	GlyphStore    = "🏪"
	GlyphShipping = "📦"
	GlyphUnknown  = "📍"
)

var errNotSVG = errors.New("icon markup is not embeddable svg")

// IconKind tags which variant an IconDescriptor holds.
type IconKind int

const (
	IconGlyph IconKind = iota
	IconVector
)

func (k IconKind) String() string {
	if k == IconVector {
		return "vector"
	}
	return "glyph"
}

// IconDescriptor is either a text glyph or an inline vector image.
// Source is the data URI of Markup and is only set for IconVector.
type IconDescriptor struct {
	Kind   IconKind
	Text   string
	Markup string
	Source string
}

// Glyph builds a text icon.
func Glyph(text string) IconDescriptor {
	return IconDescriptor{Kind: IconGlyph, Text: text}
}

// VectorIcon builds a vector icon from SVG markup. It fails when the markup
// cannot be embedded as an image source.
func VectorIcon(markup string) (IconDescriptor, error) {
	src, err := encodeSVG(markup)
	if err != nil {
		return IconDescriptor{}, err
	}
	return IconDescriptor{Kind: IconVector, Markup: markup, Source: src}, nil
}

func encodeSVG(markup string) (string, error) {
	m := strings.TrimSpace(markup)
	if !utf8.ValidString(m) || strings.ContainsRune(m, 0) {
		return "", errNotSVG
	}

	lower := strings.ToLower(m)
	if !strings.Contains(lower, "<svg") || !strings.HasSuffix(lower, ">") {
		return "", errNotSVG
	}

	return svgDataPrefix + base64.StdEncoding.EncodeToString([]byte(m)), nil
}

// TypeGlyph returns the fallback glyph of a business type.
func TypeGlyph(t entity.BusinessType) string {
	switch t {
	case entity.BusinessTypeFood:
		return GlyphFood
	case entity.BusinessTypeStore:
		return GlyphStore
	case entity.BusinessTypeShipping:
		return GlyphShipping
	default:
		return GlyphUnknown
	}
}

func resolveIcon(raw string, t entity.BusinessType) IconDescriptor {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Glyph(TypeGlyph(t))
	case strings.HasPrefix(raw, "<"):
		icon, err := VectorIcon(raw)
		if err != nil {
			return Glyph(TypeGlyph(t))
		}
		return icon
	default:
		return Glyph(raw)
	}
}

// GeoPoint is the render-ready projection of one business.
type GeoPoint struct {
	ID       string
	Lng      float64
	Lat      float64
	Name     string
	Label    string
	IsOpen   bool
	Rating   float64
	Icon     IconDescriptor
	CacheKey string
	// Summary is what the map already knows about the business, shown until
	// the detail fetch completes.
	Summary entity.Business
}

// NormalizeResult is the outcome of Normalize. Excluded counts the businesses
// that passed the category filter but had no usable coordinates.
type NormalizeResult struct {
	Points   []GeoPoint
	Excluded int
}

// Normalize converts a business list into GeoPoints, keeping input order.
// An empty categorySlug keeps every category.
func Normalize(businesses []entity.Business, businessType entity.BusinessType, categorySlug string) NormalizeResult {
	res := NormalizeResult{Points: make([]GeoPoint, 0, len(businesses))}

	for i := range businesses {
		b := &businesses[i]
		if categorySlug != "" && b.Category.Slug != categorySlug {
			continue
		}

		lng, lat, ok := b.Location.LonLat()
		if !ok || math.Abs(lng) > 180 || math.Abs(lat) > 90 {
			res.Excluded++
			continue
		}

		icon := resolveIcon(b.Icon, businessType)
		res.Points = append(res.Points, GeoPoint{
			ID:       b.ID,
			Lng:      lng,
			Lat:      lat,
			Name:     b.Name,
			Label:    truncateLabel(b.Name),
			IsOpen:   b.IsOpen,
			Rating:   b.Rating,
			Icon:     icon,
			CacheKey: markerKey(b.ID, b.IsOpen, b.Rating, icon.Kind),
			Summary:  *b,
		})
	}

	return res
}

func markerKey(id string, open bool, rating float64, kind IconKind) string {
	return fmt.Sprintf("marker-%s-%t-%.1f-%s", id, open, rating, kind)
}

func truncateLabel(name string) string {
	if utf8.RuneCountInString(name) <= labelMaxRunes {
		return name
	}
	runes := []rune(name)
	return string(runes[:labelMaxRunes]) + "…"
}
