package mapview

import (
	"encoding/json"
	"strings"
	"testing"

	"marketmap/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBusinesses(t *testing.T, raw string) []entity.Business {
	t.Helper()
	var out []entity.Business
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestNormalize_DefaultGlyphAndNullLocation(t *testing.T) {
	businesses := decodeBusinesses(t, `[
		{"_id": "tacos", "name": "Tacos El Güero", "isOpen": true, "rating": 4.5,
		 "location": {"type": "Point", "coordinates": [-98.34, 19.04]}},
		{"_id": "ghost", "name": "Sin Ubicación", "location": null}
	]`)

	res := Normalize(businesses, entity.BusinessTypeFood, "")

	require.Len(t, res.Points, 1)
	assert.Equal(t, 1, res.Excluded)
	assert.Equal(t, len(businesses)-res.Excluded, len(res.Points))

	p := res.Points[0]
	assert.Equal(t, "tacos", p.ID)
	assert.InDelta(t, -98.34, p.Lng, 1e-9)
	assert.InDelta(t, 19.04, p.Lat, 1e-9)
	assert.Equal(t, IconGlyph, p.Icon.Kind)
	assert.Equal(t, GlyphFood, p.Icon.Text)
	assert.Equal(t, "marker-tacos-true-4.5-glyph", p.CacheKey)
	assert.Equal(t, "Tacos El Güero", p.Summary.Name)
}

func TestNormalize_ExcludesMalformedCoordinates(t *testing.T) {
	businesses := decodeBusinesses(t, `[
		{"id": "ok", "name": "ok", "location": {"type": "Point", "coordinates": [-98.2, 19.0]}},
		{"id": "missing", "name": "missing"},
		{"id": "strings", "name": "strings", "location": {"type": "Point", "coordinates": ["a", "b"]}},
		{"id": "short", "name": "short", "location": {"type": "Point", "coordinates": [-98.2]}},
		{"id": "long", "name": "long", "location": {"type": "Point", "coordinates": [-98.2, 19.0, 10]}},
		{"id": "range", "name": "range", "location": {"type": "Point", "coordinates": [200, 19.0]}},
		{"id": "lat", "name": "lat", "location": {"type": "Point", "coordinates": [-98.2, 95]}}
	]`)

	res := Normalize(businesses, entity.BusinessTypeStore, "")

	require.Len(t, res.Points, 1)
	assert.Equal(t, "ok", res.Points[0].ID)
	assert.Equal(t, 6, res.Excluded)
	assert.Equal(t, len(businesses)-res.Excluded, len(res.Points))
}

func TestNormalize_Icons(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><circle cx="5" cy="5" r="4"/></svg>`

	tests := []struct {
		name     string
		btype    entity.BusinessType
		icon     string
		wantKind IconKind
		wantText string
	}{
		{name: "vector markup", btype: entity.BusinessTypeFood, icon: svg, wantKind: IconVector},
		{name: "emoji glyph", btype: entity.BusinessTypeFood, icon: "🌮", wantKind: IconGlyph, wantText: "🌮"},
		{name: "not svg falls back", btype: entity.BusinessTypeStore, icon: "<div>hi</div>", wantKind: IconGlyph, wantText: GlyphStore},
		{name: "nul byte falls back", btype: entity.BusinessTypeShipping, icon: "<svg>\x00</svg>", wantKind: IconGlyph, wantText: GlyphShipping},
		{name: "empty uses type glyph", btype: entity.BusinessTypeShipping, icon: "", wantKind: IconGlyph, wantText: GlyphShipping},
		{name: "unknown type", btype: entity.BusinessType("pets"), icon: "", wantKind: IconGlyph, wantText: GlyphUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := entity.Business{ID: "b", Name: "b", Icon: tt.icon, Location: entity.NewLocation(-98, 19)}

			res := Normalize([]entity.Business{b}, tt.btype, "")

			require.Len(t, res.Points, 1)
			icon := res.Points[0].Icon
			assert.Equal(t, tt.wantKind, icon.Kind)
			if tt.wantKind == IconVector {
				assert.True(t, strings.HasPrefix(icon.Source, "data:image/svg+xml;base64,"))
				assert.True(t, strings.HasSuffix(res.Points[0].CacheKey, "-vector"))
				return
			}
			assert.Equal(t, tt.wantText, icon.Text)
		})
	}
}

func TestNormalize_CategoryFilterAndLabel(t *testing.T) {
	businesses := []entity.Business{
		{ID: "1", Name: "Panadería La Espiga Dorada", Category: entity.Category{Slug: "bakery"}, Location: entity.NewLocation(-98.2, 19.0)},
		{ID: "2", Name: "Farmacia", Category: entity.Category{Slug: "pharmacy"}, Location: entity.NewLocation(-98.3, 19.1)},
		{ID: "3", Name: "Pan sin mapa", Category: entity.Category{Slug: "bakery"}},
	}

	res := Normalize(businesses, entity.BusinessTypeStore, "bakery")

	require.Len(t, res.Points, 1)
	assert.Equal(t, 1, res.Excluded)
	assert.Equal(t, "Panadería La Espig…", res.Points[0].Label)

	all := Normalize(businesses, entity.BusinessTypeStore, "")
	assert.Len(t, all.Points, 2)
	assert.Equal(t, "Farmacia", all.Points[1].Label)
}
