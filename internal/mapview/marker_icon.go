package mapview

import (
	"fmt"
	"html"
	"strconv"
)

// ClusterTier sizes a cluster icon by member count.
type ClusterTier string

const (
	TierNone   ClusterTier = ""
	TierSmall  ClusterTier = "small"
	TierMedium ClusterTier = "medium"
	TierLarge  ClusterTier = "large"
)

// TierFor returns the tier of a cluster with count members.
func TierFor(count int) ClusterTier {
	switch {
	case count < 10:
		return TierSmall
	case count < 50:
		return TierMedium
	default:
		return TierLarge
	}
}

func (t ClusterTier) size() int {
	switch t {
	case TierSmall:
		return 30
	case TierMedium:
		return 40
	default:
		return 50
	}
}

func (t ClusterTier) color() string {
	switch t {
	case TierSmall:
		return "#51bbd6"
	case TierMedium:
		return "#f1a340"
	default:
		return "#e4572e"
	}
}

// MarkerIcon is a rendered marker image. Anchor is the pixel of the image that
// sits on the marker coordinate.
type MarkerIcon struct {
	Key     string      `json:"key"`
	SVG     string      `json:"svg"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	AnchorX int         `json:"anchor_x"`
	AnchorY int         `json:"anchor_y"`
	Tier    ClusterTier `json:"tier,omitempty"`
}

const (
	pinWidth  = 44
	pinHeight = 54
)

// BuildPointIcon draws a pin with the business icon, an open/closed badge and
// the rating.
func BuildPointIcon(p GeoPoint) *MarkerIcon {
	badge := "#d64545"
	if p.IsOpen {
		badge = "#2eb872"
	}

	var inner string
	switch p.Icon.Kind {
	case IconVector:
		inner = fmt.Sprintf(`<image href="%s" x="10" y="8" width="24" height="24"/>`, p.Icon.Source)
	default:
		inner = fmt.Sprintf(`<text x="22" y="27" font-size="18" text-anchor="middle">%s</text>`,
			html.EscapeString(p.Icon.Text))
	}

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<path d="M22 53C22 53 3 32 3 20a19 19 0 1 1 38 0c0 12-19 33-19 33z" fill="#ffffff" stroke="#333333" stroke-width="2"/>`+
		`%s`+
		`<circle cx="36" cy="7" r="6" fill="%s" stroke="#ffffff" stroke-width="1.5"/>`+
		`<text x="22" y="44" font-size="9" font-weight="bold" text-anchor="middle">★%.1f</text>`+
		`</svg>`,
		pinWidth, pinHeight, pinWidth, pinHeight, inner, badge, p.Rating)

	return &MarkerIcon{
		Key:     PointKey(p),
		SVG:     svg,
		Width:   pinWidth,
		Height:  pinHeight,
		AnchorX: pinWidth / 2,
		AnchorY: pinHeight,
	}
}

// BuildClusterIcon draws a numbered circle sized by the tier of count.
func BuildClusterIcon(count int) *MarkerIcon {
	tier := TierFor(count)
	size := tier.size()
	half := size / 2

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<circle cx="%d" cy="%d" r="%d" fill="%s" fill-opacity="0.9" stroke="#ffffff" stroke-width="2"/>`+
		`<text x="%d" y="%d" font-size="%d" font-weight="bold" fill="#ffffff" text-anchor="middle" dominant-baseline="central">%s</text>`+
		`</svg>`,
		size, size, size, size, half, half, half-1, tier.color(), half, half, size/3, strconv.Itoa(count))

	return &MarkerIcon{
		Key:     ClusterKey(count),
		SVG:     svg,
		Width:   size,
		Height:  size,
		AnchorX: half,
		AnchorY: half,
		Tier:    tier,
	}
}

// BuildUserLocationIcon draws the user-location dot.
func BuildUserLocationIcon() *MarkerIcon {
	const size = 22
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="22" height="22" viewBox="0 0 22 22">` +
		`<circle cx="11" cy="11" r="10" fill="#4285f4" fill-opacity="0.25"/>` +
		`<circle cx="11" cy="11" r="6" fill="#4285f4" stroke="#ffffff" stroke-width="2"/>` +
		`</svg>`

	return &MarkerIcon{
		Key:     UserLocationKey,
		SVG:     svg,
		Width:   size,
		Height:  size,
		AnchorX: size / 2,
		AnchorY: size / 2,
	}
}
