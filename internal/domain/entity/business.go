package entity

import (
	"encoding/json"
	"math"
)

// Category groups businesses within a vertical (e.g. "tacos", "pharmacy").
type Category struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon,omitempty"`
}

// Location is a GeoJSON-style point. Coordinates are kept raw so that a
// malformed pair does not fail decoding of the whole business list.
type Location struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LonLat returns the [lon, lat] pair if the coordinates are exactly two finite numbers.
func (l *Location) LonLat() (lon, lat float64, ok bool) {
	if l == nil || len(l.Coordinates) == 0 {
		return 0, 0, false
	}

	var pair []float64
	if err := json.Unmarshal(l.Coordinates, &pair); err != nil {
		return 0, 0, false
	}
	if len(pair) != 2 {
		return 0, 0, false
	}
	for _, v := range pair {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, false
		}
	}

	return pair[0], pair[1], true
}

// NewLocation builds a Point location from a lon/lat pair.
func NewLocation(lon, lat float64) *Location {
	raw, _ := json.Marshal([]float64{lon, lat})
	return &Location{Type: "Point", Coordinates: raw}
}

// DeliveryTime is the advertised delivery window in minutes.
type DeliveryTime struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PaymentMethods flags which payment options a business accepts.
type PaymentMethods struct {
	Cash     bool `json:"cash"`
	Card     bool `json:"card"`
	Transfer bool `json:"transfer"`
}

// Business is the read-only business record served by the marketplace backend.
type Business struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           BusinessType   `json:"type,omitempty"`
	Category       Category       `json:"category"`
	Location       *Location      `json:"location"`
	Rating         float64        `json:"rating"`
	IsOpen         bool           `json:"isOpen"`
	DeliveryTime   DeliveryTime   `json:"deliveryTime"`
	DeliveryCost   float64        `json:"deliveryCost"`
	MinimumOrder   float64        `json:"minimumOrder"`
	PaymentMethods PaymentMethods `json:"paymentMethods"`
	BrandColor     string         `json:"brandColor,omitempty"`
	Logo           string         `json:"logo,omitempty"`
	Banner         string         `json:"banner,omitempty"`
	Discount       *float64       `json:"discount,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	// Icon is either an emoji glyph or inline SVG markup.
	Icon string `json:"icon,omitempty"`
}

// UnmarshalJSON accepts both "id" and "_id" as the business identifier.
func (b *Business) UnmarshalJSON(data []byte) error {
	type plain Business
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = aux.MongoID
	}

	return nil
}
