package entity

// Address is the delivery address the customer picked for checkout.
type Address struct {
	Label       string  `json:"label,omitempty"`
	FullAddress string  `json:"full_address" validate:"required"`
	Reference   string  `json:"reference,omitempty"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
}
