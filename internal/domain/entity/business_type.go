// Package entity contains the core business objects of the project.
package entity

// BusinessType is the marketplace vertical a business is listed under.
type BusinessType string

const (
	// BusinessTypeFood lists restaurants and prepared food.
	BusinessTypeFood BusinessType = "food"
	// BusinessTypeStore lists retail stores.
	BusinessTypeStore BusinessType = "store"
	// BusinessTypeShipping lists pantry and grocery shipping businesses.
	BusinessTypeShipping BusinessType = "shipping"
)

// String returns the string representation of the BusinessType.
func (t BusinessType) String() string {
	return string(t)
}

// IsValid checks if the BusinessType is a known vertical.
func (t BusinessType) IsValid() bool {
	switch t {
	case BusinessTypeFood, BusinessTypeStore, BusinessTypeShipping:
		return true
	default:
		return false
	}
}
