package usecase

import (
	"context"

	"marketmap/internal/domain/entity"
)

// FavoriteToggle is the outcome of toggling a favorite business
type FavoriteToggle struct {
	BusinessID string   `json:"business_id"`
	Favorite   bool     `json:"favorite"`
	Favorites  []string `json:"favorites"`
}

// PreferenceUsecase manages the selected delivery address and favorites
type PreferenceUsecase interface {
	GetAddress(ctx context.Context, owner string) (*entity.Address, error)
	SetAddress(ctx context.Context, owner string, address *entity.Address) (*entity.Address, error)
	Favorites(ctx context.Context, owner string) ([]string, error)
	ToggleFavorite(ctx context.Context, owner, businessID string) (*FavoriteToggle, error)
}
