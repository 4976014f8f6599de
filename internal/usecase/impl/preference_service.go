package impl

import (
	"context"
	"log/slog"
	"strings"

	"marketmap/internal/domain/constants"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/repository"
	"marketmap/internal/usecase"

	"github.com/pkg/errors"
)

// preferenceService implements the PreferenceUsecase interface.
type preferenceService struct {
	preferences repository.PreferenceRepository
	logger      *slog.Logger
}

// NewPreferenceService is the constructor for preferenceService.
func NewPreferenceService(
	preferences repository.PreferenceRepository,
	logger *slog.Logger,
) usecase.PreferenceUsecase {
	return &preferenceService{
		preferences: preferences,
		logger:      logger,
	}
}

// GetAddress returns the saved delivery address, or nil when none was saved.
func (srv *preferenceService) GetAddress(ctx context.Context, owner string) (*entity.Address, error) {
	var address entity.Address
	found, err := srv.preferences.Get(ctx, owner, constants.PreferenceSelectedAddress, &address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load address")
	}
	if !found {
		return nil, nil //nolint:nilnil
	}

	return &address, nil
}

// SetAddress replaces the saved delivery address.
func (srv *preferenceService) SetAddress(ctx context.Context, owner string, address *entity.Address) (*entity.Address, error) {
	if address == nil || strings.TrimSpace(address.FullAddress) == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("full_address is required")
	}

	if err := srv.preferences.Put(ctx, owner, constants.PreferenceSelectedAddress, address); err != nil {
		return nil, errors.Wrap(err, "failed to save address")
	}

	srv.logger.DebugContext(ctx, "Delivery address saved", slog.String("owner", owner))

	return address, nil
}

// Favorites returns the favorite business ids in the order they were added.
func (srv *preferenceService) Favorites(ctx context.Context, owner string) ([]string, error) {
	favorites := []string{}
	if _, err := srv.preferences.Get(ctx, owner, constants.PreferenceFavorites, &favorites); err != nil {
		return nil, errors.Wrap(err, "failed to load favorites")
	}

	return favorites, nil
}

// ToggleFavorite adds businessID to the favorites, or removes it when present.
func (srv *preferenceService) ToggleFavorite(ctx context.Context, owner, businessID string) (*usecase.FavoriteToggle, error) {
	if businessID == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("business id is required")
	}

	favorites, err := srv.Favorites(ctx, owner)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(favorites)+1)
	removed := false
	for _, id := range favorites {
		if id == businessID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, businessID)
	}

	if err := srv.preferences.Put(ctx, owner, constants.PreferenceFavorites, kept); err != nil {
		return nil, errors.Wrap(err, "failed to save favorites")
	}

	return &usecase.FavoriteToggle{
		BusinessID: businessID,
		Favorite:   !removed,
		Favorites:  kept,
	}, nil
}
