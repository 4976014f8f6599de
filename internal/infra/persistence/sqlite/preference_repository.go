package sqlite

import (
	"context"
	"encoding/json"

	"marketmap/internal/domain/repository"
	"marketmap/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// preferenceRepository implements the repository.PreferenceRepository interface.
type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository is the constructor for preferenceRepository.
func NewPreferenceRepository(db *gorm.DB) repository.PreferenceRepository {
	return &preferenceRepository{
		db: db,
	}
}

// Get decodes the document stored under key into dst.
func (repo *preferenceRepository) Get(ctx context.Context, owner, key string, dst any) (bool, error) {
	var prefM model.PreferenceModel

	if err := repo.db.WithContext(ctx).
		Where("owner = ? AND pref_key = ?", owner, key).
		First(&prefM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, errors.Wrapf(err, "failed to read preference %s", key)
	}

	if err := json.Unmarshal([]byte(prefM.Value), dst); err != nil {
		return false, errors.Wrapf(err, "failed to decode preference %s", key)
	}

	return true, nil
}

// Put replaces the document stored under key.
func (repo *preferenceRepository) Put(ctx context.Context, owner, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode preference %s", key)
	}

	prefM := model.PreferenceModel{Owner: owner, Key: key, Value: string(raw)}
	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "pref_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&prefM).Error; err != nil {
		return errors.Wrapf(err, "failed to store preference %s", key)
	}

	return nil
}

// Delete removes the document stored under key.
func (repo *preferenceRepository) Delete(ctx context.Context, owner, key string) error {
	if err := repo.db.WithContext(ctx).
		Where("owner = ? AND pref_key = ?", owner, key).
		Delete(&model.PreferenceModel{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete preference %s", key)
	}

	return nil
}
