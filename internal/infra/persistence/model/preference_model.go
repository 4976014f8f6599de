package model

import (
	"time"
)

// PreferenceModel is the GORM-specific struct for the 'preferences' table.
// Each row holds one JSON document for an owner and key.
type PreferenceModel struct {
	Owner     string `gorm:"column:owner;type:varchar(128);primaryKey"`
	Key       string `gorm:"column:pref_key;type:varchar(64);primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PreferenceModel) TableName() string {
	return "preferences"
}
