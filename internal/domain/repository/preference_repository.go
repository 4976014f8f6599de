// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
)

// PreferenceRepository is a flat key-value store where each key holds one JSON document per owner.
type PreferenceRepository interface {
	// Get decodes the value stored under key into dst. It reports false when nothing is stored.
	Get(ctx context.Context, owner, key string, dst any) (bool, error)

	// Put encodes value as JSON and replaces whatever is stored under key.
	Put(ctx context.Context, owner, key string, value any) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, owner, key string) error
}
