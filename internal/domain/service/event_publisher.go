package service

import (
	"context"

	"marketmap/internal/domain/entity"
)

// BusinessUpdateEvent announces that a business of a vertical changed
type BusinessUpdateEvent struct {
	BusinessID string              `json:"business_id"`
	Type       entity.BusinessType `json:"type"`
	// Event is the backend event name, e.g. "updated" or "opened"
	Event     string `json:"event"`
	RequestID string `json:"request_id,omitempty"`
}

// EventPublisher publishes business update events for the worker to consume
type EventPublisher interface {
	// PublishBusinessUpdate publishes a business update event
	PublishBusinessUpdate(ctx context.Context, event *BusinessUpdateEvent) error
	// Close releases publisher resources
	Close() error
}
