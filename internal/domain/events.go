package domain

import (
	"context"
	"time"
)

const (
	EventProductCreated = "producto.creado"
	EventProductUpdated = "producto.modificado"
	EventProductDeleted = "producto.eliminado"
)

type ProductEvent struct {
	Type       string    `json:"tipo"`
	TenantID   string    `json:"tenant_id"`
	Codigo     string    `json:"codigo"`
	Producto   *Product  `json:"producto,omitempty"`
	OccurredAt time.Time `json:"fecha"`
}

// EventPublisher is best effort: callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event ProductEvent) error
}

// NopPublisher drops every event. Used when no queue is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ProductEvent) error { return nil }
