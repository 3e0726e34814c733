// Package events publishes account lifecycle events to the message broker.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeUserRegistered = "user.registered"
	TypeRoleGranted    = "role.granted"
)

// Event is the JSON payload published for every account change.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Email      string    `json:"email"`
	Role       string    `json:"role,omitempty"`
	GrantedBy  string    `json:"granted_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
