// Package events publishes match lifecycle notifications to downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	TypeMatchRequested = "match.requested"
	TypeMatchAccepted  = "match.accepted"
)

// Event is the payload written for every match lifecycle change.
type Event struct {
	Type       string    `json:"type"`
	Subsystem  string    `json:"subsystem"`
	Receiver   string    `json:"receiver"`
	Donors     []string  `json:"donors,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
