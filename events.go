package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserEventsExchange is the topic exchange credential events are published to.
const UserEventsExchange = "microservices.events"

// Event types published after state-changing operations.
const (
	EventTypeRegister         = "register"
	EventTypeLogin            = "login"
	EventTypePasswordRecovery = "password-recovery"
	EventTypePasswordUpdate   = "password-update"
	EventTypeUserUpdate       = "user-update"
	EventTypeUserDelete       = "user-delete"
)

// UserEvent is the record published to the event bus after each
// credential-affecting action.
type UserEvent struct {
	Type         string         `json:"event_type"`
	UserID       uuid.UUID      `json:"user_id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	MobileNumber string         `json:"mobile_number"`
	Timestamp    time.Time      `json:"timestamp"`
	Data         map[string]any `json:"data"`
}

// EventPublisher delivers UserEvents to the outbound bus. Delivery is
// best-effort; the caller logs errors and never fails the primary operation
// over them.
type EventPublisher interface {
	Publish(ctx context.Context, event UserEvent) error
}

// EventPublisherFunc adapts a function to the EventPublisher interface.
type EventPublisherFunc func(ctx context.Context, event UserEvent) error

func (f EventPublisherFunc) Publish(ctx context.Context, event UserEvent) error {
	return f(ctx, event)
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, UserEvent) error { return nil }

func normalizeEventPublisher(p EventPublisher) EventPublisher {
	if p == nil {
		return noopEventPublisher{}
	}
	return p
}

// RoutingKey derives the bus routing key for an event type; keys are always
// prefixed "user.".
func RoutingKey(eventType string) string {
	if strings.HasPrefix(eventType, "user.") {
		return eventType
	}
	return "user." + eventType
}
