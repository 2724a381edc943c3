package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDefinitionCreated EventType = "definition_created"
	EventInstanceCreated   EventType = "instance_created"
	EventTransition        EventType = "transition"
	EventRejection         EventType = "rejection"
)

// DefinitionEvent is emitted when a definition is accepted and stored.
type DefinitionEvent struct {
	Type         EventType `json:"type"`
	DefinitionID string    `json:"definition_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// InstanceEvent is emitted when an instance is created.
type InstanceEvent struct {
	Type         EventType `json:"type"`
	InstanceID   string    `json:"instance_id"`
	DefinitionID string    `json:"definition_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// TransitionEvent is emitted for every execute attempt: successful
// transitions and rejections alike.
type TransitionEvent struct {
	Type       EventType `json:"type"`
	InstanceID string    `json:"instance_id"`
	ActionID   string    `json:"action_id"`
	FromState  string    `json:"from_state,omitempty"`
	ToState    string    `json:"to_state,omitempty"`
	Reason     string    `json:"reason,omitempty"` // set on rejection
	Timestamp  time.Time `json:"timestamp"`
}

// LifecycleHooks defines callbacks for service observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnDefinitionCreated func(context.Context, *DefinitionEvent)
	OnInstanceCreated   func(context.Context, *InstanceEvent)
	OnTransition        func(context.Context, *TransitionEvent)
	OnRejection         func(context.Context, *TransitionEvent)
}
