package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageStart EventType = "stage_start"
	EventStageDone  EventType = "stage_done"
	EventValidated  EventType = "stage_validated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StageEvent represents the start or completion of one stage.
type StageEvent struct {
	EventBase
	Stage    string        `json:"stage"`
	Rows     int           `json:"rows,omitempty"`
	Columns  int           `json:"columns,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// ValidationEvent reports the outcome of comparing a stage against its reference table.
type ValidationEvent struct {
	EventBase
	Stage      string `json:"stage"`
	Passed     bool   `json:"passed"`
	Mismatches int    `json:"mismatches"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks may be called concurrently from different stages.
type LifecycleHooks struct {
	OnStageStart func(context.Context, *StageEvent)
	OnStageDone  func(context.Context, *StageEvent)
	OnValidated  func(context.Context, *ValidationEvent)
}
