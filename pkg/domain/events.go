package domain

import (
	"context"
	"time"
)

// EventType defines the category of a mutation event.
type EventType string

const (
	EventCellEdited    EventType = "cell_edited"
	EventRowInserted   EventType = "row_inserted"
	EventRowDeleted    EventType = "row_deleted"
	EventSchemaApplied EventType = "schema_applied"
	EventFlowSorted    EventType = "flow_sorted"
	EventUndo          EventType = "undo"
	EventRedo          EventType = "redo"
	EventRemoteUpdate  EventType = "remote_update"
	EventDataReplaced  EventType = "data_replaced"
	EventRestored      EventType = "restored"
	EventCreated       EventType = "created"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ProjectID string    `json:"project_id"`
}

// UpdateEvent reports a committed project write.
type UpdateEvent struct {
	EventBase
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	Diff    *GridDiff `json:"diff,omitempty"`
	Err     error     `json:"-"`
}

// BroadcastEvent reports a fan-out of an UpdateMessage.
type BroadcastEvent struct {
	EventBase
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
}

// LifecycleHooks defines callbacks for service observability.
type LifecycleHooks struct {
	OnUpdate    func(context.Context, *UpdateEvent)
	OnBroadcast func(context.Context, *BroadcastEvent)
}
