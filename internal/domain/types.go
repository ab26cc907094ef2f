package domain

import (
	"fmt"
	"time"
)

// Side identifies one of the two synchronized systems
type Side string

const (
	// SideA is the first synchronized system
	SideA Side = "a"
	// SideB is the second synchronized system
	SideB Side = "b"
)

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Valid reports whether the side is one of the two known sides
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// SyncAction is the terminal action of a sync scenario
type SyncAction string

const (
	// SyncActionCreate means a new contact was created on the target side
	SyncActionCreate SyncAction = "create"
	// SyncActionUpdate means an existing target contact was updated
	SyncActionUpdate SyncAction = "update"
	// SyncActionSkip means no write was performed (echo, idempotent, or conflict loss)
	SyncActionSkip SyncAction = "skip"
	// SyncActionDelete means the mapping was removed after a source deletion
	SyncActionDelete SyncAction = "delete"
	// SyncActionFailed means the scenario aborted on an error
	SyncActionFailed SyncAction = "failed"
)

// SyncSource identifies which system (or operator) initiated a sync
type SyncSource string

const (
	// SyncSourceSideA marks a sync initiated by a side-A change
	SyncSourceSideA SyncSource = "a"
	// SyncSourceSideB marks a sync initiated by a side-B change
	SyncSourceSideB SyncSource = "b"
	// SyncSourceManual marks a sync initiated by an operator (full sync)
	SyncSourceManual SyncSource = "manual"
)

// SourceForSide converts an inbound side into its sync source
func SourceForSide(s Side) SyncSource {
	if s == SideA {
		return SyncSourceSideA
	}
	return SyncSourceSideB
}

// EventType is the webhook event discriminator
type EventType string

const (
	// EventTypeCreated signals a contact creation notification
	EventTypeCreated EventType = "created"
	// EventTypeUpdated signals a contact update notification
	EventTypeUpdated EventType = "updated"
	// EventTypeDeleted signals a contact deletion notification
	EventTypeDeleted EventType = "deleted"
)

// FlatFields is a normalized flat field map keyed by canonical field name.
// Values are always plain strings; absent fields are absent keys or "".
type FlatFields map[string]string

// Clone returns a shallow copy of the field map
func (f FlatFields) Clone() FlatFields {
	out := make(FlatFields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ContactRecord is a contact as returned by either side's provider.
// Fields holds the raw, system-specific payload; UpdatedAt is the
// provider-reported last-modified timestamp in whatever format the
// provider uses (parsed only by the conflict resolver).
type ContactRecord struct {
	ID        string
	Fields    map[string]interface{}
	UpdatedAt string
}

// WebhookEvent is a single already-verified inbound notification
type WebhookEvent struct {
	Side      Side                   `json:"side"`
	EventType EventType              `json:"event_type"`
	ContactID string                 `json:"contact_id"`
	Record    map[string]interface{} `json:"record"`
}

// SyncResult is the structured outcome of one sync scenario
type SyncResult struct {
	Action       SyncAction `json:"action"`
	SourceSystem Side       `json:"source_system"`
	SideAID      string     `json:"side_a_id"`
	SideBID      string     `json:"side_b_id"`
}

// SweepStats aggregates the outcome of a full reconciliation sweep
type SweepStats struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}

// Add accumulates another stats block into this one
func (s *SweepStats) Add(o SweepStats) {
	s.Synced += o.Synced
	s.Skipped += o.Skipped
	s.Errors += o.Errors
	s.Total += o.Total
}

// AuditEvent is one sync decision as published to the message broker.
// EventID is a ULID matching the persisted audit log row.
type AuditEvent struct {
	EventID      string                 `json:"event_id"`
	Tenant       string                 `json:"tenant"`
	Action       SyncAction             `json:"action"`
	SourceSystem SyncSource             `json:"source_system"`
	SideAID      string                 `json:"side_a_id,omitempty"`
	SideBID      string                 `json:"side_b_id,omitempty"`
	Detail       map[string]interface{} `json:"detail,omitempty"`
	DurationMS   int64                  `json:"duration_ms"`
	Error        string                 `json:"error,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// StatusError is an error carrying the HTTP status of a failed outbound
// call so the retry executor can classify it without inspecting response
// bodies. RetryAfter is populated from the Retry-After header on 429s.
type StatusError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
}
