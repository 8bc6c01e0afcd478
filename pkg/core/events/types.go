package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType enumerates the events the tool-call step emits. The list is kept
// small and explicit so consumers never have to match loosely defined names.
type EventType string

const (
	// ToolCallApproval fires when a tool call suspends awaiting approval.
	ToolCallApproval EventType = "tool-call-approval"
	// ToolCallSuspended fires when a tool pauses itself mid-execution.
	ToolCallSuspended EventType = "tool-call-suspended"
)

// OriginAgent marks events emitted by the agent's own execution step, as
// opposed to events relayed from external schedulers.
const OriginAgent = "agent"

// Event is a single occurrence in the system. Structured payloads live in
// the Payload field and are type-asserted by subscribers.
type Event struct {
	ID        string    // generated when empty
	Type      EventType // required
	Timestamp time.Time // auto-populated when zero
	RunID     string
	Origin    string
	Payload   any
}

// Validate performs cheap sanity checks for callers needing stronger
// contracts than the zero-value guarantees.
func (e Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("events: missing type")
	}
	return nil
}

// ApprovalPayload accompanies ToolCallApproval events.
type ApprovalPayload struct {
	ToolCallID string
	ToolName   string
	Args       map[string]any
}

// SuspendedPayload accompanies ToolCallSuspended events. Payload is the
// opaque value the tool handed to the suspend capability.
type SuspendedPayload struct {
	ToolCallID string
	ToolName   string
	Payload    json.RawMessage
}
