package message

import "encoding/json"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartType discriminates the kind of content carried by a Part.
type PartType string

const (
	PartText           PartType = "text"
	PartReasoning      PartType = "reasoning"
	PartToolInvocation PartType = "tool-invocation"
	PartToolResult     PartType = "tool-result"
)

// InvocationState tracks the lifecycle phase of a tool-invocation part. A
// single logical tool call may be persisted as two messages over time: one
// with StateCall (args populated) and a later one with StateResult whose args
// may legally be empty. The tool call id is the only stable join key.
type InvocationState string

const (
	StateCall   InvocationState = "call"
	StateResult InvocationState = "result"
)

// Part is a single piece of content within a message. Only the fields
// matching Type are meaningful; the rest stay at their zero values.
type Part struct {
	Type PartType `json:"type"`

	// Text carries the payload for text and reasoning parts.
	Text string `json:"text,omitempty"`

	// Tool-invocation and tool-result fields.
	State      InvocationState `json:"state,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Args       map[string]any  `json:"args,omitempty"`
	Result     any             `json:"result,omitempty"`

	// Input is populated on tool-result parts when a provider requires the
	// original call arguments alongside the result. It is set during outbound
	// normalization, never on stored history.
	Input map[string]any `json:"input,omitempty"`

	// ProviderMetadata is an opaque per-provider namespace, e.g.
	// {"openai": {"itemId": "rs_..."}}. Kept as raw JSON so unknown provider
	// shapes round-trip through persistence untouched.
	ProviderMetadata json.RawMessage `json:"providerMetadata,omitempty"`
}

// PendingApproval marks a tool call that is waiting for an external decision.
// It lives inside an assistant message's metadata, keyed by tool call id.
type PendingApproval struct {
	ToolName string         `json:"toolName"`
	Args     map[string]any `json:"args,omitempty"`
	Type     string         `json:"type"`
	RunID    string         `json:"runId,omitempty"`
}

// ApprovalType is the value of PendingApproval.Type.
const ApprovalType = "approval"

// Metadata is the narrowly scoped mutable annex of a message. Adding and
// removing pending approvals is the only sanctioned in-place edit of a
// persisted message.
type Metadata struct {
	PendingToolApprovals map[string]PendingApproval `json:"pendingToolApprovals,omitempty"`
}

// Message is a single conversational turn. Messages are append-only once
// persisted; see Metadata for the one exception.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`

	// ToolInvocations is the legacy flat representation of tool calls kept
	// for histories written before parts carried invocation state. Readers
	// must consult it alongside Parts.
	ToolInvocations []Part `json:"toolInvocations,omitempty"`
}

// Text returns the concatenated text content of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Type == PartText {
			out += p.Text
		}
	}
	return out
}

// AddPendingApproval records an approval marker for the given tool call id,
// allocating the metadata containers on first use. At most one record exists
// per tool call id; a second add for the same id overwrites the first.
func (m *Message) AddPendingApproval(toolCallID string, rec PendingApproval) {
	if m.Metadata == nil {
		m.Metadata = &Metadata{}
	}
	if m.Metadata.PendingToolApprovals == nil {
		m.Metadata.PendingToolApprovals = make(map[string]PendingApproval, 1)
	}
	m.Metadata.PendingToolApprovals[toolCallID] = rec
}

// RemovePendingApproval deletes the approval marker for the given tool call
// id. When the deletion empties the approval map, the map itself is dropped,
// and an otherwise-empty metadata container is dropped with it. Returns true
// when a record was actually removed.
func (m *Message) RemovePendingApproval(toolCallID string) bool {
	if m.Metadata == nil || m.Metadata.PendingToolApprovals == nil {
		return false
	}
	if _, ok := m.Metadata.PendingToolApprovals[toolCallID]; !ok {
		return false
	}
	delete(m.Metadata.PendingToolApprovals, toolCallID)
	if len(m.Metadata.PendingToolApprovals) == 0 {
		m.Metadata = nil
	}
	return true
}

// PendingApprovalFor looks up the approval marker for a tool call id.
func (m Message) PendingApprovalFor(toolCallID string) (PendingApproval, bool) {
	if m.Metadata == nil || m.Metadata.PendingToolApprovals == nil {
		return PendingApproval{}, false
	}
	rec, ok := m.Metadata.PendingToolApprovals[toolCallID]
	return rec, ok
}
