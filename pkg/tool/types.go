package tool

import "encoding/json"

// Request is a tool-call request as parsed from model output. Immutable once
// created; the tool call id is unique per run.
type Request struct {
	ToolCallID       string         `json:"toolCallId"`
	ToolName         string         `json:"toolName"`
	Args             map[string]any `json:"args,omitempty"`
	ProviderExecuted bool           `json:"providerExecuted,omitempty"`

	// Output is present only when the provider already executed the call.
	Output any `json:"output,omitempty"`
}

// Output is what the step hands back to the scheduler: the original request
// fields plus exactly one of Result, Error or Checkpoint. Execution failures
// surface here as data, never as a raised error, so the calling workflow can
// continue or branch.
type Output struct {
	Request

	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	// Checkpoint is set when the call suspended instead of finishing.
	Checkpoint *Checkpoint `json:"checkpoint,omitempty"`
}

// Suspended reports whether the step yielded a checkpoint.
func (o *Output) Suspended() bool {
	return o != nil && o.Checkpoint != nil
}

// ApprovalRequest describes a call waiting for an approval decision.
type ApprovalRequest struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args,omitempty"`
}

// Checkpoint is a serializable snapshot sufficient to pause a tool call and
// resume it in another process. Exactly one of RequireToolApproval and
// ToolCallSuspended is set, identifying which suspension path produced it.
// The resume label equals the tool call id so multiple pending checkpoints
// in one run stay independently addressable.
type Checkpoint struct {
	Label string `json:"label"`

	RequireToolApproval *ApprovalRequest `json:"requireToolApproval,omitempty"`
	ToolCallSuspended   json.RawMessage  `json:"toolCallSuspended,omitempty"`

	// State is the serialized snapshot of broader run state captured at the
	// moment of suspension. Together with the persisted history it must be
	// sufficient to resume with no other side channel.
	State json.RawMessage `json:"state,omitempty"`
}

// Resume is the input fed back into a suspended step. Approved applies to
// approval resumption; Payload is the tool-defined value for mid-execution
// resumption. Which one is meaningful is determined by the checkpoint that
// produced the suspension.
type Resume struct {
	Approved *bool           `json:"approved,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ResumeApproved builds an approval resume decision.
func ResumeApproved(approved bool) *Resume {
	return &Resume{Approved: &approved}
}

// ResumeWithPayload builds a mid-execution resume value.
func ResumeWithPayload(payload json.RawMessage) *Resume {
	return &Resume{Payload: payload}
}
