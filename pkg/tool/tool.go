package tool

import (
	"context"
	"encoding/json"
	"io"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

// Tool is the minimal contract every registered capability satisfies. A tool
// implementing only this interface is passive: the step resolves it, runs its
// hooks, and returns the request unchanged. Client-side tools that only want
// to observe input are registered this way.
type Tool interface {
	// Name returns the unique identifier of the tool.
	Name() string

	// Description gives a short human readable summary.
	Description() string
}

// Executable is a tool the step can actually run.
type Executable interface {
	Tool

	// Execute runs the tool. ctx carries cancellation and the call's
	// tracing span, so tools can attach child spans to the same trace.
	// Returning an ExecOutput with a non-nil Suspend pauses the call
	// mid-execution instead of finishing it.
	Execute(ctx context.Context, in ExecInput) (*ExecOutput, error)
}

// InputObserver is implemented by tools that want to see their input before
// execution (or instead of it, for passive tools). Failures are logged and
// swallowed; they never block execution.
type InputObserver interface {
	OnInputAvailable(ctx context.Context, in InputNotice) error
}

// ApprovalGated is implemented by tools that must not run without an
// external decision. The run-wide policy flag gates execution the same way
// for every tool.
type ApprovalGated interface {
	RequiresApproval() bool
}

// InputNotice is handed to OnInputAvailable.
type InputNotice struct {
	ToolCallID string
	Input      map[string]any
	Messages   []message.Message
}

// ExecInput carries everything a tool's execute routine may need.
type ExecInput struct {
	ToolCallID string
	Args       map[string]any

	// Messages is a snapshot of the conversation so far.
	Messages []message.Message

	// Writer receives incremental output while the tool runs. Never nil.
	Writer io.Writer

	// Resume carries the tool-defined payload when this invocation re-enters
	// a previously suspended execution, and on approval resumption signals
	// that the call was approved. Nil on a fresh call.
	Resume json.RawMessage
}

// SuspendRequest is the explicit effect a tool returns to pause itself.
// Payload is opaque to the step; it travels inside the checkpoint and is
// surfaced on the suspended event.
type SuspendRequest struct {
	Payload json.RawMessage
}

// ExecOutput is the outcome of an execute routine. When Suspend is non-nil
// the Value is ignored and the step yields a checkpoint instead of a result.
type ExecOutput struct {
	Value   any
	Suspend *SuspendRequest
}
