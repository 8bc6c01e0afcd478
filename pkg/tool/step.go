// Package tool implements the tool-invocation execution step of an agent
// run: resolving a requested tool, gating execution behind approval,
// executing with a mid-flight suspend capability, and yielding durable
// checkpoints the external scheduler can resume from.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/stellarlinkco/toolstep/pkg/core/events"
	"github.com/stellarlinkco/toolstep/pkg/memory"
	"github.com/stellarlinkco/toolstep/pkg/message"
	"github.com/stellarlinkco/toolstep/pkg/trace"
)

const (
	spanToolCall = "agent.toolCall"

	resultNotApproved = "Tool call was not approved and was not executed."
)

// StepOptions wires the step's collaborators. Registry and Messages are
// required; everything else degrades gracefully when absent.
type StepOptions struct {
	Registry *Registry
	Messages *message.List

	// Queue flushes history before any suspension yields control.
	Queue memory.SaveQueue
	// Threads is consulted (and populated) before flushing so the flush
	// always targets an existing thread.
	Threads memory.Store

	Tracer trace.Tracer
	Bus    *events.Bus

	RunID      string
	ThreadID   string
	ResourceID string

	// RequireApproval is the run-wide policy: when set, every tool call
	// suspends for approval regardless of what the tool declares.
	RequireApproval bool

	// Memory travels opaquely to the save queue on every flush.
	Memory memory.Config

	// Snapshot captures broader run state for checkpoints. Nil means
	// checkpoints carry only the suspension itself.
	Snapshot func() (json.RawMessage, error)

	// Output receives incremental tool output. Defaults to io.Discard.
	Output io.Writer
}

// Step executes tool-call requests for one run. Invocations for the same
// tool call id must not run concurrently; the id is the suspend/resume
// correlation key.
type Step struct {
	opts StepOptions
}

// NewStep validates the options and builds a step.
func NewStep(opts StepOptions) (*Step, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("tool: step requires a registry")
	}
	if opts.Messages == nil {
		return nil, fmt.Errorf("tool: step requires a message list")
	}
	if opts.Tracer == nil {
		tracer, err := trace.NewTracer(trace.Config{})
		if err != nil {
			return nil, err
		}
		opts.Tracer = tracer
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	return &Step{opts: opts}, nil
}

// Run fulfils a single tool-call request. resume is nil on a fresh call and
// carries the decision or payload when re-entering a suspended one. Run
// never returns a Go error: soft failures become descriptive results,
// execution failures become Output.Error, and suspensions become
// Output.Checkpoint.
func (s *Step) Run(ctx context.Context, req Request, resume *Resume) *Output {
	// The returned ctx carries the span; the hook and the execute routine
	// receive it so tools can attach child spans to the call's trace.
	ctx, span := s.opts.Tracer.StartSpan(ctx, spanToolCall, map[string]any{
		"toolName":   req.ToolName,
		"toolCallId": req.ToolCallID,
		"args":       jsonAttr(req.Args),
	})

	// Already fulfilled by the provider: telemetry only.
	if req.ProviderExecuted {
		span.SetAttributes(map[string]any{"result": jsonAttr(req.Output), "providerExecuted": true})
		span.End()
		return &Output{Request: req, Result: req.Output}
	}

	t, ok := s.opts.Registry.Resolve(req.ToolName)
	if !ok {
		span.SetAttributes(map[string]any{"result": "tool not found"})
		span.End()
		return &Output{Request: req, Result: fmt.Sprintf("Tool %s not found", req.ToolName)}
	}

	s.notifyInput(ctx, t, req)

	// Mid-execution resumption skips the gate: approval, when needed, was
	// already granted before the tool first ran.
	midExec := resume != nil && resume.Approved == nil && len(resume.Payload) > 0
	if s.approvalRequired(t) && !midExec {
		if resume == nil || resume.Approved == nil {
			return s.suspendForApproval(ctx, req, span)
		}
		out, done := s.settleApproval(ctx, req, resume, span)
		if done {
			return out
		}
	}

	return s.execute(ctx, t, req, resume, span)
}

func (s *Step) approvalRequired(t Tool) bool {
	if s.opts.RequireApproval {
		return true
	}
	gated, ok := t.(ApprovalGated)
	return ok && gated.RequiresApproval()
}

func (s *Step) notifyInput(ctx context.Context, t Tool, req Request) {
	obs, ok := t.(InputObserver)
	if !ok {
		return
	}
	notice := InputNotice{
		ToolCallID: req.ToolCallID,
		Input:      message.CloneArgs(req.Args),
		Messages:   s.opts.Messages.All(),
	}
	if err := obs.OnInputAvailable(ctx, notice); err != nil {
		log.Printf("step: onInputAvailable for %s failed: %v", req.ToolName, err)
	}
}

// suspendForApproval persists a pending-approval marker, flushes durably and
// yields an approval checkpoint labeled with the tool call id.
func (s *Step) suspendForApproval(ctx context.Context, req Request, span trace.Span) *Output {
	s.publish(events.Event{
		Type:    events.ToolCallApproval,
		Payload: events.ApprovalPayload{ToolCallID: req.ToolCallID, ToolName: req.ToolName, Args: message.CloneArgs(req.Args)},
	})

	rec := message.PendingApproval{
		ToolName: req.ToolName,
		Args:     message.CloneArgs(req.Args),
		Type:     message.ApprovalType,
		RunID:    s.opts.RunID,
	}
	if !s.opts.Messages.AttachPendingApproval(req.ToolCallID, rec) {
		log.Printf("step: no assistant message to carry approval marker for %s", req.ToolCallID)
	}
	s.flush(ctx)

	span.SetAttributes(map[string]any{"suspended": "approval"})
	span.End()

	return &Output{Request: req, Checkpoint: &Checkpoint{
		Label: req.ToolCallID,
		RequireToolApproval: &ApprovalRequest{
			ToolCallID: req.ToolCallID,
			ToolName:   req.ToolName,
			Args:       message.CloneArgs(req.Args),
		},
		State: s.snapshot(),
	}}
}

// settleApproval removes the pending marker and either terminates the call
// (declined) or lets it fall through to execution. done reports whether the
// returned output is final.
func (s *Step) settleApproval(ctx context.Context, req Request, resume *Resume, span trace.Span) (*Output, bool) {
	if !s.opts.Messages.RemovePendingApproval(req.ToolCallID) {
		log.Printf("step: no pending approval marker found for %s", req.ToolCallID)
	}
	s.flush(ctx)

	if !*resume.Approved {
		span.SetAttributes(map[string]any{"approved": false})
		span.End()
		return &Output{Request: req, Result: resultNotApproved}, true
	}
	span.SetAttributes(map[string]any{"approved": true})
	return nil, false
}

func (s *Step) execute(ctx context.Context, t Tool, req Request, resume *Resume, span trace.Span) *Output {
	exec, ok := t.(Executable)
	if !ok {
		// Passive tool: the request is returned unchanged.
		span.SetAttributes(map[string]any{"passive": true})
		span.End()
		return &Output{Request: req}
	}

	out, err := exec.Execute(ctx, ExecInput{
		ToolCallID: req.ToolCallID,
		Args:       message.CloneArgs(req.Args),
		Messages:   s.opts.Messages.All(),
		Writer:     s.opts.Output,
		Resume:     resumeData(resume),
	})
	if err != nil {
		span.RecordException(err)
		span.SetStatus(false, err.Error())
		span.End()
		return &Output{Request: req, Error: err.Error()}
	}

	if out != nil && out.Suspend != nil {
		return s.suspendMidExecution(ctx, req, out.Suspend, span)
	}

	var result any
	if out != nil {
		result = out.Value
	}
	span.SetAttributes(map[string]any{"result": jsonAttr(result)})
	span.End()
	return &Output{Request: req, Result: result}
}

// suspendMidExecution handles the tool-initiated suspension path: same
// durability ordering as approval suspension, different checkpoint shape.
func (s *Step) suspendMidExecution(ctx context.Context, req Request, suspend *SuspendRequest, span trace.Span) *Output {
	s.publish(events.Event{
		Type:    events.ToolCallSuspended,
		Payload: events.SuspendedPayload{ToolCallID: req.ToolCallID, ToolName: req.ToolName, Payload: suspend.Payload},
	})
	s.flush(ctx)

	span.SetAttributes(map[string]any{"suspended": "tool"})
	span.End()

	return &Output{Request: req, Checkpoint: &Checkpoint{
		Label:             req.ToolCallID,
		ToolCallSuspended: suspend.Payload,
		State:             s.snapshot(),
	}}
}

// flush makes pending history durable. The thread is ensured first so the
// flush never targets a missing thread. All failures here are bookkeeping:
// logged and swallowed, never a reason to fail the run.
func (s *Step) flush(ctx context.Context) {
	if s.opts.Queue == nil {
		return
	}
	if s.opts.Threads != nil && s.opts.ThreadID != "" {
		if _, err := s.opts.Threads.GetThreadByID(ctx, s.opts.ThreadID); err != nil {
			if !errors.Is(err, memory.ErrThreadNotFound) {
				log.Printf("step: thread lookup for %s failed: %v", s.opts.ThreadID, err)
			} else if _, err := s.opts.Threads.CreateThread(ctx, &memory.Thread{ID: s.opts.ThreadID, ResourceID: s.opts.ResourceID}); err != nil {
				log.Printf("step: create thread %s failed: %v", s.opts.ThreadID, err)
			}
		}
	}
	if err := s.opts.Queue.Flush(ctx, s.opts.Messages.All(), s.opts.ThreadID, s.opts.Memory); err != nil {
		log.Printf("step: flush for thread %s failed: %v", s.opts.ThreadID, err)
	}
}

func (s *Step) snapshot() json.RawMessage {
	if s.opts.Snapshot == nil {
		return nil
	}
	snap, err := s.opts.Snapshot()
	if err != nil {
		log.Printf("step: run-state snapshot failed: %v", err)
		return nil
	}
	return snap
}

func (s *Step) publish(e events.Event) {
	if s.opts.Bus == nil {
		return
	}
	e.RunID = s.opts.RunID
	e.Origin = events.OriginAgent
	s.opts.Bus.Publish(e)
}

func resumeData(resume *Resume) json.RawMessage {
	if resume == nil {
		return nil
	}
	if len(resume.Payload) > 0 {
		return resume.Payload
	}
	if resume.Approved != nil {
		data, err := json.Marshal(map[string]bool{"approved": *resume.Approved})
		if err != nil {
			return nil
		}
		return data
	}
	return nil
}

func jsonAttr(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
