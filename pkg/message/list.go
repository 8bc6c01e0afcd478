package message

import "sync"

// List holds the conversation for a single run: the input messages the run
// started from and the response messages produced while it executes. It is
// concurrency safe; all views return deep clones so callers can never mutate
// stored history behind the lock. The approval-metadata helpers below are the
// single sanctioned in-place edit and run inside the list's critical section.
type List struct {
	mu       sync.RWMutex
	input    []Message
	response []Message
}

// NewList seeds a list with the input messages of a run.
func NewList(input []Message) *List {
	return &List{input: CloneMessages(input)}
}

// AppendResponse stores a message produced during the current run.
func (l *List) AppendResponse(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.response = append(l.response, CloneMessage(msg))
}

// All returns every message, input first, then responses in append order.
func (l *List) All() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, 0, len(l.input)+len(l.response))
	out = append(out, CloneMessages(l.input)...)
	out = append(out, CloneMessages(l.response)...)
	return out
}

// Input returns the messages the run started from.
func (l *List) Input() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return CloneMessages(l.input)
}

// Response returns only the messages produced during this run.
func (l *List) Response() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return CloneMessages(l.response)
}

// Len reports the total number of stored messages.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.input) + len(l.response)
}

// AttachPendingApproval records an approval marker on the most recent
// assistant message of the in-flight response, scanning newest to oldest.
// Returns false when the response holds no assistant message to carry it.
func (l *List) AttachPendingApproval(toolCallID string, rec PendingApproval) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.response) - 1; i >= 0; i-- {
		if l.response[i].Role != RoleAssistant {
			continue
		}
		l.response[i].AddPendingApproval(toolCallID, rec)
		return true
	}
	return false
}

// RemovePendingApproval deletes the approval marker for a tool call id from
// whichever message still holds it. Persistence may have moved the marker
// between suspend and resume, so the scan covers response and input messages
// alike, newest first. Returns true when a record was removed.
func (l *List) RemovePendingApproval(toolCallID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.response) - 1; i >= 0; i-- {
		if l.response[i].RemovePendingApproval(toolCallID) {
			return true
		}
	}
	for i := len(l.input) - 1; i >= 0; i-- {
		if l.input[i].RemovePendingApproval(toolCallID) {
			return true
		}
	}
	return false
}

// PendingApprovals collects every unresolved approval marker across the list,
// keyed by tool call id.
func (l *List) PendingApprovals() map[string]PendingApproval {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]PendingApproval)
	collect := func(msgs []Message) {
		for _, msg := range msgs {
			if msg.Metadata == nil {
				continue
			}
			for id, rec := range msg.Metadata.PendingToolApprovals {
				rec.Args = CloneArgs(rec.Args)
				out[id] = rec
			}
		}
	}
	collect(l.input)
	collect(l.response)
	return out
}
