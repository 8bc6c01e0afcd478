// Package compat applies per-provider structural fixes to the outgoing
// message sequence. All fixups operate on clones; the canonical stored
// history is never mutated.
package compat

import (
	"github.com/tidwall/gjson"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

// placeholderText is the minimal content of a synthetic user message inserted
// to satisfy provider ordering constraints without altering meaning.
const placeholderText = "."

// Normalize applies every outbound fixup in sequence and returns the
// provider-ready message list.
func Normalize(msgs []message.Message) ([]message.Message, error) {
	fixed, err := EnsureLeadingUserMessage(msgs)
	if err != nil {
		return nil, err
	}
	return EnrichToolResultInputs(fixed), nil
}

// EnsureLeadingUserMessage guarantees the first non-system message has role
// user. When the first non-system message is an assistant message, a
// synthetic minimal user message is inserted immediately before it. A
// conversation holding only system messages is a hard usage error: there is
// nothing to respond to.
func EnsureLeadingUserMessage(msgs []message.Message) ([]message.Message, error) {
	cloned := message.CloneMessages(msgs)
	first := -1
	for i, m := range cloned {
		if m.Role != message.RoleSystem {
			first = i
			break
		}
	}
	if first == -1 {
		return nil, &UsageError{
			ID:       "AGENT_NO_USER_OR_ASSISTANT_MESSAGES",
			Domain:   DomainAgent,
			Category: CategoryUser,
			Message:  "conversation contains no user or assistant messages",
		}
	}
	if cloned[first].Role != message.RoleAssistant {
		return cloned, nil
	}

	synthetic := message.Message{
		Role:  message.RoleUser,
		Parts: []message.Part{{Type: message.PartText, Text: placeholderText}},
	}
	out := make([]message.Message, 0, len(cloned)+1)
	out = append(out, cloned[:first]...)
	out = append(out, synthetic)
	out = append(out, cloned[first:]...)
	return out, nil
}

// EnrichToolResultInputs populates the Input field of every tool-result part
// inside tool-role messages, recovering the original call arguments through
// history reconciliation. Some provider APIs reject tool results that lack
// the call input.
func EnrichToolResultInputs(msgs []message.Message) []message.Message {
	out := message.CloneMessages(msgs)
	for i := range out {
		if out[i].Role != message.RoleTool {
			continue
		}
		for j := range out[i].Parts {
			p := &out[i].Parts[j]
			if p.Type != message.PartToolResult || p.ToolCallID == "" {
				continue
			}
			p.Input = message.FindToolCallArgs(msgs, p.ToolCallID)
		}
	}
	return out
}

// ReasoningItemID extracts the provider-assigned identity of a reasoning
// part when one is present under the openai metadata namespace. It is a pure
// read-side classifier used upstream to deduplicate reasoning fragments.
func ReasoningItemID(p message.Part) (string, bool) {
	if p.Type != message.PartReasoning || len(p.ProviderMetadata) == 0 {
		return "", false
	}
	res := gjson.GetBytes(p.ProviderMetadata, "openai.itemId")
	if !res.Exists() {
		res = gjson.GetBytes(p.ProviderMetadata, "openai.reasoningId")
	}
	if id := res.String(); res.Exists() && id != "" {
		return id, true
	}
	return "", false
}
