package message

import "log"

// FindToolCallArgs recovers the original arguments of a tool call by scanning
// history. The call and result phases of one logical invocation may be stored
// as separate messages, and the result phase may carry empty args, so the
// scan runs newest to oldest over assistant messages and only a part with
// non-empty args satisfies it. Both the structured parts and the legacy flat
// invocation list are consulted. When nothing matches, an empty map is
// returned; callers must treat that as "unknown", not as an error.
func FindToolCallArgs(msgs []Message, toolCallID string) map[string]any {
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role != RoleAssistant {
			continue
		}
		if args := matchArgs(msg.Parts, toolCallID); args != nil {
			return args
		}
		if args := matchArgs(msg.ToolInvocations, toolCallID); args != nil {
			return args
		}
	}
	log.Printf("message: no args recovered for tool call %s", toolCallID)
	return map[string]any{}
}

// matchArgs returns the first non-empty args mapping for the tool call id.
// The invocation state is deliberately ignored: a call-phase and a
// result-phase part are equally valid sources as long as they carry args.
func matchArgs(parts []Part, toolCallID string) map[string]any {
	for _, p := range parts {
		if p.Type != PartToolInvocation && p.Type != PartToolResult {
			continue
		}
		if p.ToolCallID != toolCallID || len(p.Args) == 0 {
			continue
		}
		return CloneArgs(p.Args)
	}
	return nil
}
