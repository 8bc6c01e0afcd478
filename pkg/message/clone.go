package message

// CloneMessage performs a deep clone of a Message, duplicating nested maps
// and slices to avoid mutation leaks between callers.
func CloneMessage(msg Message) Message {
	clone := Message{Role: msg.Role}
	clone.Parts = cloneParts(msg.Parts)
	clone.ToolInvocations = cloneParts(msg.ToolInvocations)
	if msg.Metadata != nil {
		meta := &Metadata{}
		if msg.Metadata.PendingToolApprovals != nil {
			meta.PendingToolApprovals = make(map[string]PendingApproval, len(msg.Metadata.PendingToolApprovals))
			for id, rec := range msg.Metadata.PendingToolApprovals {
				rec.Args = CloneArgs(rec.Args)
				meta.PendingToolApprovals[id] = rec
			}
		}
		clone.Metadata = meta
	}
	return clone
}

// CloneMessages clones an entire slice of messages.
func CloneMessages(msgs []Message) []Message {
	if len(msgs) == 0 {
		return []Message{}
	}
	out := make([]Message, len(msgs))
	for i, msg := range msgs {
		out[i] = CloneMessage(msg)
	}
	return out
}

// CloneArgs deep clones an argument mapping. Nil stays nil so callers can
// distinguish "absent" from "empty".
func CloneArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	dup := make(map[string]any, len(args))
	for k, v := range args {
		dup[k] = cloneValue(v)
	}
	return dup
}

func cloneParts(parts []Part) []Part {
	if len(parts) == 0 {
		return nil
	}
	out := make([]Part, len(parts))
	for i, p := range parts {
		p.Args = CloneArgs(p.Args)
		p.Input = CloneArgs(p.Input)
		p.Result = cloneValue(p.Result)
		if len(p.ProviderMetadata) > 0 {
			raw := make([]byte, len(p.ProviderMetadata))
			copy(raw, p.ProviderMetadata)
			p.ProviderMetadata = raw
		}
		out[i] = p
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		dup := make(map[string]any, len(val))
		for k, inner := range val {
			dup[k] = cloneValue(inner)
		}
		return dup
	case []any:
		dup := make([]any, len(val))
		for i, inner := range val {
			dup[i] = cloneValue(inner)
		}
		return dup
	default:
		return v
	}
}
