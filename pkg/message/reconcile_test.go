package message

import "testing"

func TestFindToolCallArgsSplitMessages(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, Parts: []Part{{
			Type:       PartToolInvocation,
			State:      StateCall,
			ToolCallID: "c1",
			ToolName:   "weather",
			Args:       map[string]any{"foo": "bar"},
		}}},
		{Role: RoleAssistant, Parts: []Part{{
			Type:       PartToolInvocation,
			State:      StateResult,
			ToolCallID: "c1",
			ToolName:   "weather",
			Args:       map[string]any{},
			Result:     map[string]any{"success": true},
		}}},
	}

	args := FindToolCallArgs(history, "c1")
	if got := args["foo"]; got != "bar" {
		t.Fatalf("expected call-phase args to win, got %v", args)
	}
}

func TestFindToolCallArgsPrefersNewestMatch(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, Parts: []Part{{
			Type: PartToolInvocation, State: StateCall, ToolCallID: "c1",
			Args: map[string]any{"v": "old"},
		}}},
		{Role: RoleAssistant, Parts: []Part{{
			Type: PartToolInvocation, State: StateCall, ToolCallID: "c1",
			Args: map[string]any{"v": "new"},
		}}},
	}
	if got := FindToolCallArgs(history, "c1")["v"]; got != "new" {
		t.Fatalf("expected newest non-empty match, got %v", got)
	}
}

func TestFindToolCallArgsLegacyList(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, ToolInvocations: []Part{{
			Type: PartToolInvocation, State: StateCall, ToolCallID: "legacy-1",
			Args: map[string]any{"city": "Oslo"},
		}}},
	}
	if got := FindToolCallArgs(history, "legacy-1")["city"]; got != "Oslo" {
		t.Fatalf("expected legacy invocation list to be scanned, got %v", got)
	}
}

func TestFindToolCallArgsSkipsNonAssistant(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Parts: []Part{{
			Type: PartToolInvocation, ToolCallID: "c1", Args: map[string]any{"x": 1},
		}}},
	}
	if got := FindToolCallArgs(history, "c1"); len(got) != 0 {
		t.Fatalf("user-authored messages must not satisfy the scan, got %v", got)
	}
}

func TestFindToolCallArgsMissReturnsEmptyMap(t *testing.T) {
	args := FindToolCallArgs(nil, "absent")
	if args == nil {
		t.Fatal("miss must return an empty map, not nil")
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestFindToolCallArgsReturnsClone(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, Parts: []Part{{
			Type: PartToolInvocation, ToolCallID: "c1",
			Args: map[string]any{"nested": map[string]any{"a": 1}},
		}}},
	}
	args := FindToolCallArgs(history, "c1")
	args["nested"].(map[string]any)["a"] = 99
	if history[0].Parts[0].Args["nested"].(map[string]any)["a"] != 1 {
		t.Fatal("reconciled args must be isolated from stored history")
	}
}
