package compat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

func TestEnsureLeadingUserMessageInsertsSynthetic(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleSystem, Parts: []message.Part{{Type: message.PartText, Text: "sys"}}},
		{Role: message.RoleAssistant, Parts: []message.Part{{Type: message.PartText, Text: "hello"}}},
	}

	fixed, err := EnsureLeadingUserMessage(msgs)
	require.NoError(t, err)
	require.Len(t, fixed, 3)
	assert.Equal(t, message.RoleSystem, fixed[0].Role)
	assert.Equal(t, message.RoleUser, fixed[1].Role)
	assert.Equal(t, placeholderText, fixed[1].Text())
	assert.Equal(t, message.RoleAssistant, fixed[2].Role)
}

func TestEnsureLeadingUserMessageNoop(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleUser, Parts: []message.Part{{Type: message.PartText, Text: "hi"}}},
		{Role: message.RoleAssistant},
	}
	fixed, err := EnsureLeadingUserMessage(msgs)
	require.NoError(t, err)
	assert.Len(t, fixed, 2)
}

func TestEnsureLeadingUserMessageOnlySystem(t *testing.T) {
	msgs := []message.Message{{Role: message.RoleSystem}}

	_, err := EnsureLeadingUserMessage(msgs)
	require.Error(t, err)

	var usage *UsageError
	require.True(t, errors.As(err, &usage))
	assert.Equal(t, DomainAgent, usage.Domain)
	assert.Equal(t, CategoryUser, usage.Category)
}

func TestEnsureLeadingUserMessageDoesNotMutateInput(t *testing.T) {
	msgs := []message.Message{{Role: message.RoleAssistant}}
	fixed, err := EnsureLeadingUserMessage(msgs)
	require.NoError(t, err)
	require.Len(t, fixed, 2)
	assert.Len(t, msgs, 1, "canonical sequence must stay untouched")
}

func TestEnrichToolResultInputs(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleUser, Parts: []message.Part{{Type: message.PartText, Text: "weather?"}}},
		{Role: message.RoleAssistant, Parts: []message.Part{{
			Type: message.PartToolInvocation, State: message.StateCall,
			ToolCallID: "c1", ToolName: "weather", Args: map[string]any{"foo": "bar"},
		}}},
		{Role: message.RoleTool, Parts: []message.Part{{
			Type: message.PartToolResult, ToolCallID: "c1", Result: map[string]any{"success": true},
		}}},
	}

	enriched := EnrichToolResultInputs(msgs)
	require.Len(t, enriched, 3)
	assert.Equal(t, map[string]any{"foo": "bar"}, enriched[2].Parts[0].Input)
	assert.Nil(t, msgs[2].Parts[0].Input, "stored history must stay untouched")
}

func TestEnrichToolResultInputsSplitMessages(t *testing.T) {
	// The result phase carries empty args; the reconciler must recover the
	// call-phase args anyway.
	msgs := []message.Message{
		{Role: message.RoleUser, Parts: []message.Part{{Type: message.PartText, Text: "q"}}},
		{Role: message.RoleAssistant, Parts: []message.Part{{
			Type: message.PartToolInvocation, State: message.StateCall,
			ToolCallID: "c1", Args: map[string]any{"foo": "bar"},
		}}},
		{Role: message.RoleAssistant, Parts: []message.Part{{
			Type: message.PartToolInvocation, State: message.StateResult,
			ToolCallID: "c1", Args: map[string]any{}, Result: map[string]any{"success": true},
		}}},
		{Role: message.RoleTool, Parts: []message.Part{{
			Type: message.PartToolResult, ToolCallID: "c1",
		}}},
	}

	enriched := EnrichToolResultInputs(msgs)
	assert.Equal(t, map[string]any{"foo": "bar"}, enriched[3].Parts[0].Input)
}

func TestReasoningItemID(t *testing.T) {
	cases := []struct {
		name string
		part message.Part
		want string
		ok   bool
	}{
		{
			name: "item id present",
			part: message.Part{Type: message.PartReasoning, ProviderMetadata: json.RawMessage(`{"openai":{"itemId":"rs_123"}}`)},
			want: "rs_123",
			ok:   true,
		},
		{
			name: "reasoning id fallback",
			part: message.Part{Type: message.PartReasoning, ProviderMetadata: json.RawMessage(`{"openai":{"reasoningId":"r_9"}}`)},
			want: "r_9",
			ok:   true,
		},
		{
			name: "wrong namespace",
			part: message.Part{Type: message.PartReasoning, ProviderMetadata: json.RawMessage(`{"anthropic":{"itemId":"x"}}`)},
		},
		{
			name: "not a reasoning part",
			part: message.Part{Type: message.PartText, ProviderMetadata: json.RawMessage(`{"openai":{"itemId":"rs_123"}}`)},
		},
		{
			name: "no metadata",
			part: message.Part{Type: message.PartReasoning},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ReasoningItemID(tc.part)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToAnthropic(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleSystem, Parts: []message.Part{{Type: message.PartText, Text: "be brief"}}},
		{Role: message.RoleUser, Parts: []message.Part{{Type: message.PartText, Text: "weather?"}}},
		{Role: message.RoleAssistant, Parts: []message.Part{{
			Type: message.PartToolInvocation, State: message.StateCall,
			ToolCallID: "c1", ToolName: "weather", Args: map[string]any{"city": "Oslo"},
		}}},
		{Role: message.RoleTool, Parts: []message.Part{{
			Type: message.PartToolResult, ToolCallID: "c1", Result: map[string]any{"temp": 3.0},
		}}},
	}

	system, params, err := ToAnthropic(msgs)
	require.NoError(t, err)
	require.Len(t, system, 1)
	assert.Equal(t, "be brief", system[0].Text)
	// user, assistant, tool-result-as-user
	require.Len(t, params, 3)
	assert.Equal(t, "user", string(params[0].Role))
	assert.Equal(t, "assistant", string(params[1].Role))
	assert.Equal(t, "user", string(params[2].Role))
}

func TestToAnthropicOnlySystemFails(t *testing.T) {
	_, _, err := ToAnthropic([]message.Message{{Role: message.RoleSystem}})
	var usage *UsageError
	require.True(t, errors.As(err, &usage))
}

func TestToOpenAI(t *testing.T) {
	msgs := []message.Message{
		{Role: message.RoleAssistant, Parts: []message.Part{
			{Type: message.PartText, Text: "calling"},
			{
				Type: message.PartToolInvocation, State: message.StateCall,
				ToolCallID: "c1", ToolName: "weather", Args: map[string]any{"city": "Oslo"},
			},
		}},
		{Role: message.RoleTool, Parts: []message.Part{{
			Type: message.PartToolResult, ToolCallID: "c1", Result: "3 degrees",
		}}},
	}

	out, err := ToOpenAI(msgs)
	require.NoError(t, err)
	// synthetic leading user, assistant, tool
	require.Len(t, out, 3)
	require.NotNil(t, out[0].OfUser)
	require.NotNil(t, out[1].OfAssistant)
	require.Len(t, out[1].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "c1", out[1].OfAssistant.ToolCalls[0].ID)
	require.NotNil(t, out[2].OfTool)
}
