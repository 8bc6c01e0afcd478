package compat

import (
	"encoding/json"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

// ToAnthropic normalizes the sequence and converts it into Anthropic wire
// params. System messages become system text blocks; tool-role messages
// become user messages carrying tool_result blocks, which is how the
// Messages API expects results back.
func ToAnthropic(msgs []message.Message) ([]anthropicsdk.TextBlockParam, []anthropicsdk.MessageParam, error) {
	normalized, err := Normalize(msgs)
	if err != nil {
		return nil, nil, err
	}

	var systemBlocks []anthropicsdk.TextBlockParam
	params := make([]anthropicsdk.MessageParam, 0, len(normalized))
	for _, msg := range normalized {
		switch msg.Role {
		case message.RoleSystem:
			if text := strings.TrimSpace(msg.Text()); text != "" {
				systemBlocks = append(systemBlocks, anthropicsdk.TextBlockParam{Text: text})
			}
		case message.RoleAssistant:
			params = append(params, anthropicsdk.MessageParam{
				Role:    anthropicsdk.MessageParamRoleAssistant,
				Content: anthropicAssistantContent(msg),
			})
		case message.RoleTool:
			params = append(params, anthropicsdk.MessageParam{
				Role:    anthropicsdk.MessageParamRoleUser,
				Content: anthropicToolResults(msg),
			})
		default:
			text := msg.Text()
			if strings.TrimSpace(text) == "" {
				text = placeholderText
			}
			params = append(params, anthropicsdk.MessageParam{
				Role:    anthropicsdk.MessageParamRoleUser,
				Content: []anthropicsdk.ContentBlockParamUnion{anthropicsdk.NewTextBlock(text)},
			})
		}
	}
	return systemBlocks, params, nil
}

func anthropicAssistantContent(msg message.Message) []anthropicsdk.ContentBlockParamUnion {
	blocks := make([]anthropicsdk.ContentBlockParamUnion, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch p.Type {
		case message.PartReasoning:
			if p.Text != "" {
				blocks = append(blocks, anthropicsdk.NewThinkingBlock("", p.Text))
			}
		case message.PartText:
			if strings.TrimSpace(p.Text) != "" {
				blocks = append(blocks, anthropicsdk.NewTextBlock(p.Text))
			}
		case message.PartToolInvocation:
			if p.State != message.StateCall || p.ToolCallID == "" || p.ToolName == "" {
				continue
			}
			blocks = append(blocks, anthropicsdk.NewToolUseBlock(p.ToolCallID, message.CloneArgs(p.Args), p.ToolName))
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, anthropicsdk.NewTextBlock(placeholderText))
	}
	return blocks
}

func anthropicToolResults(msg message.Message) []anthropicsdk.ContentBlockParamUnion {
	blocks := make([]anthropicsdk.ContentBlockParamUnion, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		if p.Type != message.PartToolResult || p.ToolCallID == "" {
			continue
		}
		blocks = append(blocks, anthropicsdk.NewToolResultBlock(p.ToolCallID, marshalResult(p.Result), false))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, anthropicsdk.NewTextBlock(placeholderText))
	}
	return blocks
}

func marshalResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
