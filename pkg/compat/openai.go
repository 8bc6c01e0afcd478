package compat

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

// ToOpenAI normalizes the sequence and converts it into Chat Completions
// message params. Each tool-result part becomes its own tool message keyed by
// the call id.
func ToOpenAI(msgs []message.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	normalized, err := Normalize(msgs)
	if err != nil {
		return nil, err
	}

	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(normalized))
	for _, msg := range normalized {
		switch msg.Role {
		case message.RoleSystem:
			if text := strings.TrimSpace(msg.Text()); text != "" {
				out = append(out, openai.SystemMessage(text))
			}
		case message.RoleAssistant:
			out = append(out, openaiAssistantMessage(msg))
		case message.RoleTool:
			for _, p := range msg.Parts {
				if p.Type != message.PartToolResult || p.ToolCallID == "" {
					continue
				}
				out = append(out, openai.ToolMessage(marshalResult(p.Result), p.ToolCallID))
			}
		default:
			text := msg.Text()
			if strings.TrimSpace(text) == "" {
				text = placeholderText
			}
			out = append(out, openai.UserMessage(text))
		}
	}
	return out, nil
}

func openaiAssistantMessage(msg message.Message) openai.ChatCompletionMessageParamUnion {
	param := openai.ChatCompletionAssistantMessageParam{}

	text := msg.Text()
	if strings.TrimSpace(text) == "" {
		text = placeholderText
	}
	param.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
		OfString: openai.String(text),
	}

	var toolCalls []openai.ChatCompletionMessageToolCallParam
	var reasoning string
	for _, p := range msg.Parts {
		switch p.Type {
		case message.PartReasoning:
			reasoning += p.Text
		case message.PartToolInvocation:
			if p.State != message.StateCall || p.ToolCallID == "" || p.ToolName == "" {
				continue
			}
			argsJSON, _ := json.Marshal(p.Args) //nolint:errcheck
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: p.ToolCallID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      p.ToolName,
					Arguments: string(argsJSON),
				},
			})
		}
	}
	if len(toolCalls) > 0 {
		param.ToolCalls = toolCalls
	}
	if reasoning != "" {
		param.SetExtraFields(map[string]any{"reasoning_content": reasoning})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &param}
}
