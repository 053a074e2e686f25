package openai

import (
	"context"

	"lingshu/internal/llm"

	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a client for an OpenAI-compatible endpoint.
// If baseURL is empty, the default OpenAI endpoint is used.
func NewClient(apiKey, model, baseURL string) *Client {
	var client *openai.Client

	if baseURL != "" {
		config := openai.DefaultConfig(apiKey)
		config.BaseURL = baseURL
		client = openai.NewClientWithConfig(config)
	} else {
		client = openai.NewClient(apiKey)
	}

	return &Client{
		client: client,
		model:  model,
	}
}

// Generate performs a single chat completion for the given prompt.
// When ImageData is set, the user message carries a two-part content:
// the prompt text and a PNG data URI image part. Any fault is wrapped
// as a *llm.BackendError.
func (c *Client) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	if req.ImageData != "" {
		msg.MultiContent = []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: req.Prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: "data:image/png;base64," + req.ImageData,
				},
			},
		}
	} else {
		msg.Content = req.Prompt
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{msg},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", &llm.BackendError{Model: c.model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &llm.BackendError{Model: c.model, Err: errNoChoices}
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatWithTools performs one chat completion with the given tool
// definitions and automatic tool selection.
func (c *Client) ChatWithTools(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.convertMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	if len(req.Tools) > 0 {
		request.Tools = c.convertTools(req.Tools)
		request.ToolChoice = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, &llm.BackendError{Model: c.model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &llm.BackendError{Model: c.model, Err: errNoChoices}
	}

	return c.convertResponse(resp), nil
}

func (c *Client) Model() string {
	return c.model
}

// Helper method: message format conversion
func (c *Client) convertMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		ocMsg := openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		if len(msg.ToolCalls) > 0 {
			ocMsg.ToolCalls = make([]openai.ToolCall, len(msg.ToolCalls))
			for j, tc := range msg.ToolCalls {
				ocMsg.ToolCalls[j] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				}
			}
		}

		// Tool response message
		if msg.Role == llm.RoleTool {
			ocMsg.ToolCallID = msg.ToolCallID
		}

		result[i] = ocMsg
	}
	return result
}

// Helper method: tool definition conversion
func (c *Client) convertTools(tools []*llm.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		}
	}
	return result
}

// Helper method: response conversion
func (c *Client) convertResponse(resp openai.ChatCompletionResponse) *llm.ChatResponse {
	choice := resp.Choices[0]
	msg := choice.Message

	result := &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.Role(msg.Role),
			Content: msg.Content,
		},
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(msg.ToolCalls) > 0 {
		result.Message.ToolCalls = make([]*llm.ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			result.Message.ToolCalls[i] = &llm.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				Function: &llm.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		}
		result.StopReason = llm.StopReasonToolCalls
	} else {
		result.StopReason = llm.StopReason(choice.FinishReason)
	}

	return result
}
