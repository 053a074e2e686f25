package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lingshu/internal/llm"
)

// fakeCompletion returns a handler that captures the request body and
// responds with a canned chat completion
func fakeCompletion(t *testing.T, content string, captured *map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("Failed to read request body: %v", err)
		}
		if captured != nil {
			if err := json.Unmarshal(body, captured); err != nil {
				t.Fatalf("Failed to parse request body: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "Lingshu-7B",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     10,
				"completion_tokens": 5,
				"total_tokens":      15,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGenerate_PlainText(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(fakeCompletion(t, "generated report", &captured))
	defer srv.Close()

	client := NewClient("test-key", "Lingshu-7B", srv.URL)

	result, err := client.Generate(context.Background(), &llm.GenerateRequest{
		Prompt:      "Describe the findings.",
		MaxTokens:   2048,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result != "generated report" {
		t.Errorf("Unexpected result: %q", result)
	}

	if captured["max_tokens"] != float64(2048) {
		t.Errorf("Expected max_tokens 2048, got %v", captured["max_tokens"])
	}
	if captured["temperature"] != 0.1 {
		t.Errorf("Expected temperature 0.1, got %v", captured["temperature"])
	}

	// Without an image, content must be a plain string
	messages := captured["messages"].([]any)
	msg := messages[0].(map[string]any)
	if _, ok := msg["content"].(string); !ok {
		t.Errorf("Expected string content, got %T", msg["content"])
	}
}

func TestGenerate_WithImage(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(fakeCompletion(t, "image analysis", &captured))
	defer srv.Close()

	client := NewClient("test-key", "Lingshu-7B", srv.URL)

	result, err := client.Generate(context.Background(), &llm.GenerateRequest{
		Prompt:      "Analyze this image.",
		ImageData:   "aGVsbG8=",
		MaxTokens:   2048,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result != "image analysis" {
		t.Errorf("Unexpected result: %q", result)
	}

	// With an image, content must be a two-part array: text then image URL
	messages := captured["messages"].([]any)
	msg := messages[0].(map[string]any)
	parts, ok := msg["content"].([]any)
	if !ok {
		t.Fatalf("Expected multi-part content, got %T", msg["content"])
	}
	if len(parts) != 2 {
		t.Fatalf("Expected 2 content parts, got %d", len(parts))
	}

	textPart := parts[0].(map[string]any)
	if textPart["type"] != "text" || textPart["text"] != "Analyze this image." {
		t.Errorf("Unexpected text part: %v", textPart)
	}

	imagePart := parts[1].(map[string]any)
	if imagePart["type"] != "image_url" {
		t.Errorf("Expected image_url part, got %v", imagePart["type"])
	}
	imageURL := imagePart["image_url"].(map[string]any)
	url := imageURL["url"].(string)
	if !strings.HasPrefix(url, "data:image/png;base64,aGVsbG8=") {
		t.Errorf("Unexpected image URL: %s", url)
	}
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "backend exploded"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "Lingshu-7B", srv.URL)

	_, err := client.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Expected error from failing backend")
	}

	var backendErr *llm.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Expected *llm.BackendError, got %T: %v", err, err)
	}
	if backendErr.Model != "Lingshu-7B" {
		t.Errorf("Expected model attribution in error, got %s", backendErr.Model)
	}
}

func TestChatWithTools_ToolCallResponse(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "medical_qa", "arguments": "{\"question\": \"What is TB?\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 10, "total_tokens": 30}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "qwen3-235b-a22b-instruct-2507", srv.URL)

	resp, err := client.ChatWithTools(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "What is TB?"}},
		Tools: []*llm.ToolDefinition{
			{
				Type: "function",
				Function: &llm.FunctionDef{
					Name:        "medical_qa",
					Description: "Answer medical questions",
					Parameters: map[string]any{
						"type":       "object",
						"properties": map[string]any{"question": map[string]any{"type": "string"}},
						"required":   []any{"question"},
					},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("ChatWithTools failed: %v", err)
	}

	if resp.StopReason != llm.StopReasonToolCalls {
		t.Errorf("Expected tool_calls stop reason, got %s", resp.StopReason)
	}
	if len(resp.Message.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(resp.Message.ToolCalls))
	}
	tc := resp.Message.ToolCalls[0]
	if tc.Function.Name != "medical_qa" {
		t.Errorf("Unexpected tool name: %s", tc.Function.Name)
	}
	if !strings.Contains(tc.Function.Arguments, "What is TB?") {
		t.Errorf("Unexpected arguments: %s", tc.Function.Arguments)
	}

	// Request must advertise the tool and automatic tool choice
	if captured["tool_choice"] != "auto" {
		t.Errorf("Expected tool_choice auto, got %v", captured["tool_choice"])
	}
	tools := captured["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("Expected 1 tool in request, got %d", len(tools))
	}
}

func TestChatWithTools_DirectReply(t *testing.T) {
	srv := httptest.NewServer(fakeCompletion(t, "Pleural effusions are fluid collections.", nil))
	defer srv.Close()

	client := NewClient("test-key", "qwen3-235b-a22b-instruct-2507", srv.URL)

	resp, err := client.ChatWithTools(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "What causes a pleural effusion?"}},
	})
	if err != nil {
		t.Fatalf("ChatWithTools failed: %v", err)
	}

	if resp.StopReason != llm.StopReasonStop {
		t.Errorf("Expected stop reason, got %s", resp.StopReason)
	}
	if len(resp.Message.ToolCalls) != 0 {
		t.Errorf("Expected no tool calls, got %d", len(resp.Message.ToolCalls))
	}
	if resp.Message.Content == "" {
		t.Error("Expected direct reply content")
	}
}
