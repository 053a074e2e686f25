package medical

import (
	"context"
	"encoding/json"
	"strings"

	"lingshu/internal/llm"
	"lingshu/internal/tool"
)

const (
	qaMaxTokens   = 2048
	qaTemperature = 0.2
)

// QATool answers medical questions
type QATool struct {
	backend Generator
}

func NewQATool(backend Generator) *QATool {
	return &QATool{backend: backend}
}

func (t *QATool) Name() string {
	return "medical_qa"
}

func (t *QATool) Description() string {
	return "Answer medical questions using Lingshu medical model"
}

func (t *QATool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "Medical question",
			},
			"context": map[string]any{
				"type":        "string",
				"description": "Relevant background information",
			},
			"specialty": map[string]any{
				"type":        "string",
				"description": "Medical specialty field (general/radiology/pathology/surgery/etc)",
			},
			"language": map[string]any{
				"type":        "string",
				"description": "Answer language: en for English, zh for Chinese (default)",
			},
		},
		"required": []string{"question"},
	}
}

func (t *QATool) Execute(ctx context.Context, params json.RawMessage) tool.Envelope {
	p := struct {
		Question  string `json:"question"`
		Context   string `json:"context"`
		Specialty string `json:"specialty"`
		Language  string `json:"language"`
	}{
		Specialty: defaultSpecialty,
		Language:  defaultLanguage,
	}

	if err := json.Unmarshal(params, &p); err != nil {
		return tool.Errorf("invalid parameters: %v", err)
	}

	if strings.TrimSpace(p.Question) == "" {
		return tool.Error("no question provided")
	}

	prompt := qaPrompt(p.Question, p.Context, p.Specialty, p.Language)

	answer, err := t.backend.Generate(ctx, &llm.GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   qaMaxTokens,
		Temperature: qaTemperature,
	})
	if err != nil {
		return tool.Error(err.Error())
	}

	return tool.Success(map[string]any{
		"question":  p.Question,
		"specialty": p.Specialty,
		"language":  p.Language,
		"answer":    answer,
		"model":     modelAttribution,
	})
}
