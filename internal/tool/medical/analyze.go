package medical

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"

	"lingshu/internal/llm"
	"lingshu/internal/tool"
)

const (
	analyzeMaxTokens   = 2048
	analyzeTemperature = 0.1
)

// AnalyzeTool analyzes a medical image and returns a structured report
type AnalyzeTool struct {
	backend Generator
}

func NewAnalyzeTool(backend Generator) *AnalyzeTool {
	return &AnalyzeTool{backend: backend}
}

func (t *AnalyzeTool) Name() string {
	return "analyze_medical_image"
}

func (t *AnalyzeTool) Description() string {
	return "Analyze medical images using Lingshu"
}

func (t *AnalyzeTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"image_path": map[string]any{
				"type":        "string",
				"description": "Path to medical image file",
			},
			"analysis_type": map[string]any{
				"type":        "string",
				"description": "Type of analysis (radiology/pathology/dermatology/ophthalmology/general)",
			},
			"patient_context": map[string]any{
				"type":        "string",
				"description": "Patient clinical background information",
			},
			"language": map[string]any{
				"type":        "string",
				"description": "Report language: en for English, zh for Chinese (default)",
			},
		},
		"required": []string{"image_path"},
	}
}

func (t *AnalyzeTool) Execute(ctx context.Context, params json.RawMessage) tool.Envelope {
	p := struct {
		ImagePath      string `json:"image_path"`
		AnalysisType   string `json:"analysis_type"`
		PatientContext string `json:"patient_context"`
		Language       string `json:"language"`
	}{
		AnalysisType: defaultAnalysisType,
		Language:     defaultLanguage,
	}

	if err := json.Unmarshal(params, &p); err != nil {
		return tool.Errorf("invalid parameters: %v", err)
	}

	if p.ImagePath == "" {
		return tool.Error("no image data provided")
	}

	imageBytes, err := os.ReadFile(p.ImagePath)
	if err != nil {
		return tool.Errorf("failed to read image: %v", err)
	}
	imageData := base64.StdEncoding.EncodeToString(imageBytes)

	analysisType := normalizeAnalysisType(p.AnalysisType)
	prompt := analyzePrompt(analysisType, p.PatientContext, p.Language)

	report, err := t.backend.Generate(ctx, &llm.GenerateRequest{
		Prompt:      prompt,
		ImageData:   imageData,
		MaxTokens:   analyzeMaxTokens,
		Temperature: analyzeTemperature,
	})
	if err != nil {
		return tool.Error(err.Error())
	}

	return tool.Success(map[string]any{
		"analysis_type": analysisType,
		"language":      p.Language,
		"report":        report,
		"model":         modelAttribution,
	})
}
