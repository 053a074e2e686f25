package medical

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lingshu/internal/llm"
	"lingshu/internal/tool"
)

const (
	reportMaxTokens   = 3072
	reportTemperature = 0.1
)

// ReportTool generates a structured medical report from a list of findings
type ReportTool struct {
	backend Generator
}

func NewReportTool(backend Generator) *ReportTool {
	return &ReportTool{backend: backend}
}

func (t *ReportTool) Name() string {
	return "generate_medical_report"
}

func (t *ReportTool) Description() string {
	return "Generate structured medical reports using Lingshu medical model"
}

func (t *ReportTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"findings": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of medical findings",
			},
			"report_type": map[string]any{
				"type":        "string",
				"description": "Type of report (diagnostic/screening/follow_up/consultation)",
			},
			"patient_info": map[string]any{
				"type":        "object",
				"description": "Patient information dictionary",
			},
			"language": map[string]any{
				"type":        "string",
				"description": "Report language: en for English, zh for Chinese (default)",
			},
			"template": map[string]any{
				"type":        "string",
				"description": "Report template (standard/detailed/brief)",
			},
		},
		"required": []string{"findings"},
	}
}

func (t *ReportTool) Execute(ctx context.Context, params json.RawMessage) tool.Envelope {
	p := struct {
		Findings    []string       `json:"findings"`
		ReportType  string         `json:"report_type"`
		PatientInfo map[string]any `json:"patient_info"`
		Language    string         `json:"language"`
		Template    string         `json:"template"`
	}{
		ReportType: defaultReportType,
		Language:   defaultLanguage,
		Template:   defaultTemplate,
	}

	if err := json.Unmarshal(params, &p); err != nil {
		return tool.Errorf("invalid parameters: %v", err)
	}

	if len(p.Findings) == 0 {
		return tool.Error("no medical findings provided")
	}

	var bullets []string
	for _, finding := range p.Findings {
		bullets = append(bullets, "• "+finding)
	}
	findingsText := strings.Join(bullets, "\n")

	patientText := ""
	if len(p.PatientInfo) > 0 {
		info, err := json.MarshalIndent(p.PatientInfo, "", "  ")
		if err != nil {
			return tool.Errorf("invalid patient_info: %v", err)
		}
		patientText = fmt.Sprintf("Patient Information:\n%s\n", info)
	}

	prompt := reportPrompt(findingsText, patientText, p.ReportType, p.Template, p.Language, time.Now())

	report, err := t.backend.Generate(ctx, &llm.GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   reportMaxTokens,
		Temperature: reportTemperature,
	})
	if err != nil {
		return tool.Error(err.Error())
	}

	return tool.Success(map[string]any{
		"report_type":    p.ReportType,
		"template":       p.Template,
		"language":       p.Language,
		"report":         report,
		"findings_count": len(p.Findings),
		"model":          modelAttribution,
	})
}
