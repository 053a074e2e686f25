// Package medical implements the provider's tools: image analysis,
// report generation, and question answering, each delegating to the
// Lingshu vision-language model.
package medical

import (
	"context"

	"lingshu/internal/llm"
)

// Generator is the slice of the backend model client the tools need
type Generator interface {
	Generate(ctx context.Context, req *llm.GenerateRequest) (string, error)
}

// modelAttribution is stamped into every successful envelope
const modelAttribution = "lingshu"

const (
	defaultLanguage     = "zh"
	defaultAnalysisType = "radiology"
	defaultReportType   = "diagnostic"
	defaultTemplate     = "standard"
	defaultSpecialty    = "general"
)

// validAnalysisTypes enumerates the recognized analysis types; any
// other value is coerced to "general" rather than rejected.
var validAnalysisTypes = map[string]bool{
	"radiology":     true,
	"pathology":     true,
	"dermatology":   true,
	"ophthalmology": true,
	"general":       true,
}

func normalizeAnalysisType(analysisType string) string {
	if validAnalysisTypes[analysisType] {
		return analysisType
	}
	return "general"
}
