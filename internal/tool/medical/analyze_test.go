package medical

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeTestImage creates a small fake image file and returns its path
func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, []byte("fake png bytes"), 0644); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	return path
}

func TestAnalyzeTool_Success(t *testing.T) {
	backend := &stubGenerator{reply: "structured radiology report"}
	tool := NewAnalyzeTool(backend)
	imagePath := writeTestImage(t)

	params := fmt.Sprintf(`{"image_path": %q, "analysis_type": "radiology", "patient_context": "55-year-old male, 20-year smoking history", "language": "en"}`, imagePath)

	env := tool.Execute(context.Background(), []byte(params))

	if env["status"] != "success" {
		t.Fatalf("Expected success, got: %v", env["error"])
	}
	if env["report"] != "structured radiology report" {
		t.Errorf("Unexpected report: %v", env["report"])
	}
	if env["analysis_type"] != "radiology" {
		t.Errorf("Expected analysis_type radiology, got %v", env["analysis_type"])
	}
	if env["model"] != "lingshu" {
		t.Errorf("Expected model attribution, got %v", env["model"])
	}

	ts, _ := env["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("Timestamp not parseable: %v", err)
	}

	if backend.calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", backend.calls)
	}
	if backend.lastReq.ImageData == "" {
		t.Error("Expected base64 image data in backend request")
	}
	if backend.lastReq.MaxTokens != 2048 {
		t.Errorf("Expected max tokens 2048, got %d", backend.lastReq.MaxTokens)
	}
	if backend.lastReq.Temperature != 0.1 {
		t.Errorf("Expected temperature 0.1, got %v", backend.lastReq.Temperature)
	}
}

func TestAnalyzeTool_AnalysisTypes(t *testing.T) {
	imagePath := writeTestImage(t)

	cases := []struct {
		input    string
		expected string
	}{
		{"radiology", "radiology"},
		{"pathology", "pathology"},
		{"dermatology", "dermatology"},
		{"ophthalmology", "ophthalmology"},
		{"general", "general"},
		// Unrecognized values coerce to general, not error
		{"cardiology", "general"},
		{"RADIOLOGY", "general"},
		{"", "general"},
	}

	for _, tc := range cases {
		backend := &stubGenerator{reply: "report"}
		tool := NewAnalyzeTool(backend)

		params := fmt.Sprintf(`{"image_path": %q, "analysis_type": %q}`, imagePath, tc.input)
		env := tool.Execute(context.Background(), []byte(params))

		if env["status"] != "success" {
			t.Errorf("analysis_type %q: expected success, got %v", tc.input, env["error"])
			continue
		}
		if env["analysis_type"] != tc.expected {
			t.Errorf("analysis_type %q: expected %q, got %v", tc.input, tc.expected, env["analysis_type"])
		}
		if backend.calls != 1 {
			t.Errorf("analysis_type %q: expected a backend call", tc.input)
		}
	}
}

func TestAnalyzeTool_MissingImagePath(t *testing.T) {
	backend := &stubGenerator{}
	tool := NewAnalyzeTool(backend)

	env := tool.Execute(context.Background(), []byte(`{"image_path": ""}`))

	if env["status"] != "error" {
		t.Fatal("Expected error envelope for empty image path")
	}
	if env["error"] != "no image data provided" {
		t.Errorf("Unexpected error message: %v", env["error"])
	}
	if backend.calls != 0 {
		t.Errorf("Expected zero backend calls, got %d", backend.calls)
	}
}

func TestAnalyzeTool_NonexistentImage(t *testing.T) {
	backend := &stubGenerator{}
	tool := NewAnalyzeTool(backend)

	env := tool.Execute(context.Background(), []byte(`{"image_path": "/nonexistent/scan.png"}`))

	if env["status"] != "error" {
		t.Fatal("Expected error envelope for nonexistent image")
	}
	if !strings.Contains(env["error"].(string), "failed to read image") {
		t.Errorf("Unexpected error message: %v", env["error"])
	}
	if backend.calls != 0 {
		t.Errorf("Expected zero backend calls, got %d", backend.calls)
	}
	if _, ok := env["timestamp"].(string); !ok {
		t.Error("Error envelope must carry a timestamp")
	}
}

func TestAnalyzeTool_BackendFailure(t *testing.T) {
	backend := &stubGenerator{err: fmt.Errorf("connection refused")}
	tool := NewAnalyzeTool(backend)
	imagePath := writeTestImage(t)

	params := fmt.Sprintf(`{"image_path": %q}`, imagePath)
	env := tool.Execute(context.Background(), []byte(params))

	if env["status"] != "error" {
		t.Fatal("Expected error envelope for backend failure")
	}
	if !strings.Contains(env["error"].(string), "connection refused") {
		t.Errorf("Error should carry the failure description: %v", env["error"])
	}
}

func TestAnalyzeTool_LanguageSelection(t *testing.T) {
	imagePath := writeTestImage(t)

	// "en" selects the English template; anything else selects Chinese
	cases := []struct {
		language string
		english  bool
	}{
		{"en", true},
		{"zh", false},
		{"fr", false},
		{"", false},
	}

	for _, tc := range cases {
		backend := &stubGenerator{echo: true}
		tool := NewAnalyzeTool(backend)

		params := fmt.Sprintf(`{"image_path": %q, "language": %q}`, imagePath, tc.language)
		env := tool.Execute(context.Background(), []byte(params))

		if env["status"] != "success" {
			t.Fatalf("language %q: expected success, got %v", tc.language, env["error"])
		}

		prompt := backend.lastReq.Prompt
		isEnglish := strings.Contains(prompt, "Technical Quality Assessment")
		isChinese := strings.Contains(prompt, "技术质量评估")

		if tc.english && !isEnglish {
			t.Errorf("language %q: expected English template", tc.language)
		}
		if !tc.english && !isChinese {
			t.Errorf("language %q: expected Chinese template", tc.language)
		}
	}
}

func TestAnalyzeTool_PatientContextInPrompt(t *testing.T) {
	backend := &stubGenerator{echo: true}
	tool := NewAnalyzeTool(backend)
	imagePath := writeTestImage(t)

	params := fmt.Sprintf(`{"image_path": %q, "patient_context": "chronic cough", "language": "en"}`, imagePath)
	env := tool.Execute(context.Background(), []byte(params))

	if env["status"] != "success" {
		t.Fatalf("Expected success, got %v", env["error"])
	}
	if !strings.Contains(backend.lastReq.Prompt, "chronic cough") {
		t.Error("Patient context should be embedded in the prompt")
	}
}
