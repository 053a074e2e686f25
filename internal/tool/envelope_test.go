package tool

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSuccess_Fields(t *testing.T) {
	env := Success(map[string]any{
		"report": "normal chest radiograph",
		"model":  "lingshu",
	})

	if env["status"] != "success" {
		t.Errorf("Expected status success, got %v", env["status"])
	}
	if env.IsError() {
		t.Error("Success envelope must not report IsError")
	}
	if env["report"] != "normal chest radiograph" {
		t.Errorf("Payload field lost: %v", env["report"])
	}
	if env["model"] != "lingshu" {
		t.Errorf("Model attribution lost: %v", env["model"])
	}

	ts, ok := env["timestamp"].(string)
	if !ok {
		t.Fatalf("Expected string timestamp, got %T", env["timestamp"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("Timestamp not parseable as RFC 3339: %v", err)
	}

	if id, ok := env["request_id"].(string); !ok || id == "" {
		t.Errorf("Expected non-empty request_id, got %v", env["request_id"])
	}
}

func TestError_Fields(t *testing.T) {
	env := Errorf("no image data provided")

	if env["status"] != "error" {
		t.Errorf("Expected status error, got %v", env["status"])
	}
	if !env.IsError() {
		t.Error("Error envelope must report IsError")
	}
	if env["error"] != "no image data provided" {
		t.Errorf("Unexpected error message: %v", env["error"])
	}
	if _, ok := env["timestamp"].(string); !ok {
		t.Error("Error envelope must carry a timestamp")
	}
}

func TestEnvelope_JSON(t *testing.T) {
	env := Success(map[string]any{"answer": "42"})

	var decoded map[string]any
	if err := json.Unmarshal([]byte(env.JSON()), &decoded); err != nil {
		t.Fatalf("JSON() output not parseable: %v", err)
	}
	if decoded["status"] != "success" || decoded["answer"] != "42" {
		t.Errorf("Round-tripped envelope mismatch: %v", decoded)
	}
}
