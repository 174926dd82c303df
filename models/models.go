package models

import (
	"context"
	"strings"
)

// Model_Request is a single prediction request against a language model.
type Model_Request struct {
	// System is an optional system prompt establishing the model's role.
	System string `json:"system,omitempty"`
	// Prompt is the instruction for this prediction.
	Prompt string `json:"prompt"`
	// Context carries the formatted prior conversation, may be empty.
	Context string `json:"context,omitempty"`
	// ForceJSON asks the backing model to answer with a bare JSON object.
	ForceJSON bool `json:"force_json,omitempty"`
}

// Model_Response is the model's answer to a Model_Request.
type Model_Response struct {
	Text string `json:"text"`
}

// Model abstracts a language model backend. Implementations live in
// subpackages (e.g. models/gemini).
type Model interface {
	Model_Request(ctx context.Context, request Model_Request) (Model_Response, error)
}

// ExtractJSONObject strips markdown code fences and surrounding prose from a
// model response, returning the outermost JSON object. Models asked for JSON
// still occasionally wrap it in ```json fences or lead-in text.
func ExtractJSONObject(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return trimmed
	}
	return trimmed[start : end+1]
}
