package draftsmith

import (
	"testing"

	"github.com/draftsmith/draftsmith/bridge"
)

func TestGenerationError_Error(t *testing.T) {
	err := &GenerationError{
		Dialect:          "python_diagrams",
		Attempts:         3,
		ValidationErrors: []string{"bad import", "unbalanced bracket"},
	}
	expected := "python_diagrams generation failed after 3 attempts: bad import; unbalanced bracket"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestToolError_Error(t *testing.T) {
	err := &ToolError{ToolName: "draw_mermaid", Message: "connection refused"}
	expected := "Error calling tool 'draw_mermaid': connection refused"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestRenderFailure_PreservesBridgeMessage(t *testing.T) {
	calls := []*bridge.PendingToolCall{
		{ToolName: "draw_mermaid", State: bridge.StateResolved, Result: "not json"},
		{ToolName: "draw_mermaid", State: bridge.StateFailed, Result: "Error calling tool 'draw_mermaid': connection refused"},
	}
	err := renderFailure("draw_mermaid", calls)
	if err.ToolName != "draw_mermaid" {
		t.Errorf("Expected tool name carried, got %q", err.ToolName)
	}
	if err.Message != "connection refused" {
		t.Errorf("Expected raw message recovered, got %q", err.Message)
	}
	if err.Error() != "Error calling tool 'draw_mermaid': connection refused" {
		t.Errorf("Round trip changed the surfaced string: %q", err.Error())
	}
}

func TestRenderFailure_NoFailedCall(t *testing.T) {
	calls := []*bridge.PendingToolCall{
		{ToolName: "draw_mermaid", State: bridge.StateResolved, Result: "not json"},
	}
	err := renderFailure("draw_mermaid", calls)
	if err.Message != "render service returned no result" {
		t.Errorf("Expected generic message, got %q", err.Message)
	}
}
