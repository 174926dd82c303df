package draftsmith

import (
	"fmt"
	"strings"
)

// GenerationError reports that every generation attempt for a turn failed
// validation. It carries the validator errors from the final attempt.
type GenerationError struct {
	Dialect          string
	Attempts         int
	ValidationErrors []string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed after %d attempts: %s",
		e.Dialect, e.Attempts, strings.Join(e.ValidationErrors, "; "))
}

// ToolError reports that the render service rejected or failed a tool call.
type ToolError struct {
	ToolName string
	Message  string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("Error calling tool '%s': %s", e.ToolName, e.Message)
}
