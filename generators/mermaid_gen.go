package generators

import (
	"context"
	"time"

	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/validators"
)

// ToolDrawMermaid is the render tool for the flow/sequence dialect.
const ToolDrawMermaid = "draw_mermaid"

const mermaidSystemPrompt = "You are an expert at generating Mermaid diagram syntax for flowcharts, sequence diagrams, ER diagrams, state machines and timelines. " +
	"Decide which Mermaid diagram type fits best, identify the key entities and the relationships between them. " +
	"Answer with a single JSON object with keys \"reasoning\", \"diagram_title\", \"code\" and \"validation_notes\"."

const mermaidPromptTemplate = `STYLE GUIDE:
%s

USER REQUEST:
%s

Generate complete Mermaid diagram syntax.
CRITICAL RULES:
- Start with the diagram type declaration (e.g., 'flowchart TD', 'sequenceDiagram')
- Use proper Mermaid syntax for the chosen diagram type
- Define all nodes/entities and connect them with the correct arrow syntax

Respond with JSON: {"reasoning": "...", "diagram_title": "...", "code": "...", "validation_notes": "..."}`

const mermaidFallbackGuide = "Generate valid Mermaid diagram syntax. " +
	"Start with a diagram type declaration such as 'flowchart TD' or 'sequenceDiagram'. " +
	"Connect nodes with the arrow syntax of the chosen diagram type."

// MermaidGenerator generates validated Mermaid syntax for flow, sequence and
// entity-relationship requests.
type MermaidGenerator struct {
	base
}

// NewMermaidGenerator creates the flow/sequence dialect generator.
// attemptTimeout of zero disables per-attempt timeouts.
func NewMermaidGenerator(model models.Model, maxRetries int, attemptTimeout time.Duration) *MermaidGenerator {
	return &MermaidGenerator{
		base: newBase(model, &validators.MermaidCodeValidator{}, "mermaid.md", mermaidFallbackGuide, "[MERMAID_GEN] ", maxRetries, attemptTimeout),
	}
}

// Generate runs the retry loop for the Mermaid dialect.
func (g *MermaidGenerator) Generate(ctx context.Context, intent, conversationContext string) GenerationResult {
	return g.generateWithRetry(ctx, mermaidSystemPrompt, mermaidPromptTemplate, intent, conversationContext)
}

// ToolName names the render tool for this dialect.
func (g *MermaidGenerator) ToolName() string {
	return ToolDrawMermaid
}

// ToolArguments builds the render tool arguments from a generation result.
func (g *MermaidGenerator) ToolArguments(result GenerationResult) map[string]interface{} {
	return map[string]interface{}{
		"title": result.Title,
		"code":  result.Code,
	}
}
