package generators

import (
	"context"
	"time"

	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/validators"
)

// ToolDrawTechnicalDiagram is the render tool for the structured-layout
// dialect.
const ToolDrawTechnicalDiagram = "draw_technical_diagram"

const pythonSystemPrompt = "You are an expert at generating Python code for cloud architecture diagrams using the diagrams library. " +
	"Analyze the architecture step by step: what components are needed, how they are organized, and what connections represent the data flow. " +
	"Answer with a single JSON object with keys \"reasoning\", \"diagram_title\", \"code\" and \"validation_notes\"."

const pythonPromptTemplate = `STYLE GUIDE:
%s

USER REQUEST:
%s

Generate Python code for the diagrams library.
CRITICAL RULES:
- NO import statements
- NO 'with Diagram(...):' context manager
- Use >> operator for edges (e.g., web >> app >> db)
- Define all variables before using them
- Use proper diagrams library node classes

Respond with JSON: {"reasoning": "...", "diagram_title": "...", "code": "...", "validation_notes": "..."}`

const pythonFallbackGuide = "Generate Python code using the diagrams library. " +
	"DO NOT include import statements. " +
	"DO NOT use with statement for Diagram context. " +
	"Use >> operator to connect nodes."

// PythonDiagramsGenerator generates validated Python diagrams code for cloud
// architecture requests.
type PythonDiagramsGenerator struct {
	base
}

// NewPythonDiagramsGenerator creates the structured-layout dialect generator.
// attemptTimeout of zero disables per-attempt timeouts.
func NewPythonDiagramsGenerator(model models.Model, maxRetries int, attemptTimeout time.Duration) *PythonDiagramsGenerator {
	return &PythonDiagramsGenerator{
		base: newBase(model, &validators.PythonCodeValidator{}, "python_diagrams.md", pythonFallbackGuide, "[PYTHON_GEN] ", maxRetries, attemptTimeout),
	}
}

// Generate runs the retry loop for the Python diagrams dialect.
func (g *PythonDiagramsGenerator) Generate(ctx context.Context, intent, conversationContext string) GenerationResult {
	return g.generateWithRetry(ctx, pythonSystemPrompt, pythonPromptTemplate, intent, conversationContext)
}

// ToolName names the render tool for this dialect.
func (g *PythonDiagramsGenerator) ToolName() string {
	return ToolDrawTechnicalDiagram
}

// ToolArguments builds the render tool arguments from a generation result.
func (g *PythonDiagramsGenerator) ToolArguments(result GenerationResult) map[string]interface{} {
	return map[string]interface{}{
		"title": result.Title,
		"code":  result.Code,
	}
}
