package draftsmith

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/draftsmith/draftsmith/bridge"
	"github.com/draftsmith/draftsmith/generators"
	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/models/gemini"
	"github.com/draftsmith/draftsmith/router"
	"github.com/draftsmith/draftsmith/stores"
)

// Outcome tags the result of one generation turn.
type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	OutcomeClarify   Outcome = "clarify"
	OutcomeFailed    Outcome = "failed"
)

// Stages reported to progress callbacks during a turn.
const (
	StageRouting    = "routing"
	StageGenerating = "generating"
	StageRendering  = "rendering"
	StageDone       = "done"
)

// Result is the outcome of one generation turn. Exactly one of the
// outcome-specific fields is meaningful: Title/MediaURI for Generated,
// ClarifyingQuestion for Clarify, GenerationErrors or ToolError for Failed.
// HistoryJSON and TraceID are populated on every path.
type Result struct {
	Outcome            Outcome  `json:"outcome"`
	Target             string   `json:"target,omitempty"`
	Title              string   `json:"title,omitempty"`
	MediaURI           string   `json:"media_uri,omitempty"`
	ClarifyingQuestion string   `json:"clarifying_question,omitempty"`
	GenerationErrors   []string `json:"generation_errors,omitempty"`
	ToolError          string   `json:"tool_error,omitempty"`
	Attempts           int      `json:"attempts,omitempty"`
	HistoryJSON        string   `json:"history_json"`
	TraceID            string   `json:"trace_id"`
}

// ProgressFunc receives stage notifications during a turn.
type ProgressFunc func(stage string, detail string)

// Agent orchestrates one generation turn: route the request, run the chosen
// dialect generator, dispatch validated code through the tool-call bridge and
// record a trace. Agents hold no conversation state; callers pass history in
// and get updated history back.
type Agent struct {
	config       *Config
	router       *router.Router
	generators   map[router.Target]generators.Generator
	declarations []models.FunctionDeclaration
	logger       *log.Logger
}

// NewAgent creates an agent from the configuration. A nil Model falls back to
// the Gemini model named by ModelName.
func NewAgent(config *Config) *Agent {
	if config == nil {
		config = NewConfig()
	}
	model := config.Model
	if model == nil {
		model = &gemini.Gemini_Model{Model: config.ModelName}
	}

	return &Agent{
		config: config,
		router: router.New(model),
		generators: map[router.Target]generators.Generator{
			router.TargetPythonDiagrams: generators.NewPythonDiagramsGenerator(model, config.MaxRetries, config.GenerateTimeout),
			router.TargetMermaid:        generators.NewMermaidGenerator(model, config.MaxRetries, config.GenerateTimeout),
		},
		declarations: RenderTools(),
		logger:       log.New(os.Stdout, "[AGENT] ", log.LstdFlags),
	}
}

// Generate runs one full turn against the given serialized history and
// returns the outcome plus the updated history. The agent never mutates
// stored state itself; persistence belongs to the Session or caller.
func (a *Agent) Generate(ctx context.Context, text, historyJSON string) Result {
	return a.GenerateWithProgress(ctx, "", text, historyJSON, nil)
}

// GenerateWithProgress is Generate with per-stage notifications and an
// optional conversation id recorded on the trace.
func (a *Agent) GenerateWithProgress(ctx context.Context, conversationID, text, historyJSON string, progress ProgressFunc) Result {
	notify := func(stage, detail string) {
		if progress != nil {
			progress(stage, detail)
		}
	}

	history, err := stores.LoadHistory(historyJSON)
	if err != nil {
		// Corrupt input history never blocks the turn.
		a.logger.Printf("Could not load history, starting empty: %v", err)
		history = stores.NewHistory(nil)
	}

	traceID := uuid.New().String()
	promptContext := history.FormatForPrompt()
	history.Append(stores.Turn{Role: stores.RoleUser, Text: text})

	trace := &stores.TraceRecord{
		TraceID:        traceID,
		ConversationID: conversationID,
		RequestText:    text,
	}

	notify(StageRouting, "")
	routeCtx, cancelRoute := context.WithTimeout(ctx, a.config.RouteTimeout)
	decision := a.router.Route(routeCtx, text, promptContext)
	cancelRoute()
	trace.Routing = map[string]any{
		"target":    string(decision.Target),
		"rationale": decision.Rationale,
	}
	a.logger.Printf("Routed request to %s", decision.Target)

	var result Result
	switch decision.Target {
	case router.TargetClarify:
		result = a.clarifyTurn(&history, decision)
	default:
		result = a.generateTurn(ctx, &history, decision, text, promptContext, trace, notify)
	}

	result.Target = string(decision.Target)
	result.TraceID = traceID
	result.HistoryJSON = serializeOrEmpty(history, a.logger)

	trace.TurnCountAtCapture = history.Len()
	a.recordTrace(trace)

	notify(StageDone, string(result.Outcome))
	return result
}

// clarifyTurn answers with the routing decision's question instead of
// generating code.
func (a *Agent) clarifyTurn(history *stores.History, decision router.RoutingDecision) Result {
	history.Append(stores.Turn{Role: stores.RoleAssistant, Text: decision.ClarifyingQuestion})
	return Result{
		Outcome:            OutcomeClarify,
		ClarifyingQuestion: decision.ClarifyingQuestion,
	}
}

// generateTurn runs the dialect generator and, when validation passes,
// dispatches the code through the bridge to the render service. Invalid code
// never reaches the tool boundary.
func (a *Agent) generateTurn(ctx context.Context, history *stores.History, decision router.RoutingDecision, text, promptContext string, trace *stores.TraceRecord, notify func(stage, detail string)) Result {
	generator, ok := a.generators[decision.Target]
	if !ok {
		// The closed routing table makes this unreachable; keep the turn
		// alive anyway.
		a.logger.Printf("No generator registered for target %s", decision.Target)
		question := "Could you describe what kind of diagram you need?"
		history.Append(stores.Turn{Role: stores.RoleAssistant, Text: question})
		return Result{Outcome: OutcomeClarify, ClarifyingQuestion: question}
	}

	notify(StageGenerating, string(decision.Target))
	generation := generator.Generate(ctx, text, promptContext)
	trace.Generation = map[string]any{
		"tool":     generator.ToolName(),
		"attempts": generation.Attempts,
		"valid":    generation.Validation.Valid,
		"title":    generation.Title,
		"code":     generation.Code,
		"errors":   generation.Validation.Errors,
		"warnings": generation.Validation.Warnings,
	}

	if !generation.Validation.Valid {
		a.logger.Printf("Generation invalid after %d attempts", generation.Attempts)
		genErr := &GenerationError{
			Dialect:          string(decision.Target),
			Attempts:         generation.Attempts,
			ValidationErrors: generation.Validation.Errors,
		}
		history.Append(stores.Turn{
			Role: stores.RoleAssistant,
			Text: fmt.Sprintf("I could not produce a valid diagram: %s", genErr.Error()),
		})
		return Result{
			Outcome:          OutcomeFailed,
			GenerationErrors: generation.Validation.Errors,
			Attempts:         generation.Attempts,
		}
	}

	notify(StageRendering, generator.ToolName())
	br := bridge.New(a.declarations, a.logger)
	placeholder := br.Call(generator.ToolName(), generator.ToolArguments(generation))
	responseText := placeholder

	renderCtx, cancelRender := context.WithTimeout(ctx, a.config.RenderTimeout)
	br.ResolveAll(renderCtx, a.config.Renderer)
	cancelRender()

	calls := br.Calls()
	toolCalls := make(map[string]stores.ToolInvocation, len(calls))
	toolResults := make(map[string]stores.ToolResult, len(calls))
	toolTrace := make([]any, 0, len(calls))
	for _, call := range calls {
		toolCalls[call.ID] = stores.ToolInvocation{Name: call.ToolName, Arguments: call.Arguments}
		toolResults[call.ID] = stores.ToolResult{
			OK:      call.State == bridge.StateResolved,
			Content: []stores.ContentBlock{{Type: "text", Text: call.Result}},
		}
		toolTrace = append(toolTrace, map[string]any{
			"id":    call.ID,
			"tool":  call.ToolName,
			"state": string(call.State),
		})
	}
	trace.Tools = toolTrace

	render, rendered := bridge.ExtractRenderResult(calls)
	if !rendered {
		toolErr := renderFailure(generator.ToolName(), calls)
		a.logger.Printf("Render dispatch failed: %v", toolErr)
		history.Append(stores.Turn{
			Role:        stores.RoleAssistant,
			Text:        strings.Replace(responseText, placeholder, toolErr.Error(), 1),
			ToolCalls:   toolCalls,
			ToolResults: toolResults,
		})
		return Result{
			Outcome:   OutcomeFailed,
			Title:     generation.Title,
			ToolError: toolErr.Error(),
			Attempts:  generation.Attempts,
		}
	}

	title := render.Title
	if title == "" {
		title = generation.Title
	}
	answer := fmt.Sprintf("Here is your diagram %q: %s", title, render.URI)
	history.Append(stores.Turn{
		Role:        stores.RoleAssistant,
		Text:        strings.Replace(responseText, placeholder, answer, 1),
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
	})
	return Result{
		Outcome:  OutcomeGenerated,
		Title:    title,
		MediaURI: render.URI,
		Attempts: generation.Attempts,
	}
}

// recordTrace persists the trace exactly once per turn. Persistence failure
// is logged and swallowed; tracing never breaks a turn.
func (a *Agent) recordTrace(trace *stores.TraceRecord) {
	if a.config.Traces == nil {
		return
	}
	if err := a.config.Traces.SaveTrace(trace); err != nil {
		a.logger.Printf("Failed to persist trace %s: %v", trace.TraceID, err)
	}
}

// renderFailure builds the typed tool error from the first failed call, or a
// generic one when the service answered without a usable result.
func renderFailure(toolName string, calls []*bridge.PendingToolCall) *ToolError {
	for _, call := range calls {
		if call.State == bridge.StateFailed {
			prefix := fmt.Sprintf("Error calling tool '%s': ", call.ToolName)
			return &ToolError{
				ToolName: call.ToolName,
				Message:  strings.TrimPrefix(call.Result, prefix),
			}
		}
	}
	return &ToolError{ToolName: toolName, Message: "render service returned no result"}
}

func serializeOrEmpty(history stores.History, logger *log.Logger) string {
	serialized, err := history.Serialize()
	if err != nil {
		logger.Printf("Failed to serialize history: %v", err)
		return "[]"
	}
	return serialized
}
