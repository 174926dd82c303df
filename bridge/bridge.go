package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/draftsmith/draftsmith/models"
	"github.com/google/uuid"
)

// CallState tracks the lifecycle of a pending tool call.
type CallState string

const (
	StatePending  CallState = "pending"
	StateResolved CallState = "resolved"
	StateFailed   CallState = "failed"
)

// PlaceholderPrefix prefixes the opaque token handed back from a synchronous
// Call. The token is never a real render result; the orchestrator resolves it
// later.
const PlaceholderPrefix = "PENDING_TOOL_CALL_"

// PendingToolCall is a recorded intent to invoke the external render service,
// created synchronously and resolved asynchronously. Each id is resolved
// exactly once.
type PendingToolCall struct {
	ID        string                 `json:"id"`
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	State     CallState              `json:"state"`
	Result    string                 `json:"result,omitempty"`
}

// Placeholder returns the opaque token representing this call's eventual
// result.
func (c *PendingToolCall) Placeholder() string {
	return PlaceholderPrefix + c.ID
}

// ToolResponse is the external tool service's answer. On success Content is a
// JSON object carrying at least {uri, title}.
type ToolResponse struct {
	OK      bool   `json:"ok"`
	Content string `json:"content"`
}

// ToolCaller performs the real network call to the external render service.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) (ToolResponse, error)
}

// Bridge reconciles the generator's synchronous "call a tool, get a string"
// contract with the asynchronous external render service. Calls are recorded
// synchronously and a placeholder token is returned immediately; the
// orchestrator resolves the recorded calls after generation completes.
//
// A Bridge belongs to a single turn. Concurrent turns each own their own
// Bridge, so resolution across turns needs no coordination.
type Bridge struct {
	mu           sync.Mutex
	calls        []*PendingToolCall
	declarations map[string]models.FunctionDeclaration
	logger       *log.Logger
}

// New creates a turn-scoped bridge. Declarations, when provided, are used to
// reject calls with missing required arguments before they reach the wire.
func New(declarations []models.FunctionDeclaration, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}

	declsByName := make(map[string]models.FunctionDeclaration, len(declarations))
	for _, decl := range declarations {
		declsByName[decl.Name] = decl
	}

	return &Bridge{
		declarations: declsByName,
		logger:       logger,
	}
}

// Call records a tool invocation and returns a placeholder token immediately.
// The caller may embed the token in further reasoning or output; it is
// substituted by the real result during resolution.
func (b *Bridge) Call(toolName string, arguments map[string]interface{}) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	call := &PendingToolCall{
		ID:        uuid.New().String(),
		ToolName:  toolName,
		Arguments: arguments,
		State:     StatePending,
	}
	b.calls = append(b.calls, call)
	b.logger.Printf("Recorded pending tool call %s (%s)", call.ID, toolName)

	return call.Placeholder()
}

// Calls returns the recorded calls in creation order.
func (b *Bridge) Calls() []*PendingToolCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*PendingToolCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// ResolveAll performs the real network call for every pending call, in
// creation order. Transport or remote errors are folded into the call's
// result as a synthesized error string with state failed; resolution itself
// never returns an error to the turn.
func (b *Bridge) ResolveAll(ctx context.Context, caller ToolCaller) {
	for _, call := range b.Calls() {
		b.resolve(ctx, caller, call)
	}
}

func (b *Bridge) resolve(ctx context.Context, caller ToolCaller, call *PendingToolCall) {
	b.mu.Lock()
	if call.State != StatePending {
		// Exactly one resolution per id.
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	if err := b.checkArguments(call); err != nil {
		b.fail(call, err)
		return
	}

	response, err := caller.CallTool(ctx, call.ToolName, call.Arguments)
	if err != nil {
		b.fail(call, err)
		return
	}
	if !response.OK {
		b.fail(call, fmt.Errorf("%s", response.Content))
		return
	}

	b.mu.Lock()
	call.State = StateResolved
	call.Result = response.Content
	b.mu.Unlock()
	b.logger.Printf("Resolved tool call %s (%s)", call.ID, call.ToolName)
}

// checkArguments validates a call against its declaration's required fields.
func (b *Bridge) checkArguments(call *PendingToolCall) error {
	decl, ok := b.declarations[call.ToolName]
	if !ok {
		if len(b.declarations) == 0 {
			return nil // no declarations loaded, nothing to enforce
		}
		return fmt.Errorf("unknown tool")
	}

	for _, required := range decl.Parameters.Required {
		if _, present := call.Arguments[required]; !present {
			return fmt.Errorf("missing required argument '%s'", required)
		}
	}
	return nil
}

func (b *Bridge) fail(call *PendingToolCall, err error) {
	b.mu.Lock()
	call.State = StateFailed
	call.Result = fmt.Sprintf("Error calling tool '%s': %s", call.ToolName, err)
	b.mu.Unlock()
	b.logger.Printf("Tool call %s (%s) failed: %v", call.ID, call.ToolName, err)
}

// RenderResult is the structured answer extracted from a resolved render
// call.
type RenderResult struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ExtractRenderResult scans resolved tool results for one whose content
// parses as JSON carrying a render URI, preferring the most recent. Pending
// and failed entries are skipped, never mistaken for success.
func ExtractRenderResult(calls []*PendingToolCall) (RenderResult, bool) {
	for i := len(calls) - 1; i >= 0; i-- {
		call := calls[i]
		if call.State != StateResolved {
			continue
		}

		var result RenderResult
		if err := json.Unmarshal([]byte(call.Result), &result); err != nil {
			continue
		}
		if strings.TrimSpace(result.URI) == "" {
			continue
		}
		return result, true
	}
	return RenderResult{}, false
}
