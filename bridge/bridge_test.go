package bridge

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/draftsmith/draftsmith/models"
)

// fakeCaller answers tool calls from a scripted function and records the
// order it was invoked in.
type fakeCaller struct {
	answer   func(name string, arguments map[string]interface{}) (ToolResponse, error)
	received []string
}

func (f *fakeCaller) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (ToolResponse, error) {
	f.received = append(f.received, name)
	return f.answer(name, arguments)
}

func okCaller(content string) *fakeCaller {
	return &fakeCaller{answer: func(string, map[string]interface{}) (ToolResponse, error) {
		return ToolResponse{OK: true, Content: content}, nil
	}}
}

func TestCall_ReturnsPlaceholderImmediately(t *testing.T) {
	b := New(nil, nil)
	placeholder := b.Call("draw_mermaid", map[string]interface{}{"title": "t", "code": "flowchart TD"})

	if !strings.HasPrefix(placeholder, PlaceholderPrefix) {
		t.Errorf("Expected placeholder with prefix %s, got %s", PlaceholderPrefix, placeholder)
	}

	calls := b.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 recorded call, got %d", len(calls))
	}
	if calls[0].State != StatePending {
		t.Errorf("Expected pending state before resolution, got %s", calls[0].State)
	}
	if calls[0].Placeholder() != placeholder {
		t.Error("Placeholder must round-trip through the recorded call")
	}
}

func TestCall_DistinctIDs(t *testing.T) {
	b := New(nil, nil)
	first := b.Call("draw_mermaid", nil)
	second := b.Call("draw_mermaid", nil)
	if first == second {
		t.Error("Each call must get a distinct placeholder")
	}
}

func TestResolveAll_CreationOrder(t *testing.T) {
	b := New(nil, nil)
	b.Call("first_tool", nil)
	b.Call("second_tool", nil)
	b.Call("third_tool", nil)

	caller := okCaller(`{"uri":"https://img/x.png"}`)
	b.ResolveAll(context.Background(), caller)

	expected := []string{"first_tool", "second_tool", "third_tool"}
	if len(caller.received) != 3 {
		t.Fatalf("Expected 3 dispatches, got %d", len(caller.received))
	}
	for i, name := range expected {
		if caller.received[i] != name {
			t.Errorf("Expected dispatch %d to be %s, got %s", i, name, caller.received[i])
		}
	}
}

func TestResolveAll_ExactlyOnce(t *testing.T) {
	b := New(nil, nil)
	b.Call("draw_mermaid", nil)

	caller := okCaller(`{"uri":"https://img/x.png"}`)
	b.ResolveAll(context.Background(), caller)
	b.ResolveAll(context.Background(), caller)

	if len(caller.received) != 1 {
		t.Errorf("Expected a single dispatch across repeated resolution, got %d", len(caller.received))
	}
}

func TestResolve_TransportFailureSynthesizesError(t *testing.T) {
	b := New(nil, nil)
	b.Call("draw_mermaid", nil)

	caller := &fakeCaller{answer: func(string, map[string]interface{}) (ToolResponse, error) {
		return ToolResponse{}, fmt.Errorf("connection refused")
	}}
	b.ResolveAll(context.Background(), caller)

	call := b.Calls()[0]
	if call.State != StateFailed {
		t.Fatalf("Expected failed state, got %s", call.State)
	}
	expected := "Error calling tool 'draw_mermaid': connection refused"
	if call.Result != expected {
		t.Errorf("Expected %q, got %q", expected, call.Result)
	}
}

func TestResolve_RemoteRejectionSynthesizesError(t *testing.T) {
	b := New(nil, nil)
	b.Call("draw_technical_diagram", nil)

	caller := &fakeCaller{answer: func(string, map[string]interface{}) (ToolResponse, error) {
		return ToolResponse{OK: false, Content: "render failed: bad node class"}, nil
	}}
	b.ResolveAll(context.Background(), caller)

	call := b.Calls()[0]
	if call.State != StateFailed {
		t.Fatalf("Expected failed state, got %s", call.State)
	}
	if !strings.Contains(call.Result, "Error calling tool 'draw_technical_diagram'") {
		t.Errorf("Expected synthesized error string, got %q", call.Result)
	}
	if !strings.Contains(call.Result, "render failed: bad node class") {
		t.Errorf("Expected remote message preserved, got %q", call.Result)
	}
}

func TestResolve_MissingRequiredArgument(t *testing.T) {
	decls := []models.FunctionDeclaration{{
		Name: "draw_mermaid",
		Parameters: models.Parameters{
			Type:     "object",
			Required: []string{"title", "code"},
		},
	}}
	b := New(decls, nil)
	b.Call("draw_mermaid", map[string]interface{}{"title": "t"})

	caller := okCaller(`{"uri":"https://img/x.png"}`)
	b.ResolveAll(context.Background(), caller)

	call := b.Calls()[0]
	if call.State != StateFailed {
		t.Fatalf("Expected failed state for missing argument, got %s", call.State)
	}
	if !strings.Contains(call.Result, "missing required argument 'code'") {
		t.Errorf("Expected missing argument error, got %q", call.Result)
	}
	if len(caller.received) != 0 {
		t.Error("Invalid call must not reach the wire")
	}
}

func TestExtractRenderResult_PrefersNewestResolved(t *testing.T) {
	b := New(nil, nil)
	b.Call("draw_mermaid", nil)
	b.Call("draw_mermaid", nil)

	uris := []string{"https://img/old.png", "https://img/new.png"}
	i := 0
	caller := &fakeCaller{answer: func(string, map[string]interface{}) (ToolResponse, error) {
		content := fmt.Sprintf(`{"uri":%q,"title":"diagram"}`, uris[i])
		i++
		return ToolResponse{OK: true, Content: content}, nil
	}}
	b.ResolveAll(context.Background(), caller)

	result, ok := ExtractRenderResult(b.Calls())
	if !ok {
		t.Fatal("Expected a render result")
	}
	if result.URI != "https://img/new.png" {
		t.Errorf("Expected newest result, got %s", result.URI)
	}
}

func TestExtractRenderResult_SkipsFailedAndPending(t *testing.T) {
	failed := &PendingToolCall{State: StateFailed, Result: "Error calling tool 'draw_mermaid': boom"}
	pending := &PendingToolCall{State: StatePending}
	junk := &PendingToolCall{State: StateResolved, Result: "not json"}
	noURI := &PendingToolCall{State: StateResolved, Result: `{"title":"no uri"}`}

	if _, ok := ExtractRenderResult([]*PendingToolCall{failed, pending, junk, noURI}); ok {
		t.Error("Expected no render result from failed, pending and uri-less calls")
	}
}
