package router

import (
	"context"
	"fmt"
	"testing"

	"github.com/draftsmith/draftsmith/models"
)

// fakeModel answers classification requests with a canned response.
type fakeModel struct {
	response string
	err      error
	requests []models.Model_Request
}

func (f *fakeModel) Model_Request(ctx context.Context, request models.Model_Request) (models.Model_Response, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return models.Model_Response{}, f.err
	}
	return models.Model_Response{Text: f.response}, nil
}

func classifier(label string) *fakeModel {
	return &fakeModel{response: fmt.Sprintf(`{"tool_choice":%q,"reasoning":"looks right"}`, label)}
}

func TestRoute_PythonDiagramsLabel(t *testing.T) {
	r := New(classifier("python_diagrams"))
	decision := r.Route(context.Background(), "draw my AWS setup", "")
	if decision.Target != TargetPythonDiagrams {
		t.Errorf("Expected python_diagrams, got %s", decision.Target)
	}
	if decision.ClarifyingQuestion != "" {
		t.Error("Dialect decisions must not carry a clarifying question")
	}
}

func TestRoute_MermaidLabel(t *testing.T) {
	r := New(classifier("mermaid"))
	decision := r.Route(context.Background(), "draw a login flowchart", "")
	if decision.Target != TargetMermaid {
		t.Errorf("Expected mermaid, got %s", decision.Target)
	}
}

func TestRoute_SynonymLabelsMapIntoClosedSet(t *testing.T) {
	cases := map[string]Target{
		"architecture": TargetPythonDiagrams,
		"cloud":        TargetPythonDiagrams,
		"flowchart":    TargetMermaid,
		"sequence":     TargetMermaid,
		"ambiguous":    TargetClarify,
	}
	for label, expected := range cases {
		r := New(classifier(label))
		decision := r.Route(context.Background(), "draw something", "")
		if decision.Target != expected {
			t.Errorf("Label %q: expected %s, got %s", label, expected, decision.Target)
		}
	}
}

func TestRoute_LabelCaseInsensitive(t *testing.T) {
	r := New(classifier("Mermaid"))
	decision := r.Route(context.Background(), "draw a flow", "")
	if decision.Target != TargetMermaid {
		t.Errorf("Expected case-insensitive label match, got %s", decision.Target)
	}
}

func TestRoute_UnknownLabelRoutesToClarify(t *testing.T) {
	r := New(classifier("ascii_art"))
	decision := r.Route(context.Background(), "draw something", "")
	if decision.Target != TargetClarify {
		t.Errorf("Expected clarify for unknown label, got %s", decision.Target)
	}
	if decision.ClarifyingQuestion == "" {
		t.Error("Clarify decision must carry a question")
	}
}

func TestRoute_ModelErrorRoutesToClarify(t *testing.T) {
	r := New(&fakeModel{err: fmt.Errorf("deadline exceeded")})
	decision := r.Route(context.Background(), "draw something", "")
	if decision.Target != TargetClarify {
		t.Errorf("Expected clarify on classification failure, got %s", decision.Target)
	}
	if decision.ClarifyingQuestion == "" {
		t.Error("Clarify decision must carry a question")
	}
}

func TestRoute_UnparseableAnswerRoutesToClarify(t *testing.T) {
	r := New(&fakeModel{response: "I think you want a flowchart"})
	decision := r.Route(context.Background(), "draw something", "")
	if decision.Target != TargetClarify {
		t.Errorf("Expected clarify on unparseable answer, got %s", decision.Target)
	}
}

func TestRoute_ClarifyUsesModelQuestion(t *testing.T) {
	model := &fakeModel{response: `{"tool_choice":"clarify","clarification_question":"AWS or on-prem?"}`}
	r := New(model)
	decision := r.Route(context.Background(), "draw my infra", "")
	if decision.Target != TargetClarify {
		t.Fatalf("Expected clarify, got %s", decision.Target)
	}
	if decision.ClarifyingQuestion != "AWS or on-prem?" {
		t.Errorf("Expected model's question, got %q", decision.ClarifyingQuestion)
	}
}

func TestRoute_ClarifyWithoutQuestionGetsGeneric(t *testing.T) {
	r := New(classifier("clarify"))
	decision := r.Route(context.Background(), "do the thing", "")
	if decision.ClarifyingQuestion == "" {
		t.Error("Expected generic clarifying question")
	}
}

func TestRoute_PassesConversationContext(t *testing.T) {
	model := classifier("mermaid")
	r := New(model)
	r.Route(context.Background(), "make the arrows red", "user: draw a flowchart\nassistant: Here it is")
	if len(model.requests) != 1 {
		t.Fatalf("Expected 1 model request, got %d", len(model.requests))
	}
	if model.requests[0].Context == "" {
		t.Error("Expected conversation context forwarded to the classifier")
	}
	if !model.requests[0].ForceJSON {
		t.Error("Expected classification request to force JSON output")
	}
}

func TestRoute_FencedJSONAnswer(t *testing.T) {
	model := &fakeModel{response: "```json\n{\"tool_choice\":\"mermaid\"}\n```"}
	r := New(model)
	decision := r.Route(context.Background(), "draw a flow", "")
	if decision.Target != TargetMermaid {
		t.Errorf("Expected fenced JSON to parse, got %s", decision.Target)
	}
}
