package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/draftsmith/draftsmith/models"
)

// Target is the closed set of routing outcomes.
type Target string

const (
	// TargetPythonDiagrams routes to the structured-layout dialect (cloud
	// architecture, infrastructure, deployment topology).
	TargetPythonDiagrams Target = "python_diagrams"
	// TargetMermaid routes to the flow/sequence dialect (flowcharts,
	// sequence diagrams, ER diagrams, state machines, timelines).
	TargetMermaid Target = "mermaid"
	// TargetClarify terminates the turn with a question instead of a
	// diagram.
	TargetClarify Target = "clarify"
)

// RoutingDecision is the router's verdict for one turn. ClarifyingQuestion is
// set exactly when Target is TargetClarify.
type RoutingDecision struct {
	Target             Target `json:"target"`
	Rationale          string `json:"rationale"`
	ClarifyingQuestion string `json:"clarifying_question,omitempty"`
}

const genericClarification = "Could you describe what kind of diagram you need? For example: a cloud architecture diagram, a flowchart, or a sequence diagram."

// targetsByLabel maps every label the classifier may answer with onto a
// target. Built once at startup; labels outside this table route to clarify,
// never silently to a dialect.
var targetsByLabel = map[string]Target{
	// direct target names
	"python_diagrams": TargetPythonDiagrams,
	"mermaid":         TargetMermaid,
	"clarify":         TargetClarify,

	// structured-layout vocabulary
	"technical":      TargetPythonDiagrams,
	"architecture":   TargetPythonDiagrams,
	"cloud":          TargetPythonDiagrams,
	"infrastructure": TargetPythonDiagrams,
	"system":         TargetPythonDiagrams,

	// flow/sequence vocabulary
	"flow":      TargetMermaid,
	"sequence":  TargetMermaid,
	"flowchart": TargetMermaid,
	"process":   TargetMermaid,
	"state":     TargetMermaid,
	"class":     TargetMermaid,

	// ambiguity labels
	"ambiguous": TargetClarify,
	"unclear":   TargetClarify,
	"unknown":   TargetClarify,
}

const routerSystemPrompt = "You are a router for a diagramming assistant. Analyze the user's request and select the appropriate diagram tool. " +
	"Answer 'python_diagrams' for cloud architecture, AWS/GCP/Azure diagrams and deployment topology. " +
	"Answer 'mermaid' for flowcharts, sequence diagrams, ER diagrams, state machines and timelines. " +
	"Answer 'clarify' if the request is too ambiguous or vague to determine the diagram type. " +
	"Respond with a single JSON object: {\"tool_choice\": \"python_diagrams\"|\"mermaid\"|\"clarify\", \"reasoning\": \"...\", \"clarification_question\": \"...\"}."

// Router classifies a diagram request into a target dialect or a
// clarification. It is a pure function of its inputs plus the underlying
// classification call.
type Router struct {
	model  models.Model
	logger *log.Logger
}

// New creates a router backed by the given classification model.
func New(model models.Model) *Router {
	return &Router{
		model:  model,
		logger: log.New(log.Writer(), "[ROUTER] ", log.LstdFlags),
	}
}

// classifierAnswer is the JSON shape the classification prompt asks for.
type classifierAnswer struct {
	ToolChoice            string `json:"tool_choice"`
	Reasoning             string `json:"reasoning"`
	ClarificationQuestion string `json:"clarification_question"`
}

// Route classifies the request. A failed or unparseable classification, or a
// label outside the closed set, routes to clarify with a generic question,
// never to a dialect.
func (r *Router) Route(ctx context.Context, userRequest, conversationContext string) RoutingDecision {
	response, err := r.model.Model_Request(ctx, models.Model_Request{
		System:    routerSystemPrompt,
		Prompt:    fmt.Sprintf("USER REQUEST:\n%s", userRequest),
		Context:   conversationContext,
		ForceJSON: true,
	})
	if err != nil {
		r.logger.Printf("Classification call failed: %v", err)
		return clarifyDecision(fmt.Sprintf("classification call failed: %v", err))
	}

	var answer classifierAnswer
	if err := json.Unmarshal([]byte(models.ExtractJSONObject(response.Text)), &answer); err != nil {
		r.logger.Printf("Could not parse classifier answer: %v", err)
		return clarifyDecision("classifier returned unparseable output")
	}

	label := strings.ToLower(strings.TrimSpace(answer.ToolChoice))
	target, known := targetsByLabel[label]
	if !known {
		r.logger.Printf("Classifier returned unrecognized label %q, routing to clarify", answer.ToolChoice)
		return clarifyDecision(fmt.Sprintf("unrecognized classification label %q", answer.ToolChoice))
	}

	decision := RoutingDecision{
		Target:    target,
		Rationale: answer.Reasoning,
	}
	if target == TargetClarify {
		decision.ClarifyingQuestion = strings.TrimSpace(answer.ClarificationQuestion)
		if decision.ClarifyingQuestion == "" {
			decision.ClarifyingQuestion = genericClarification
		}
	}

	return decision
}

func clarifyDecision(rationale string) RoutingDecision {
	return RoutingDecision{
		Target:             TargetClarify,
		Rationale:          rationale,
		ClarifyingQuestion: genericClarification,
	}
}
