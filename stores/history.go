package stores

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolInvocation is a recorded intent to call a render tool, keyed by call id
// inside a Turn.
type ToolInvocation struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ContentBlock is one piece of a tool result's content. Only text blocks are
// produced today, the type tag keeps the serialized form extensible.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolResult is the resolved outcome of a ToolInvocation.
type ToolResult struct {
	OK      bool           `json:"ok"`
	Content []ContentBlock `json:"content,omitempty"`
}

// Text concatenates the result's text blocks.
func (r ToolResult) Text() string {
	var sb strings.Builder
	for _, block := range r.Content {
		sb.WriteString(block.Text)
	}
	return sb.String()
}

// Turn is one request/response unit within a conversation. Turns are
// immutable once appended to a History.
type Turn struct {
	Role        string                    `json:"role"`
	Text        string                    `json:"text,omitempty"`
	ToolCalls   map[string]ToolInvocation `json:"tool_calls,omitempty"`
	ToolResults map[string]ToolResult     `json:"tool_results,omitempty"`
	// Failed marks a turn whose tool calls never received matching results.
	Failed bool `json:"failed,omitempty"`
}

// Complete reports whether every tool call in the turn has a matching result.
func (t Turn) Complete() bool {
	for id := range t.ToolCalls {
		if _, ok := t.ToolResults[id]; !ok {
			return false
		}
	}
	return true
}

// History is an ordered, append-only sequence of turns, oldest first.
type History struct {
	turns []Turn
}

// NewHistory builds a history from existing turns (oldest first).
func NewHistory(turns []Turn) History {
	h := History{}
	h.turns = append(h.turns, turns...)
	return h
}

// Append adds the complete set of turns produced by one request. It is the
// only mutator of a History.
func (h *History) Append(turns ...Turn) {
	for _, t := range turns {
		if !t.Complete() {
			t.Failed = true
		}
		h.turns = append(h.turns, t)
	}
}

// Turns returns a copy of the turn sequence.
func (h History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns.
func (h History) Len() int {
	return len(h.turns)
}

// Serialize renders the history as an opaque JSON string. Load reverses it
// losslessly.
func (h History) Serialize() (string, error) {
	if h.turns == nil {
		return "[]", nil
	}
	data, err := json.Marshal(h.turns)
	if err != nil {
		return "", fmt.Errorf("failed to serialize history: %w", err)
	}
	return string(data), nil
}

// LoadHistory parses a serialized history. Malformed input returns an error;
// callers are expected to fall back to an empty history rather than fail the
// turn.
func LoadHistory(serialized string) (History, error) {
	if strings.TrimSpace(serialized) == "" {
		return History{}, nil
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(serialized), &turns); err != nil {
		return History{}, fmt.Errorf("malformed history: %w", err)
	}

	return NewHistory(SanitizeTurns(turns)), nil
}

// SanitizeTurns flags turns whose tool calls lack matching results as failed.
// Turns already marked failed stay failed. Ordering is never changed.
func SanitizeTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	flagged := 0
	for i, t := range turns {
		if !t.Complete() && !t.Failed {
			t.Failed = true
			flagged++
		}
		out[i] = t
	}
	if flagged > 0 {
		log.Printf("[HISTORY] Flagged %d turns with unresolved tool calls as failed", flagged)
	}
	return out
}

// FormatForPrompt flattens the history into readable "role: text" lines for
// use as model context. Tool plumbing is omitted; failed turns are kept so a
// refinement request can reference what went wrong.
func (h History) FormatForPrompt() string {
	if len(h.turns) == 0 {
		return ""
	}

	lines := []string{}
	for _, t := range h.turns {
		if t.Text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Text))
	}
	return strings.Join(lines, "\n")
}
