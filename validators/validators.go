package validators

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult is the outcome of running a validator over generated code.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// GetFeedback renders the result as human-readable text for a generation retry.
// Errors come first, then warnings. A clean result maps to "Code is valid".
func (r ValidationResult) GetFeedback() string {
	lines := []string{}
	if len(r.Errors) > 0 {
		lines = append(lines, "ERRORS:")
		for _, err := range r.Errors {
			lines = append(lines, "  - "+err)
		}
	}
	if len(r.Warnings) > 0 {
		lines = append(lines, "WARNINGS:")
		for _, warn := range r.Warnings {
			lines = append(lines, "  - "+warn)
		}
	}
	if len(lines) == 0 {
		return "Code is valid"
	}
	return strings.Join(lines, "\n")
}

// Validator checks generated diagram code. Implementations are pure and
// perform no I/O.
type Validator interface {
	Validate(code string) ValidationResult
}

// PythonCodeValidator validates Python diagrams library code.
//
// Safety rules for generated code:
//   - no imports (handled by the render service)
//   - no with statements (Diagram context manager is handled externally)
//   - no dangerous operations
//   - structurally valid syntax
//   - should contain edge connections
type PythonCodeValidator struct{}

var forbiddenKeywords = []string{
	"import ",
	"from ",
	"__import__",
	"eval(",
	"exec(",
	"compile(",
	"open(",
	"file(",
}

var dangerousModules = []string{
	"os.",
	"sys.",
	"subprocess",
	"pathlib",
	"__builtins__",
	"__globals__",
	"__locals__",
}

// Validate checks Python diagrams code against the safety rules.
func (v *PythonCodeValidator) Validate(code string) ValidationResult {
	errors := []string{}
	warnings := []string{}

	if strings.TrimSpace(code) == "" {
		return ValidationResult{Valid: false, Errors: []string{"Code is empty"}}
	}

	for _, keyword := range forbiddenKeywords {
		if strings.Contains(code, keyword) {
			errors = append(errors, fmt.Sprintf("Code contains forbidden keyword: %s. Imports are handled externally.", keyword))
		}
	}

	for _, module := range dangerousModules {
		if strings.Contains(code, module) {
			errors = append(errors, fmt.Sprintf("Code contains dangerous module reference: %s", module))
		}
	}

	if strings.Contains(strings.ToLower(code), "with ") {
		errors = append(errors, "Code contains 'with' statement. Diagram context manager is handled externally.")
	}

	errors = append(errors, checkStructure(code)...)

	// Edge connections are made with the >> operator or explicit Edge() calls.
	hasEdges := strings.Contains(code, ">>") || strings.Contains(code, "Edge(")
	if !hasEdges {
		warnings = append(warnings, "No edge connections found (>> operator or Edge() calls). Diagram may not show relationships between nodes.")
	}

	if strings.Count(code, "=") == 0 {
		warnings = append(warnings, "No variable assignments found. Are nodes being created?")
	}

	return ValidationResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// checkStructure runs a lightweight structural syntax pass over the code and
// reports problems with line numbers: unterminated string literals and
// unbalanced brackets. Triple-quoted strings may span lines, so their state
// carries across the per-line scan.
func checkStructure(code string) []string {
	errors := []string{}

	type openBracket struct {
		ch   byte
		line int
	}
	stack := []openBracket{}
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}

	inTriple := false
	var tripleQuote byte
	tripleLine := 0

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lineno := i + 1
		inString := false
		var quote byte
		for j := 0; j < len(line); j++ {
			ch := line[j]
			if inTriple {
				if ch == '\\' {
					j++ // skip escaped char
					continue
				}
				if ch == tripleQuote && j+2 < len(line) && line[j+1] == tripleQuote && line[j+2] == tripleQuote {
					inTriple = false
					j += 2
				}
				continue
			}
			if inString {
				if ch == '\\' {
					j++ // skip escaped char
					continue
				}
				if ch == quote {
					inString = false
				}
				continue
			}
			switch ch {
			case '\'', '"':
				if j+2 < len(line) && line[j+1] == ch && line[j+2] == ch {
					inTriple = true
					tripleQuote = ch
					tripleLine = lineno
					j += 2
				} else {
					inString = true
					quote = ch
				}
			case '#':
				j = len(line) // rest of line is a comment
			case '(', '[', '{':
				stack = append(stack, openBracket{ch, lineno})
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1].ch != pairs[ch] {
					errors = append(errors, fmt.Sprintf("Syntax error: unmatched '%c' at line %d", ch, lineno))
				} else {
					stack = stack[:len(stack)-1]
				}
			}
		}
		if inString {
			errors = append(errors, fmt.Sprintf("Syntax error: unterminated string literal at line %d", lineno))
		}
	}

	if inTriple {
		errors = append(errors, fmt.Sprintf("Syntax error: unterminated triple-quoted string starting at line %d", tripleLine))
	}

	for _, open := range stack {
		errors = append(errors, fmt.Sprintf("Syntax error: unclosed '%c' opened at line %d", open.ch, open.line))
	}

	return errors
}

// MermaidCodeValidator validates Mermaid diagram syntax.
//
// Mermaid is permissive, so only the diagram-kind declaration is a hard
// requirement; kind-specific checks surface as warnings.
type MermaidCodeValidator struct{}

// DiagramTypes are the valid first-line diagram kind declarations.
var DiagramTypes = []string{
	"flowchart",
	"graph",
	"sequenceDiagram",
	"classDiagram",
	"stateDiagram",
	"erDiagram",
	"gantt",
	"pie",
	"journey",
	"gitGraph",
}

var mermaidNodePattern = regexp.MustCompile(`\[.*\]|\(.*\)|\{.*\}|\[\[.*\]\]`)
var mermaidEntityPattern = regexp.MustCompile(`\w+\s*\{`)

// Validate checks Mermaid diagram code.
func (v *MermaidCodeValidator) Validate(code string) ValidationResult {
	errors := []string{}
	warnings := []string{}

	if strings.TrimSpace(code) == "" {
		return ValidationResult{Valid: false, Errors: []string{"Code is empty"}}
	}

	lines := []string{}
	for _, line := range strings.Split(code, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return ValidationResult{Valid: false, Errors: []string{"Code contains no non-empty lines"}}
	}

	firstLine := strings.ToLower(lines[0])
	diagramType := ""
	for _, dtype := range DiagramTypes {
		if strings.HasPrefix(firstLine, strings.ToLower(dtype)) {
			diagramType = dtype
			break
		}
	}

	if diagramType == "" {
		return ValidationResult{
			Valid: false,
			Errors: []string{fmt.Sprintf("First line must declare diagram type. Valid types: %s",
				strings.Join(DiagramTypes, ", "))},
		}
	}

	switch diagramType {
	case "flowchart", "graph":
		warnings = append(warnings, validateFlowchart(code)...)
	case "sequenceDiagram":
		warnings = append(warnings, validateSequence(code)...)
	case "erDiagram":
		warnings = append(warnings, validateER(code)...)
	}

	if len(lines) < 2 {
		warnings = append(warnings, "Diagram only has type declaration, no content")
	}

	return ValidationResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

func validateFlowchart(code string) []string {
	warnings := []string{}

	hasConnections := false
	for _, arrow := range []string{"-->", "---", "-.->", "==>", "->", "~~>"} {
		if strings.Contains(code, arrow) {
			hasConnections = true
			break
		}
	}
	if !hasConnections {
		warnings = append(warnings, "No arrow connections found in flowchart")
	}

	if !mermaidNodePattern.MatchString(code) {
		warnings = append(warnings, "No node definitions found (brackets, parentheses, braces)")
	}

	return warnings
}

func validateSequence(code string) []string {
	hasParticipants := strings.Contains(strings.ToLower(code), "participant ")
	hasArrows := false
	for _, arrow := range []string{"->", "->>", "-->", "-->>"} {
		if strings.Contains(code, arrow) {
			hasArrows = true
			break
		}
	}

	if !hasParticipants && !hasArrows {
		return []string{"No participants or message arrows found in sequence diagram"}
	}
	return nil
}

func validateER(code string) []string {
	warnings := []string{}

	if !mermaidEntityPattern.MatchString(code) {
		warnings = append(warnings, "No entity definitions found (entity {)")
	}

	hasRelationships := false
	for _, rel := range []string{"}o", "}|", "||", "|o", "o{"} {
		if strings.Contains(code, rel) {
			hasRelationships = true
			break
		}
	}
	if !hasRelationships {
		warnings = append(warnings, "No relationship symbols found")
	}

	return warnings
}
