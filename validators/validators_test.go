package validators

import (
	"strings"
	"testing"
)

func TestPythonValidator_ValidCode(t *testing.T) {
	v := &PythonCodeValidator{}
	code := "web = EC2(\"web server\")\ndb = RDS(\"database\")\nweb >> db"
	result := v.Validate(code)
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", result.Warnings)
	}
}

func TestPythonValidator_EmptyCode(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("   \n  ")
	if result.Valid {
		t.Error("Expected empty code to be invalid")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Code is empty" {
		t.Errorf("Expected single 'Code is empty' error, got: %v", result.Errors)
	}
}

func TestPythonValidator_ForbiddenImport(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("import os\nweb = EC2(\"web\")")
	if result.Valid {
		t.Error("Expected code with import to be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err, "forbidden keyword: import ") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected forbidden keyword error, got: %v", result.Errors)
	}
}

func TestPythonValidator_DangerousModule(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("x = os.getcwd\nweb = EC2(\"web\")\nweb >> web")
	if result.Valid {
		t.Error("Expected code referencing os. to be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err, "dangerous module reference: os.") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected dangerous module error, got: %v", result.Errors)
	}
}

func TestPythonValidator_WithStatement(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("with Diagram(\"d\"):\n    web = EC2(\"web\")")
	if result.Valid {
		t.Error("Expected code with 'with' statement to be invalid")
	}
}

func TestPythonValidator_UnbalancedBracketsReportLine(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("web = EC2(\"web\"\ndb = RDS(\"db\")\nweb >> db")
	if result.Valid {
		t.Error("Expected unbalanced brackets to be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err, "unclosed '('") && strings.Contains(err, "line 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected unclosed bracket error at line 1, got: %v", result.Errors)
	}
}

func TestPythonValidator_UnterminatedString(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("web = EC2(\"web)\nweb >> web")
	if result.Valid {
		t.Error("Expected unterminated string to be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err, "unterminated string literal at line 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected unterminated string error, got: %v", result.Errors)
	}
}

func TestPythonValidator_TripleQuotedStringSpansLines(t *testing.T) {
	v := &PythonCodeValidator{}
	code := "label = \"\"\"web\ntier\"\"\"\nweb = EC2(\"web\")\ndb = RDS(\"db\")\nweb >> db"
	result := v.Validate(code)
	if !result.Valid {
		t.Errorf("Multi-line triple-quoted strings are valid Python, got errors: %v", result.Errors)
	}
}

func TestPythonValidator_SingleLineTripleQuote(t *testing.T) {
	v := &PythonCodeValidator{}
	code := "label = \"\"\"web tier\"\"\"\nweb = EC2(\"web\")\nweb >> web"
	result := v.Validate(code)
	if !result.Valid {
		t.Errorf("Single-line triple-quoted string must be valid, got errors: %v", result.Errors)
	}
}

func TestPythonValidator_BracketInsideTripleQuoteIgnored(t *testing.T) {
	v := &PythonCodeValidator{}
	code := "label = '''tier (primary\nstill the label)'''\nweb = EC2(\"web\")\nweb >> web"
	result := v.Validate(code)
	if !result.Valid {
		t.Errorf("Brackets inside triple-quoted strings should not count, got errors: %v", result.Errors)
	}
}

func TestPythonValidator_UnterminatedTripleQuote(t *testing.T) {
	v := &PythonCodeValidator{}
	code := "label = \"\"\"web\nweb = EC2(\"web\")\nweb >> web"
	result := v.Validate(code)
	if result.Valid {
		t.Error("Expected unterminated triple-quoted string to be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err, "unterminated triple-quoted string starting at line 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected unterminated triple-quote error at line 1, got: %v", result.Errors)
	}
}

func TestPythonValidator_BracketInStringIgnored(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("web = EC2(\"web (primary)\")\ndb = RDS(\"db\")\nweb >> db")
	if !result.Valid {
		t.Errorf("Brackets inside string literals should not count, got errors: %v", result.Errors)
	}
}

func TestPythonValidator_NoEdgesWarning(t *testing.T) {
	v := &PythonCodeValidator{}
	result := v.Validate("web = EC2(\"web\")\ndb = RDS(\"db\")")
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	found := false
	for _, warn := range result.Warnings {
		if strings.Contains(warn, "No edge connections found") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected missing-edges warning, got: %v", result.Warnings)
	}
}

func TestMermaidValidator_ValidFlowchart(t *testing.T) {
	v := &MermaidCodeValidator{}
	result := v.Validate("flowchart TD\n  A[Start] --> B[End]")
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", result.Warnings)
	}
}

func TestMermaidValidator_EmptyCode(t *testing.T) {
	v := &MermaidCodeValidator{}
	result := v.Validate("")
	if result.Valid {
		t.Error("Expected empty code to be invalid")
	}
}

func TestMermaidValidator_MissingTypeDeclaration(t *testing.T) {
	v := &MermaidCodeValidator{}
	result := v.Validate("A --> B")
	if result.Valid {
		t.Error("Expected missing type declaration to be invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected single error, got: %v", result.Errors)
	}
	for _, dtype := range DiagramTypes {
		if !strings.Contains(result.Errors[0], dtype) {
			t.Errorf("Expected error to list valid type %q, got: %s", dtype, result.Errors[0])
		}
	}
}

func TestMermaidValidator_FlowchartWithoutArrowsWarns(t *testing.T) {
	v := &MermaidCodeValidator{}
	result := v.Validate("flowchart TD\n  A[Start]\n  B[End]")
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	found := false
	for _, warn := range result.Warnings {
		if strings.Contains(warn, "No arrow connections") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected missing-arrows warning, got: %v", result.Warnings)
	}
}

func TestMermaidValidator_SequenceWithoutContentWarns(t *testing.T) {
	v := &MermaidCodeValidator{}
	result := v.Validate("sequenceDiagram\n  title Orders")
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	found := false
	for _, warn := range result.Warnings {
		if strings.Contains(warn, "No participants or message arrows") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected sequence content warning, got: %v", result.Warnings)
	}
}

func TestMermaidValidator_OnlyDeclarationWarns(t *testing.T) {
	v := &MermaidCodeValidator{}
	result := v.Validate("gantt")
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	found := false
	for _, warn := range result.Warnings {
		if strings.Contains(warn, "no content") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected no-content warning, got: %v", result.Warnings)
	}
}

func TestGetFeedback_ErrorsThenWarnings(t *testing.T) {
	result := ValidationResult{
		Errors:   []string{"bad thing"},
		Warnings: []string{"iffy thing"},
	}
	feedback := result.GetFeedback()
	errIdx := strings.Index(feedback, "ERRORS:")
	warnIdx := strings.Index(feedback, "WARNINGS:")
	if errIdx == -1 || warnIdx == -1 {
		t.Fatalf("Expected both ERRORS and WARNINGS sections, got: %s", feedback)
	}
	if errIdx > warnIdx {
		t.Error("Expected errors before warnings")
	}
	if !strings.Contains(feedback, "  - bad thing") {
		t.Errorf("Expected bulleted error, got: %s", feedback)
	}
}

func TestGetFeedback_CleanResult(t *testing.T) {
	result := ValidationResult{Valid: true}
	if feedback := result.GetFeedback(); feedback != "Code is valid" {
		t.Errorf("Expected 'Code is valid', got: %s", feedback)
	}
}
