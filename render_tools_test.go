package draftsmith

import (
	"testing"

	"github.com/draftsmith/draftsmith/tools"
)

func TestRenderTools_LoadsBothDeclarations(t *testing.T) {
	decls := RenderTools()
	if len(decls) != 2 {
		t.Fatalf("Expected 2 declarations, got %d", len(decls))
	}

	byName := map[string]bool{}
	for _, decl := range decls {
		byName[decl.Name] = true
		if decl.Parameters.Type != "object" {
			t.Errorf("Tool %s: expected object parameters, got %s", decl.Name, decl.Parameters.Type)
		}
		required := map[string]bool{}
		for _, field := range decl.Parameters.Required {
			required[field] = true
		}
		if !required["title"] || !required["code"] {
			t.Errorf("Tool %s: expected title and code required, got %v", decl.Name, decl.Parameters.Required)
		}
	}

	if !byName["draw_technical_diagram"] || !byName["draw_mermaid"] {
		t.Errorf("Expected both render tools, got %v", byName)
	}
}

func TestCreate_Tool_RejectsNonFunction(t *testing.T) {
	if _, err := Create_Tool("not a function"); err == nil {
		t.Error("Expected error for non-function input")
	}
}

func TestCreate_Tool_SchemaNameMatchesStub(t *testing.T) {
	decl, err := Create_Tool(tools.Draw_Mermaid)
	if err != nil {
		t.Fatalf("Create_Tool failed: %v", err)
	}
	if decl.Name != "draw_mermaid" {
		t.Errorf("Expected wire name draw_mermaid, got %s", decl.Name)
	}
}
