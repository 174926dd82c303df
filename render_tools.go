package draftsmith

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/tools"
)

//go:embed schemas/cached_schemas/*.json
var schemaFiles embed.FS

// Create_Tool takes a render stub function, finds its generated JSON schema,
// and returns the tool declaration the bridge validates arguments against.
func Create_Tool(fn interface{}) (models.FunctionDeclaration, error) {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		return models.FunctionDeclaration{}, errors.New("input must be a function")
	}

	// Get the function name
	fullName := runtime.FuncForPC(fnValue.Pointer()).Name()
	// Extract the base name (e.g., "Draw_Mermaid" from "tools.Draw_Mermaid")
	lastDot := strings.LastIndex(fullName, ".")
	funcName := fullName
	if lastDot != -1 {
		funcName = fullName[lastDot+1:]
	}

	// Schema files carry the lowercase wire name of the tool.
	schemaPath := filepath.Join("schemas", "cached_schemas", strings.ToLower(funcName)+".json")

	schemaBytes, err := schemaFiles.ReadFile(schemaPath)
	if err != nil {
		return models.FunctionDeclaration{}, fmt.Errorf("failed to read embedded schema file '%s': %w", schemaPath, err)
	}

	var funcDecl models.FunctionDeclaration
	err = json.Unmarshal(schemaBytes, &funcDecl)
	if err != nil {
		return models.FunctionDeclaration{}, fmt.Errorf("failed to unmarshal schema from '%s': %w", schemaPath, err)
	}

	return funcDecl, nil
}

func Create_Tools(fns []interface{}) ([]models.FunctionDeclaration, error) {
	decls := []models.FunctionDeclaration{}
	for _, fn := range fns {
		tool, err := Create_Tool(fn)
		if err != nil {
			return nil, err
		}
		decls = append(decls, tool)
	}
	return decls, nil
}

// RenderTools returns the declarations for both render tools. The schemas are
// generated from the stubs in tools/ and embedded at build time, so failure
// here means a broken build rather than a runtime condition.
func RenderTools() []models.FunctionDeclaration {
	decls, err := Create_Tools([]interface{}{
		tools.Draw_Technical_Diagram,
		tools.Draw_Mermaid,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to load render tool schemas: %v", err))
	}
	return decls
}
