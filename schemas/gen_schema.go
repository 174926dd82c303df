// Command gen_schema generates a render-tool JSON schema from a Go function
// signature. The function's doc comment becomes the tool description and its
// parameters become the JSON Schema properties. Output lands in
// cached_schemas/ where the root package embeds it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// JSONSchema represents a basic JSON Schema structure
type JSONSchema struct {
	Type        string                `json:"type,omitempty"`
	Description string                `json:"description,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty"`
	Required    []string              `json:"required,omitempty"`
}

// ToolFunctionSchema is the top-level structure of the generated file. It
// matches models.FunctionDeclaration.
type ToolFunctionSchema struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

func main() {
	funcName := flag.String("func", "", "Name of the function to generate schema for")
	fileName := flag.String("file", "main.go", "Go source file containing the function")
	outDir := flag.String("out", "cached_schemas", "Output directory for the generated schema")
	flag.Parse()

	if *funcName == "" {
		log.Fatal("Function name must be provided using -func flag")
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
		Fset: token.NewFileSet(),
	}

	loadPattern := filepath.Dir(*fileName)
	pkgs, err := packages.Load(cfg, loadPattern)
	if err != nil {
		log.Fatalf("Failed to load package(s) for pattern '%s': %v", loadPattern, err)
	}
	if len(pkgs) == 0 {
		log.Fatalf("No packages found for pattern: %s", loadPattern)
	}
	pkg := pkgs[0]

	var loadErrors []string
	for _, p := range pkgs {
		for _, err := range p.Errors {
			loadErrors = append(loadErrors, err.Error())
		}
	}
	if len(loadErrors) > 0 {
		log.Fatalf("Errors during package loading/type checking:\n%s", strings.Join(loadErrors, "\n"))
	}

	scope := pkg.Types.Scope()
	obj := scope.Lookup(*funcName)
	if obj == nil {
		log.Fatalf("Function '%s' not found in package '%s'", *funcName, pkg.PkgPath)
	}
	funcObj, ok := obj.(*types.Func)
	if !ok {
		log.Fatalf("Object '%s' found but is not a function", *funcName)
	}
	funcSig, ok := funcObj.Type().(*types.Signature)
	if !ok {
		log.Fatalf("Object '%s' found but is not a function signature", *funcName)
	}

	// Find the declaration node for the doc comment.
	var funcDecl *ast.FuncDecl
	for _, syntaxFile := range pkg.Syntax {
		ast.Inspect(syntaxFile, func(n ast.Node) bool {
			fn, ok := n.(*ast.FuncDecl)
			if !ok {
				return true
			}
			if fn.Name != nil && pkg.TypesInfo.Defs[fn.Name] == funcObj {
				funcDecl = fn
				return false
			}
			return true
		})
		if funcDecl != nil {
			break
		}
	}

	funcDescription := ""
	if funcDecl != nil && funcDecl.Doc != nil {
		funcDescription = strings.TrimSpace(funcDecl.Doc.Text())
	} else {
		log.Printf("Warning: No documentation comment found for function '%s'", *funcName)
	}

	params := funcSig.Params()
	parameterSchema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
		Required:   []string{},
	}

	for i := 0; i < params.Len(); i++ {
		param := params.At(i)
		paramSchema, err := generateSchemaForType(param.Type())
		if err != nil {
			log.Printf("Warning: Could not generate schema for parameter '%s' (type %s): %v. Skipping.", param.Name(), param.Type().String(), err)
			continue
		}
		parameterSchema.Properties[param.Name()] = paramSchema

		if _, isPointer := param.Type().(*types.Pointer); !isPointer {
			parameterSchema.Required = append(parameterSchema.Required, param.Name())
		}
	}
	sort.Strings(parameterSchema.Required)

	// Tool names on the wire are lowercase; the Go stub is exported.
	finalSchema := ToolFunctionSchema{
		Name:        strings.ToLower(*funcName),
		Description: funcDescription,
		Parameters:  parameterSchema,
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create directory '%s': %v", *outDir, err)
	}

	schemaJSON, err := json.MarshalIndent(finalSchema, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal schema to JSON: %v", err)
	}

	outputFile := filepath.Join(*outDir, finalSchema.Name+".json")
	if err := os.WriteFile(outputFile, schemaJSON, 0644); err != nil {
		log.Fatalf("Failed to write schema to file '%s': %v", outputFile, err)
	}

	log.Printf("Successfully generated schema for function '%s' and saved to '%s'", *funcName, outputFile)
}

// generateSchemaForType maps a Go type onto its JSON Schema form.
func generateSchemaForType(t types.Type) (JSONSchema, error) {
	switch typ := t.Underlying().(type) {
	case *types.Basic:
		switch typ.Kind() {
		case types.String:
			return JSONSchema{Type: "string"}, nil
		case types.Bool:
			return JSONSchema{Type: "boolean"}, nil
		case types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
			types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64:
			return JSONSchema{Type: "integer"}, nil
		case types.Float32, types.Float64:
			return JSONSchema{Type: "number"}, nil
		default:
			return JSONSchema{}, fmt.Errorf("unsupported basic kind: %s", typ.String())
		}
	case *types.Slice:
		itemSchema, err := generateSchemaForType(typ.Elem())
		if err != nil {
			return JSONSchema{}, err
		}
		return JSONSchema{Type: "array", Items: &itemSchema}, nil
	case *types.Pointer:
		return generateSchemaForType(typ.Elem())
	case *types.Struct:
		schema := JSONSchema{
			Type:       "object",
			Properties: make(map[string]JSONSchema),
		}
		for i := 0; i < typ.NumFields(); i++ {
			field := typ.Field(i)
			if !field.Exported() {
				continue
			}
			fieldSchema, err := generateSchemaForType(field.Type())
			if err != nil {
				return JSONSchema{}, err
			}
			schema.Properties[strings.ToLower(field.Name())] = fieldSchema
		}
		return schema, nil
	default:
		return JSONSchema{}, fmt.Errorf("unsupported type: %s", t.String())
	}
}
