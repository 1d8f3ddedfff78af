package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() map[string]any {
	str := map[string]any{"type": "string"}
	record := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":            map[string]any{"type": "string", "minLength": 1},
			"filename":      str,
			"original_path": str,
			"purpose":       str,
			"uploaded_at":   str,
			"size":          map[string]any{"type": "integer", "minimum": 0},
			"status":        str,
		},
		"required": []string{"id"},
	}
	session := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"directory":   str,
			"uploaded_at": str,
			"file_count":  map[string]any{"type": "integer", "minimum": 0},
			"file_ids":    map[string]any{"type": "array", "items": str},
		},
		"required": []string{"file_ids"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"files":           map[string]any{"type": "array", "items": record},
			"upload_sessions": map[string]any{"type": "array", "items": session},
		},
	}
}

func ledgerSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(documentSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("ledger.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("ledger.json")
	})
	return compiledSchema, schemaErr
}

// validateDocument checks raw ledger bytes before they are decoded.
func validateDocument(data []byte) error {
	schema, err := ledgerSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match ledger schema: %w", err)
	}
	return nil
}
