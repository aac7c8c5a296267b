package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// greenAPISchema gates the webhook before any field is trusted.
var greenAPISchema = map[string]any{
	"type":     "object",
	"required": []any{"typeWebhook"},
	"properties": map[string]any{
		"typeWebhook": map[string]any{"type": "string"},
		"idMessage":   map[string]any{"type": "string"},
		"senderData": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"chatId": map[string]any{"type": "string"},
				"sender": map[string]any{"type": "string"},
			},
		},
		"messageData": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"typeMessage": map[string]any{"type": "string"},
			},
		},
	},
}

var compiledGreenAPISchema = mustCompileSchema(greenAPISchema)

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

func validateGreenAPIPayload(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiledGreenAPISchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
