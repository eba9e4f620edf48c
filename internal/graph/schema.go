package graph

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed graph.schema.json
var graphSchemaJSON string

const graphSchemaURL = "eventdocs://graph.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(graphSchemaURL, graphSchemaJSON)
})

// ValidateJSON checks raw against the rendered graph contract
// {nodes:[{id,type,data,position}], edges:[{id,source,target,label,data}]}.
func ValidateJSON(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile graph schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to decode graph: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("graph schema validation failed: %w", err)
	}
	return nil
}

// Validate checks the JSON form of g against the graph contract.
func (g *Graph) Validate() error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	return ValidateJSON(raw)
}
