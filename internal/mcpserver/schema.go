package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// generateInputSchema reflects a Go struct into a JSON-schema map suitable
// for mcp.NewToolWithRawSchema and for the Argument Validator to walk.
func generateInputSchema(inputType any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: false,
	}
	schema := reflector.Reflect(inputType)

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return schemaMap, nil
}
