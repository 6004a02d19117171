package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed insight_schema.json
var insightSchemaJSON []byte

// SchemaValidator checks that a parsed analysis document conforms to the
// InsightPayload contract: all required keys present, enum values within
// their allowed sets, scores inside their ranges.
type SchemaValidator struct {
	schema *openapi3.Schema
}

// NewSchemaValidator loads the embedded payload schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	schema := openapi3.NewSchema()
	if err := json.Unmarshal(insightSchemaJSON, schema); err != nil {
		return nil, fmt.Errorf("failed to parse insight schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate checks the parsed document against the schema.
func (v *SchemaValidator) Validate(doc map[string]interface{}) error {
	if err := v.schema.VisitJSON(doc, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("analysis does not match the expected schema: %w", err)
	}
	return nil
}
