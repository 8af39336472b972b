package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsvalidate "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var (
	schemaOnce sync.Once
	schemaJSON []byte
	schemaErr  error
)

// JSONSchema returns the JSON Schema for the Config struct, generated from
// the yaml struct tags.
func JSONSchema() ([]byte, error) {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			FieldNameTag:               "yaml",
			RequiredFromJSONSchemaTags: true,
		}
		schema := r.Reflect(&Config{})
		schemaJSON, schemaErr = json.MarshalIndent(schema, "", "  ")
	})
	return schemaJSON, schemaErr
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsvalidate.Schema
	compiledErr    error
)

// validateRaw checks the raw (env-expanded) configuration bytes against the
// generated schema before struct decoding, so unknown keys and wrongly typed
// values fail with a schema path instead of a decode error.
func validateRaw(data []byte) error {
	compiledOnce.Do(func() {
		raw, err := JSONSchema()
		if err != nil {
			compiledErr = err
			return
		}
		compiledSchema, compiledErr = jsvalidate.CompileString("parley.config.schema.json", string(raw))
	})
	if compiledErr != nil {
		return fmt.Errorf("compile config schema: %w", compiledErr)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if decoded == nil {
		return nil
	}
	if err := compiledSchema.Validate(normalizeForSchema(decoded)); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// normalizeForSchema converts YAML-decoded values into the JSON-native shape
// the validator expects.
func normalizeForSchema(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeForSchema(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeForSchema(val)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}
