// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateDocument validates a decoded document against a JSON schema.
func ValidateDocument(schema map[string]interface{}, doc map[string]interface{}) error {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize document: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(docBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var b strings.Builder
		b.WriteString("validation failed:\n")
		for _, resultErr := range result.Errors() {
			fmt.Fprintf(&b, "- %s\n", resultErr)
		}
		return fmt.Errorf("%s", strings.TrimRight(b.String(), "\n"))
	}

	return nil
}

// MergeWithDefaults returns a new map holding defaults overridden by values.
func MergeWithDefaults(values map[string]interface{}, defaults map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(defaults)+len(values))

	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range values {
		result[k] = v
	}

	return result
}
