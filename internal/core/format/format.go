// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by the --output flag.
const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// ParseFile reads and parses a file, trying YAML first, then JSON
func ParseFile(filePath string, v interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	return ParseData(data, v)
}

// ParseData parses data, trying YAML first, then JSON.
// config.json files are valid YAML, so the JSON fallback only matters for odd inputs
// such as tab-indented documents.
func ParseData(data []byte, v interface{}) error {
	err := yaml.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	jsonErr := json.Unmarshal(data, v)
	if jsonErr == nil {
		return nil
	}

	return fmt.Errorf("failed to parse as YAML (%v) or JSON (%v)", err, jsonErr)
}

// FormatData renders v in the requested output format. Text is not handled here.
func FormatData(v interface{}, output string) (string, error) {
	var data []byte
	var err error

	switch strings.ToLower(output) {
	case OutputYAML:
		data, err = yaml.Marshal(v)
	case OutputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
	default:
		return "", fmt.Errorf("unsupported output format %q", output)
	}

	if err != nil {
		return "", fmt.Errorf("error formatting data: %w", err)
	}

	return strings.TrimRight(string(data), "\n"), nil
}

// ValidOutput reports whether output is one of the supported --output values.
func ValidOutput(output string) bool {
	switch strings.ToLower(output) {
	case OutputText, OutputYAML, OutputJSON:
		return true
	}
	return false
}
