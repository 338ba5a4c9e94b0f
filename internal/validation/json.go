// Package validation enforces the two output contracts on model completions:
// parseable JSON with required keys, and Russian-script-only values. When a
// contract is violated it drives a single bounded repair request through the
// model gateway before the caller falls back to a deterministic default.
package validation

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ExtractJSON takes the widest {...} span in raw text and parses it. Models
// routinely wrap JSON in commentary or markdown fences; everything outside
// the outermost braces is discarded. Returns *MalformedOutputError when no
// object can be parsed, never a partial object.
func ExtractJSON(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, &MalformedOutputError{Message: "no JSON object in output", Raw: raw}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, &MalformedOutputError{Message: "bad JSON", Raw: raw, Cause: err}
	}

	return payload, nil
}

// RequireKeys validates the payload against an object schema requiring the
// given keys. Missing keys are schema-invalid output, so the error kind is
// MalformedOutput, same as unparsable text.
func RequireKeys(payload map[string]any, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	schemaDoc, err := json.Marshal(map[string]any{
		"type":     "object",
		"required": keys,
	})
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDoc),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return &MalformedOutputError{Message: "schema validation failed", Cause: err}
	}
	if !result.Valid() {
		missing := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			missing = append(missing, desc.String())
		}
		return &MalformedOutputError{Message: strings.Join(missing, "; ")}
	}

	return nil
}
