package validation

import "fmt"

// MalformedOutputError means the model returned unparsable or schema-invalid
// JSON. The raw text is kept for the repair prompt.
type MalformedOutputError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed model output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// ScriptViolationError means the output parsed fine but a value uses a
// disallowed script.
type ScriptViolationError struct {
	Value string
}

func (e *ScriptViolationError) Error() string {
	return fmt.Sprintf("script violation in value %q", e.Value)
}
