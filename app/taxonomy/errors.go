package taxonomy

import "fmt"

// ConfigValidationError reports a broadcastability config whose values are
// internally inconsistent, such as weights that do not sum to 1.0.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid taxonomy config: %s: %s", e.Field, e.Message)
}

// PatternError reports an extraction or hype pattern that failed to
// compile. Snapshot builds log and skip the offending pattern so one bad
// row never takes the others down.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("failed to compile pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
