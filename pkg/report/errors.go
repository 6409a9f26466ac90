package report

import (
	"fmt"
	"strings"
)

// ValidationError reports a request field outside its closed enumeration.
// The message always names the offending value and the full allowed set.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q. Valid values are: [%s]",
		e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// ExecutionError wraps a failure raised by a generation strategy.
type ExecutionError struct {
	Type Type
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("report generation failed (%s): %v", e.Type, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
