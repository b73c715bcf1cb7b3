package bossbar

import "fmt"

// ValidationError reports a caller-supplied value outside its allowed range.
// Show returns it before touching any state.
type ValidationError struct {
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between 0 and 1 (got %v)", e.Field, e.Value)
}
