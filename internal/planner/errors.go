package planner

import "fmt"

// Stage names one of the two sequential agent calls
type Stage string

const (
	StageAnalysis Stage = "analysis"
	StageReadme   Stage = "readme"
)

// ValidationError reports a missing or blank input. The backend is never called.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// GenerationError wraps a backend failure at one stage. Earlier stage output is discarded.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
