// Package metrics records pipeline stage outcomes.
package metrics

import "time"

// Recorder receives one observation per pipeline stage and one per run
type Recorder interface {
	// ObserveStage records a single agent call
	ObserveStage(stage, model string, success bool, duration time.Duration)

	// ObserveRun records a complete generation, successful or not
	ObserveRun(outcome string, duration time.Duration)
}

// Run outcomes
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeAnalysisError   = "analysis_error"
	OutcomeReadmeError     = "readme_error"
)

// NoopRecorder discards everything
type NoopRecorder struct{}

// Nop returns a recorder that discards all observations
func Nop() Recorder {
	return NoopRecorder{}
}

func (NoopRecorder) ObserveStage(_, _ string, _ bool, _ time.Duration) {}

func (NoopRecorder) ObserveRun(_ string, _ time.Duration) {}
