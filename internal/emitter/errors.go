package emitter

import "fmt"

// GenerationError is returned when a tree cannot be turned into code.
type GenerationError struct {
	// Stage is the emitter step that failed: validate, convert or serialize.
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed during %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Code is the stable error code used in response envelopes.
func (e *GenerationError) Code() string { return "generation_error" }
