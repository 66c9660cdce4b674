package recommendation

import (
	"errors"
	"fmt"
)

// ErrNoOpportunities is returned when a run has nothing to draft
var ErrNoOpportunities = errors.New("no opportunities found")

// GenerationError represents a terminal failure of the generative drafting step.
// Nothing is persisted when it is returned.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("recommendation generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("recommendation generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
