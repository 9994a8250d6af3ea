package voice

import (
	"context"
	"fmt"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/reliability"
)

// Synthesizer converts one text fragment into compressed audio bytes.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// SynthesisError is a single provider's failure, tagged with a class for
// logging and metrics.
type SynthesisError struct {
	Provider string
	Class    reliability.FailureClass
	Cause    error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s synthesis failed (%s): %v", e.Provider, e.Class, e.Cause)
}

func (e *SynthesisError) Unwrap() error { return e.Cause }
