package voice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/observability"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/reliability"
)

// FailoverSynthesizer tries the primary provider first and degrades once to
// the fallback on any failure. No retries beyond that single fallback; if
// both fail the composed error carries both causes.
type FailoverSynthesizer struct {
	primary  Synthesizer
	fallback Synthesizer
	metrics  *observability.Metrics
}

func NewFailoverSynthesizer(primary, fallback Synthesizer, metrics *observability.Metrics) *FailoverSynthesizer {
	return &FailoverSynthesizer{primary: primary, fallback: fallback, metrics: metrics}
}

func (s *FailoverSynthesizer) Name() string {
	if s.fallback == nil {
		return s.primary.Name()
	}
	return s.primary.Name() + "+" + s.fallback.Name()
}

func (s *FailoverSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	data, prErr := s.attempt(ctx, s.primary, text, voiceID)
	if prErr == nil {
		return data, nil
	}
	if s.fallback == nil {
		return nil, prErr
	}

	log.Printf("tts primary %s failed, downgrading to %s: %v", s.primary.Name(), s.fallback.Name(), prErr)
	data, fbErr := s.attempt(ctx, s.fallback, text, voiceID)
	if fbErr != nil {
		return nil, fmt.Errorf("tts primary %s failed: %v; fallback %s failed: %w",
			s.primary.Name(), prErr, s.fallback.Name(), fbErr)
	}
	return data, nil
}

func (s *FailoverSynthesizer) attempt(ctx context.Context, provider Synthesizer, text, voiceID string) ([]byte, error) {
	start := time.Now()
	data, err := provider.Synthesize(ctx, text, voiceID)
	if err != nil {
		s.metrics.SynthesisErrors.WithLabelValues(provider.Name(), string(failureClass(err))).Inc()
		return nil, err
	}
	s.metrics.ObserveSynthesisLatency(provider.Name(), time.Since(start))
	return data, nil
}

func failureClass(err error) reliability.FailureClass {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		return synthErr.Class
	}
	return reliability.FailureNetwork
}
