package voice

import (
	"context"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
)

// MockSynthesizer fabricates deterministic WAV buffers from the input text.
// Used when no real provider is configured and throughout the tests.
type MockSynthesizer struct{}

func NewMockSynthesizer() *MockSynthesizer { return &MockSynthesizer{} }

func (s *MockSynthesizer) Name() string { return "mock" }

func (s *MockSynthesizer) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	// The text bytes stand in for PCM samples; distinct text yields distinct
	// audio, which is all the cache and playback paths care about.
	return audio.EncodeWAVPCM16LE([]byte(text), 22050)
}
