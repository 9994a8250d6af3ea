package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/reliability"
)

type EspeakConfig struct {
	CLI   string
	Voice string
}

// EspeakSynthesizer shells out to espeak-ng for fully offline synthesis.
// It is the fallback when the cloud provider is down or unconfigured; the
// voice is worse but the parrot keeps talking.
type EspeakSynthesizer struct {
	cli   string
	voice string
}

func NewEspeakSynthesizer(cfg EspeakConfig) (*EspeakSynthesizer, error) {
	cli := strings.TrimSpace(cfg.CLI)
	if cli == "" {
		cli = "espeak-ng"
	}
	// Capability check up front so a missing binary is a startup error, not
	// a per-call surprise.
	if _, err := exec.LookPath(cli); err != nil {
		return nil, fmt.Errorf("espeak cli %q not found: %w", cli, err)
	}
	voice := strings.TrimSpace(cfg.Voice)
	if voice == "" {
		voice = "en-sc"
	}
	return &EspeakSynthesizer{cli: cli, voice: voice}, nil
}

func (s *EspeakSynthesizer) Name() string { return "espeak" }

func (s *EspeakSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	voice := strings.TrimSpace(voiceID)
	if voice == "" || !isEspeakVoice(voice) {
		// ElevenLabs voice IDs mean nothing to espeak; use the configured one.
		voice = s.voice
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.cli, "-v", voice, "--stdout", text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.FailureNetwork,
			Cause:    err,
		}
	}
	if stdout.Len() == 0 {
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.FailureNetwork,
			Cause:    fmt.Errorf("no audio produced"),
		}
	}
	return stdout.Bytes(), nil
}

// isEspeakVoice distinguishes espeak language codes (en, en-sc, pt-br) from
// opaque provider voice IDs.
func isEspeakVoice(v string) bool {
	if len(v) > 8 {
		return false
	}
	for _, r := range v {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}
