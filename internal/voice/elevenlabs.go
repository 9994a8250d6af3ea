package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/reliability"
)

type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// ElevenLabsSynthesizer calls the ElevenLabs REST text-to-speech endpoint
// and returns the MP3 bytes from the response body.
type ElevenLabsSynthesizer struct {
	cfg    ElevenLabsConfig
	client *http.Client
}

func NewElevenLabsSynthesizer(cfg ElevenLabsConfig) (*ElevenLabsSynthesizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_monolingual_v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &ElevenLabsSynthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (s *ElevenLabsSynthesizer) Name() string { return "elevenlabs" }

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if strings.TrimSpace(voiceID) == "" {
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.FailureAuth,
			Cause:    fmt.Errorf("voice_id is required"),
		}
	}

	payload := map[string]any{
		"text":     text,
		"model_id": s.cfg.ModelID,
		// Settings tuned for Salty's raspy pirate delivery.
		"voice_settings": map[string]any{
			"stability":         0.7,
			"similarity_boost":  0.8,
			"style":             0.3,
			"use_speaker_boost": true,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.FailureNetwork,
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.ClassifyHTTPStatus(resp.StatusCode),
			Cause:    fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.FailureNetwork,
			Cause:    fmt.Errorf("read audio body: %w", err),
		}
	}
	if len(audio) == 0 {
		return nil, &SynthesisError{
			Provider: s.Name(),
			Class:    reliability.FailureNetwork,
			Cause:    fmt.Errorf("empty audio response"),
		}
	}
	return audio, nil
}
