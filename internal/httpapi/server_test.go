package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/config"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/history"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/observability"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/voice"
)

type stubOrchestrator struct {
	lastSpeak voice.SpeakRequest
	result    voice.SpeakResult
	speakErr  error
	ambient   []string
	stops     int
	provider  string
}

func (s *stubOrchestrator) Speak(_ context.Context, req voice.SpeakRequest) (voice.SpeakResult, error) {
	s.lastSpeak = req
	if s.speakErr != nil {
		return voice.SpeakResult{}, s.speakErr
	}
	result := s.result
	result.Text = req.Text
	result.Blocking = req.Blocking
	return result, nil
}

func (s *stubOrchestrator) PlayAmbient(name string) { s.ambient = append(s.ambient, name) }
func (s *stubOrchestrator) StopAll()                { s.stops++ }

func (s *stubOrchestrator) Provider() string {
	if s.provider == "" {
		return "mock"
	}
	return s.provider
}

func newTestServer(t *testing.T, orch *stubOrchestrator) (*Server, *history.InMemoryStore) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "squawk.wav"), []byte("SQK"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	cfg := config.Config{
		EspeakVoice:  "en-sc",
		HistoryLimit: 100,
	}
	store := history.NewInMemoryStore()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return New(cfg, orch, store, audio.LoadEffectBank(dir), metrics), store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleSpeak(t *testing.T) {
	orch := &stubOrchestrator{result: voice.SpeakResult{Status: "success", AudioBase64: "QUJD"}}
	server, _ := newTestServer(t, orch)
	router := server.Router()

	rec := postJSON(t, router, "/v1/voice/speak", map[string]any{
		"text":     "Ahoy there!",
		"voice_id": "salty",
		"blocking": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if orch.lastSpeak.Text != "Ahoy there!" || orch.lastSpeak.VoiceID != "salty" || orch.lastSpeak.Blocking {
		t.Fatalf("orchestrator got %+v", orch.lastSpeak)
	}

	var resp speakResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "success" || resp.AudioBase64 != "QUJD" || resp.Blocking {
		t.Fatalf("response = %+v", resp)
	}
}

func TestHandleSpeakDefaultsToBlocking(t *testing.T) {
	orch := &stubOrchestrator{result: voice.SpeakResult{Status: "success"}}
	server, _ := newTestServer(t, orch)

	rec := postJSON(t, server.Router(), "/v1/voice/speak", map[string]any{"text": "Ahoy!"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !orch.lastSpeak.Blocking {
		t.Fatalf("blocking not defaulted to true")
	}
}

func TestHandleSpeakRejectsMissingText(t *testing.T) {
	server, _ := newTestServer(t, &stubOrchestrator{})
	router := server.Router()

	for name, body := range map[string]any{
		"empty text":  map[string]any{"text": "   "},
		"no text key": map[string]any{"voice_id": "salty"},
	} {
		rec := postJSON(t, router, "/v1/voice/speak", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", name, rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Code != "missing_text" {
			t.Fatalf("%s: code = %q, want missing_text", name, resp.Code)
		}
	}
}

func TestHandleAmbient(t *testing.T) {
	orch := &stubOrchestrator{}
	server, _ := newTestServer(t, orch)
	router := server.Router()

	rec := postJSON(t, router, "/v1/voice/ambient", map[string]string{"sound": "squawk"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if len(orch.ambient) != 1 || orch.ambient[0] != "squawk" {
		t.Fatalf("ambient plays = %v", orch.ambient)
	}

	rec = postJSON(t, router, "/v1/voice/ambient", map[string]string{"sound": "kraken"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown sound status = %d, want 404", rec.Code)
	}
	if len(orch.ambient) != 1 {
		t.Fatalf("unknown sound reached the orchestrator")
	}
}

func TestHandleStop(t *testing.T) {
	orch := &stubOrchestrator{}
	server, _ := newTestServer(t, orch)

	req := httptest.NewRequest(http.MethodPost, "/v1/voice/stop", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if orch.stops != 1 {
		t.Fatalf("StopAll called %d times, want 1", orch.stops)
	}
}

func TestHandleHistory(t *testing.T) {
	server, store := newTestServer(t, &stubOrchestrator{})
	router := server.Router()

	err := store.Record(context.Background(), history.Entry{
		ID:        "id-1",
		Text:      "Ahoy!",
		VoiceID:   "salty",
		Provider:  "mock",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/voice/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		History []history.Entry `json:"history"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.History) != 1 || resp.History[0].ID != "id-1" {
		t.Fatalf("history = %+v", resp.History)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/voice/history?limit=nope", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestHandleListVoicesEspeak(t *testing.T) {
	server, _ := newTestServer(t, &stubOrchestrator{provider: "espeak"})

	req := httptest.NewRequest(http.MethodGet, "/v1/voice/voices", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp listVoicesResponse
	decodeBody(t, rec, &resp)
	if resp.Provider != "espeak" || resp.DefaultVoiceID != "en-sc" {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Voices) == 0 {
		t.Fatalf("no voices listed")
	}
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t, &stubOrchestrator{provider: "elevenlabs+espeak"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status   string   `json:"status"`
		Provider string   `json:"provider"`
		Effects  []string `json:"effects"`
	}
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.Provider != "elevenlabs+espeak" {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Effects) != 1 || resp.Effects[0] != "squawk" {
		t.Fatalf("effects = %v, want [squawk]", resp.Effects)
	}
}
