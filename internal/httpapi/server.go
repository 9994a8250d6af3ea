package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/config"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/history"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/observability"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/voice"
)

// Orchestrator is the caller-facing surface of the voice core.
type Orchestrator interface {
	Speak(ctx context.Context, req voice.SpeakRequest) (voice.SpeakResult, error)
	PlayAmbient(name string)
	StopAll()
	Provider() string
}

type Server struct {
	cfg          config.Config
	orchestrator Orchestrator
	store        history.Store
	bank         *audio.EffectBank
	metrics      *observability.Metrics
	upgrader     websocket.Upgrader
	hub          *eventHub
}

func New(cfg config.Config, orchestrator Orchestrator, store history.Store, bank *audio.EffectBank, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		store:        store,
		bank:         bank,
		metrics:      metrics,
		hub:          newEventHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up; the bar's visualizer
				// runs on the same host.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/voice/speak", s.handleSpeak)
	r.Post("/v1/voice/ambient", s.handleAmbient)
	r.Post("/v1/voice/stop", s.handleStop)
	r.Get("/v1/voice/voices", s.handleListVoices)
	r.Get("/v1/voice/history", s.handleHistory)
	r.Get("/v1/voice/events", s.handleEvents)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": s.orchestrator.Provider(),
		"effects":  s.bank.Names(),
	})
}

type speakRequest struct {
	Text     string `json:"text"`
	VoiceID  string `json:"voice_id"`
	Blocking *bool  `json:"blocking"`
}

type speakResponse struct {
	Status      string `json:"status"`
	Text        string `json:"text"`
	AudioBase64 string `json:"audio_base64"`
	Blocking    bool   `json:"blocking"`
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}
	blocking := true
	if req.Blocking != nil {
		blocking = *req.Blocking
	}

	result, err := s.orchestrator.Speak(r.Context(), voice.SpeakRequest{
		Text:     req.Text,
		VoiceID:  req.VoiceID,
		Blocking: blocking,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "speak_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, speakResponse{
		Status:      result.Status,
		Text:        result.Text,
		AudioBase64: result.AudioBase64,
		Blocking:    result.Blocking,
	})
}

type ambientRequest struct {
	Sound string `json:"sound"`
}

func (s *Server) handleAmbient(w http.ResponseWriter, r *http.Request) {
	var req ambientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	name := strings.TrimSpace(req.Sound)
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing_sound", "sound is required")
		return
	}
	if _, ok := s.bank.Lookup(name); !ok {
		respondError(w, http.StatusNotFound, "sound_not_found", "no such ambient sound: "+name)
		return
	}

	s.orchestrator.PlayAmbient(name)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "sound": name})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.orchestrator.StopAll()
	s.hub.broadcastFlush()
	respondJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

type voiceSummary struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

type listVoicesResponse struct {
	Provider       string         `json:"provider"`
	DefaultVoiceID string         `json:"default_voice_id"`
	Voices         []voiceSummary `json:"voices"`
}

func (s *Server) handleListVoices(w http.ResponseWriter, _ *http.Request) {
	provider := s.orchestrator.Provider()

	if strings.HasPrefix(provider, "elevenlabs") {
		respondJSON(w, http.StatusOK, listVoicesResponse{
			Provider:       provider,
			DefaultVoiceID: s.cfg.ElevenLabsVoiceID,
			Voices: []voiceSummary{
				{VoiceID: s.cfg.ElevenLabsVoiceID, Name: "Salty (configured)"},
			},
		})
		return
	}

	respondJSON(w, http.StatusOK, listVoicesResponse{
		Provider:       provider,
		DefaultVoiceID: s.cfg.EspeakVoice,
		Voices: []voiceSummary{
			{VoiceID: "en-sc", Name: "English (Scottish)"},
			{VoiceID: "en-gb", Name: "English (British)"},
			{VoiceID: "en-us", Name: "English (American)"},
		},
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.HistoryLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": entries})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
