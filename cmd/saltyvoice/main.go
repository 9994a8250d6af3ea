package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/config"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/history"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/httpapi"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/observability"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/playback"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()

	synth, defaultVoice := buildSynthesizer(cfg, metrics)

	bank := audio.LoadEffectBank(cfg.AssetsDir)
	log.Printf("loaded audio assets: %v", bank.Names())

	var device audio.Device
	execDevice, err := audio.NewExecDevice(cfg.PlayerCommand)
	if err != nil {
		log.Printf("audio output unavailable, playback disabled: %v", err)
		device = audio.NewNopDevice()
	} else {
		device = execDevice
	}

	cache, err := voice.NewSynthesisCache(cfg.CacheCapacity)
	if err != nil {
		log.Fatalf("synthesis cache init failed: %v", err)
	}

	worker := playback.NewWorker(device, bank, metrics)

	apologyClip, ok := bank.Lookup(audio.EffectApology)
	if !ok {
		log.Printf("apology clip missing; failed segments will be skipped silently")
	}

	orchestrator := voice.NewOrchestrator(
		synth,
		cache,
		worker,
		store,
		metrics,
		defaultVoice,
		cfg.SynthesisTimeout,
		apologyClip,
	)

	api := httpapi.New(cfg, orchestrator, store, bank, metrics)
	worker.SetListener(api)
	worker.Start()

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("voice server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	// Let the current clip finish; anything still queued is discarded.
	worker.Close()
	log.Printf("shutdown complete")
}

// buildSynthesizer resolves TTS_PROVIDER into a concrete backend, wiring the
// espeak fallback behind ElevenLabs when both are available.
func buildSynthesizer(cfg config.Config, metrics *observability.Metrics) (voice.Synthesizer, string) {
	mode := strings.ToLower(strings.TrimSpace(cfg.TTSProvider))

	newEleven := func(fatal bool) voice.Synthesizer {
		if strings.TrimSpace(cfg.ElevenLabsAPIKey) == "" {
			if fatal {
				log.Fatalf("TTS_PROVIDER=elevenlabs but ELEVENLABS_API_KEY is not set")
			}
			return nil
		}
		if strings.TrimSpace(cfg.ElevenLabsVoiceID) == "" {
			if fatal {
				log.Fatalf("TTS_PROVIDER=elevenlabs but ELEVENLABS_VOICE_ID is not set")
			}
			return nil
		}
		s, err := voice.NewElevenLabsSynthesizer(voice.ElevenLabsConfig{
			APIKey:  cfg.ElevenLabsAPIKey,
			BaseURL: cfg.ElevenLabsBaseURL,
			ModelID: cfg.ElevenLabsModelID,
			Timeout: cfg.SynthesisTimeout,
		})
		if err != nil {
			if fatal {
				log.Fatalf("elevenlabs init failed: %v", err)
			}
			log.Printf("elevenlabs unavailable: %v", err)
			return nil
		}
		return s
	}

	newEspeak := func(fatal bool) voice.Synthesizer {
		s, err := voice.NewEspeakSynthesizer(voice.EspeakConfig{
			CLI:   cfg.EspeakCLI,
			Voice: cfg.EspeakVoice,
		})
		if err != nil {
			if fatal {
				log.Fatalf("local tts init failed: %v", err)
			}
			log.Printf("local tts unavailable: %v", err)
			return nil
		}
		return s
	}

	switch mode {
	case "elevenlabs":
		primary := newEleven(true)
		if fallback := newEspeak(false); fallback != nil {
			log.Printf("tts provider: elevenlabs with espeak fallback")
			return voice.NewFailoverSynthesizer(primary, fallback, metrics), cfg.ElevenLabsVoiceID
		}
		log.Printf("tts provider: elevenlabs (no offline fallback)")
		return voice.NewFailoverSynthesizer(primary, nil, metrics), cfg.ElevenLabsVoiceID

	case "local":
		log.Printf("tts provider: espeak")
		return voice.NewFailoverSynthesizer(newEspeak(true), nil, metrics), cfg.EspeakVoice

	case "mock":
		log.Printf("tts provider: mock")
		return voice.NewFailoverSynthesizer(voice.NewMockSynthesizer(), nil, metrics), ""

	default: // auto
		if primary := newEleven(false); primary != nil {
			if fallback := newEspeak(false); fallback != nil {
				log.Printf("tts provider: elevenlabs with espeak fallback")
				return voice.NewFailoverSynthesizer(primary, fallback, metrics), cfg.ElevenLabsVoiceID
			}
			log.Printf("tts provider: elevenlabs (no offline fallback)")
			return voice.NewFailoverSynthesizer(primary, nil, metrics), cfg.ElevenLabsVoiceID
		}
		if local := newEspeak(false); local != nil {
			log.Printf("tts provider: espeak (no elevenlabs key)")
			return voice.NewFailoverSynthesizer(local, nil, metrics), cfg.EspeakVoice
		}
		log.Printf("tts provider: mock (no elevenlabs key and no espeak binary)")
		return voice.NewFailoverSynthesizer(voice.NewMockSynthesizer(), nil, metrics), ""
	}
}
