package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/history"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/observability"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/playback"
)

// SpeakRequest is one utterance to voice.
type SpeakRequest struct {
	Text     string
	VoiceID  string
	Blocking bool
}

// SpeakResult reports a speak call. Audio is the concatenation of every
// synthesized text segment; effects and pauses contribute no bytes.
type SpeakResult struct {
	Status      string
	Text        string
	AudioBase64 string
	Blocking    bool
}

// Orchestrator turns utterances into ordered playback. One instance is
// constructed at startup and handed to every request handler; there is no
// ambient global.
type Orchestrator struct {
	synth        Synthesizer
	cache        *SynthesisCache
	worker       *playback.Worker
	store        history.Store
	metrics      *observability.Metrics
	defaultVoice string
	synthTimeout time.Duration
	apologyClip  []byte
}

func NewOrchestrator(
	synth Synthesizer,
	cache *SynthesisCache,
	worker *playback.Worker,
	store history.Store,
	metrics *observability.Metrics,
	defaultVoice string,
	synthTimeout time.Duration,
	apologyClip []byte,
) *Orchestrator {
	if synthTimeout <= 0 {
		synthTimeout = 8 * time.Second
	}
	return &Orchestrator{
		synth:        synth,
		cache:        cache,
		worker:       worker,
		store:        store,
		metrics:      metrics,
		defaultVoice: defaultVoice,
		synthTimeout: synthTimeout,
		apologyClip:  apologyClip,
	}
}

// Speak segments the text and walks the segments in document order:
// synthesize (cache first), enqueue, and in blocking mode await each item's
// completion. Non-blocking calls return right after the last enqueue;
// playback ordering across concurrent non-blocking calls is best-effort.
func (o *Orchestrator) Speak(ctx context.Context, req SpeakRequest) (SpeakResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return SpeakResult{}, fmt.Errorf("text is required")
	}
	voiceID := strings.TrimSpace(req.VoiceID)
	if voiceID == "" {
		voiceID = o.defaultVoice
	}

	mode := "async"
	if req.Blocking {
		mode = "blocking"
	}
	o.metrics.SpeakRequests.WithLabelValues(mode).Inc()

	combined, err := o.speakSegments(ctx, SegmentUtterance(text), voiceID, req.Blocking)
	if err != nil {
		return SpeakResult{}, err
	}

	o.recordHistory(text, voiceID, req.Blocking)

	return SpeakResult{
		Status:      "success",
		Text:        text,
		AudioBase64: base64.StdEncoding.EncodeToString(combined),
		Blocking:    req.Blocking,
	}, nil
}

func (o *Orchestrator) speakSegments(ctx context.Context, segments []Segment, voiceID string, blocking bool) ([]byte, error) {
	var combined bytes.Buffer
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentPause:
			if !blocking {
				continue
			}
			select {
			case <-time.After(seg.Duration):
			case <-ctx.Done():
				return combined.Bytes(), ctx.Err()
			}

		case SegmentEffect:
			item := playback.NewEffectItem(seg.Effect)
			o.worker.Enqueue(item)
			if blocking {
				if err := item.Wait(ctx); err != nil {
					return combined.Bytes(), err
				}
			}

		case SegmentText:
			data := o.resolveAudio(ctx, seg.Content, voiceID)
			if data == nil {
				continue
			}
			combined.Write(data)
			item := playback.NewAudioItem(data)
			o.worker.Enqueue(item)
			if blocking {
				if err := item.Wait(ctx); err != nil {
					return combined.Bytes(), err
				}
			}
		}
	}
	return combined.Bytes(), nil
}

// resolveAudio returns the audio for one text segment: cache hit, fresh
// synthesis, or the canned apology clip when both providers fail. A nil
// return means the segment is silently skipped.
func (o *Orchestrator) resolveAudio(ctx context.Context, text, voiceID string) []byte {
	if data, ok := o.cache.Get(text, voiceID); ok {
		o.metrics.CacheEvents.WithLabelValues("hit").Inc()
		return data
	}
	o.metrics.CacheEvents.WithLabelValues("miss").Inc()

	sctx, cancel := context.WithTimeout(ctx, o.synthTimeout)
	defer cancel()
	data, err := o.synth.Synthesize(sctx, text, voiceID)
	if err != nil {
		log.Printf("synthesis failed for segment %q: %v", truncate(text, 60), err)
		if len(o.apologyClip) > 0 {
			return o.apologyClip
		}
		return nil
	}
	o.cache.Put(text, voiceID, data)
	return data
}

// PlayAmbient enqueues a named ambient asset. It does not block on playback.
func (o *Orchestrator) PlayAmbient(name string) {
	o.worker.Enqueue(playback.NewEffectItem(name))
}

// StopAll flushes the playback queue and stops the device.
func (o *Orchestrator) StopAll() {
	o.worker.Flush()
}

// Provider names the active synthesis backend.
func (o *Orchestrator) Provider() string {
	return o.synth.Name()
}

func (o *Orchestrator) recordHistory(text, voiceID string, blocking bool) {
	if o.store == nil {
		return
	}
	// History writes are best-effort and must not delay or fail the speak
	// path.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := o.store.Record(ctx, history.Entry{
		ID:        uuid.NewString(),
		Text:      text,
		VoiceID:   voiceID,
		Provider:  o.synth.Name(),
		Blocking:  blocking,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("history record failed: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
