package voice

import (
	"regexp"
	"strings"
	"time"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
)

// SegmentKind identifies one unit of a segmented utterance.
type SegmentKind string

const (
	SegmentText   SegmentKind = "text"
	SegmentPause  SegmentKind = "pause"
	SegmentEffect SegmentKind = "effect"
)

// Segment is one typed unit of an utterance in playback order.
type Segment struct {
	Kind     SegmentKind
	Content  string
	Duration time.Duration
	Effect   string
}

// Pause policy. Jokes get a dramatic beat, effects a short decay so the
// squawk tail is not cut off by the next clip.
const (
	pauseSentence    = 250 * time.Millisecond
	pauseExclamation = 300 * time.Millisecond
	pauseQuestion    = 400 * time.Millisecond
	pauseJoke        = 1200 * time.Millisecond
	pauseEffectDecay = 150 * time.Millisecond
)

// specialPattern matches, in priority order: question-form joke setups,
// squawk tokens (elongated spellings tolerated), screech tokens.
var specialPattern = regexp.MustCompile(`(?i)` +
	`(\bwhy\s+(?:did|does|do|is|are|was|were)\b[^?]*\?` +
	`|\bwhat\s+(?:do\s+you\s+call|is|are|was|were)\b[^?]*\?` +
	`|\bhow\s+(?:do\s+you|many|much|long|far|often)\b[^?]*\?` +
	`|\bknock\s+knock\b)` +
	`|(\bsqu+a+w+k+\b)` +
	`|(\bscree+e+c+h+\b)`)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SegmentUtterance splits an utterance into text, pause and effect segments
// in document order. It is deterministic and does no I/O; the resulting
// order is the required playback order.
func SegmentUtterance(utterance string) []Segment {
	if strings.TrimSpace(utterance) == "" {
		return nil
	}

	var parts []Segment
	last := 0
	for _, m := range specialPattern.FindAllStringSubmatchIndex(utterance, -1) {
		start, end := m[0], m[1]
		if start > last {
			parts = append(parts, splitSentences(utterance[last:start])...)
		}
		switch {
		case m[2] >= 0: // joke
			parts = append(parts, jokeSegments(utterance[m[2]:m[3]])...)
		case m[4] >= 0: // squawk
			parts = append(parts,
				Segment{Kind: SegmentEffect, Effect: audio.EffectSquawk},
				Segment{Kind: SegmentPause, Duration: pauseEffectDecay})
		case m[6] >= 0: // screech
			parts = append(parts,
				Segment{Kind: SegmentEffect, Effect: audio.EffectScreech},
				Segment{Kind: SegmentPause, Duration: pauseEffectDecay})
		}
		last = end
	}
	if last < len(utterance) {
		parts = append(parts, splitSentences(utterance[last:])...)
	}

	return normalizeSegments(parts)
}

// jokeSegments splits a joke at its question mark: setup, dramatic pause,
// punchline. A joke with no question mark (knock knock) stays one segment.
func jokeSegments(joke string) []Segment {
	idx := strings.Index(joke, "?")
	if idx < 0 {
		if t := strings.TrimSpace(joke); t != "" {
			return []Segment{{Kind: SegmentText, Content: t}}
		}
		return nil
	}
	setup := strings.TrimSpace(joke[:idx+1])
	punchline := strings.TrimSpace(joke[idx+1:])
	segs := []Segment{
		{Kind: SegmentText, Content: setup},
		{Kind: SegmentPause, Duration: pauseJoke},
	}
	if punchline != "" {
		segs = append(segs, Segment{Kind: SegmentText, Content: punchline})
	}
	return segs
}

// splitSentences breaks plain text on terminal punctuation, keeping the
// punctuation, and inserts pauses between consecutive sentences only.
func splitSentences(text string) []Segment {
	locs := sentencePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			return []Segment{{Kind: SegmentText, Content: t}}
		}
		return nil
	}

	sentences := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		end = loc[1]
	}
	// Keep any unterminated tail so no words are lost.
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		sentences = append(sentences, tail)
	}

	var parts []Segment
	for i, sentence := range sentences {
		parts = append(parts, Segment{Kind: SegmentText, Content: sentence})
		if i < len(sentences)-1 {
			parts = append(parts, Segment{Kind: SegmentPause, Duration: pauseAfter(sentence)})
		}
	}
	return parts
}

func pauseAfter(sentence string) time.Duration {
	switch {
	case strings.HasSuffix(sentence, "?"):
		return pauseQuestion
	case strings.HasSuffix(sentence, "!"):
		return pauseExclamation
	default:
		return pauseSentence
	}
}

// normalizeSegments drops empty text, collapses adjacent pauses and trims
// leading/trailing pauses; pauses only ever sit between sound-producing
// segments.
func normalizeSegments(parts []Segment) []Segment {
	var out []Segment
	for _, seg := range parts {
		if seg.Kind == SegmentText && strings.TrimSpace(seg.Content) == "" {
			continue
		}
		if seg.Kind == SegmentPause {
			if len(out) == 0 || out[len(out)-1].Kind == SegmentPause {
				continue
			}
		}
		out = append(out, seg)
	}
	for len(out) > 0 && out[len(out)-1].Kind == SegmentPause {
		out = out[:len(out)-1]
	}
	return out
}
