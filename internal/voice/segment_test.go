package voice

import (
	"strings"
	"testing"
	"time"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
)

func TestSegmentUtteranceSentencePauses(t *testing.T) {
	got := SegmentUtterance("A. B! C?")

	want := []Segment{
		{Kind: SegmentText, Content: "A."},
		{Kind: SegmentPause, Duration: 250 * time.Millisecond},
		{Kind: SegmentText, Content: "B!"},
		{Kind: SegmentPause, Duration: 300 * time.Millisecond},
		{Kind: SegmentText, Content: "C?"},
	}
	assertSegments(t, got, want)
}

func TestSegmentUtteranceSquawkEffect(t *testing.T) {
	got := SegmentUtterance("Squawk! Hello!")

	want := []Segment{
		{Kind: SegmentEffect, Effect: audio.EffectSquawk},
		{Kind: SegmentPause, Duration: 150 * time.Millisecond},
		{Kind: SegmentText, Content: "Hello!"},
	}
	assertSegments(t, got, want)
}

func TestSegmentUtteranceJokeGetsDramaticPause(t *testing.T) {
	got := SegmentUtterance("Why did the parrot cross the room? Because it could!")

	want := []Segment{
		{Kind: SegmentText, Content: "Why did the parrot cross the room?"},
		{Kind: SegmentPause, Duration: 1200 * time.Millisecond},
		{Kind: SegmentText, Content: "Because it could!"},
	}
	assertSegments(t, got, want)
}

func TestSegmentUtteranceElongatedTokens(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		effect string
	}{
		{name: "elongated squawk", in: "sQuAaAwK", effect: audio.EffectSquawk},
		{name: "elongated screech", in: "SCREEEECH", effect: audio.EffectScreech},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := SegmentUtterance(tc.in)
			if len(got) != 1 {
				t.Fatalf("SegmentUtterance(%q) = %d segments, want 1", tc.in, len(got))
			}
			if got[0].Kind != SegmentEffect || got[0].Effect != tc.effect {
				t.Fatalf("segment = %+v, want effect %q", got[0], tc.effect)
			}
		})
	}
}

func TestSegmentUtteranceReconstructsPlainText(t *testing.T) {
	in := "Ahoy there matey. Welcome to the Gold Monkey! Mind the tiki torches."

	got := SegmentUtterance(in)

	var texts []string
	for _, seg := range got {
		switch seg.Kind {
		case SegmentText:
			texts = append(texts, seg.Content)
		case SegmentPause:
		default:
			t.Fatalf("unexpected segment kind %q for plain text", seg.Kind)
		}
	}
	if joined := strings.Join(texts, " "); joined != in {
		t.Fatalf("reconstructed text = %q, want %q", joined, in)
	}
}

func TestSegmentUtteranceKeepsUnterminatedTail(t *testing.T) {
	got := SegmentUtterance("First sentence. trailing words")

	want := []Segment{
		{Kind: SegmentText, Content: "First sentence."},
		{Kind: SegmentPause, Duration: 250 * time.Millisecond},
		{Kind: SegmentText, Content: "trailing words"},
	}
	assertSegments(t, got, want)
}

func TestSegmentUtteranceNoConsecutivePauses(t *testing.T) {
	inputs := []string{
		"Squawk! Screech! A. B? C!",
		"Why is the rum gone? Squawk! No idea.",
		"squawk screech squawk",
		"One. Two. Three.",
	}

	for _, in := range inputs {
		segs := SegmentUtterance(in)
		if len(segs) == 0 {
			t.Fatalf("SegmentUtterance(%q) returned no segments", in)
		}
		if segs[0].Kind == SegmentPause {
			t.Fatalf("SegmentUtterance(%q) starts with a pause", in)
		}
		if segs[len(segs)-1].Kind == SegmentPause {
			t.Fatalf("SegmentUtterance(%q) ends with a pause", in)
		}
		for i := 1; i < len(segs); i++ {
			if segs[i].Kind == SegmentPause && segs[i-1].Kind == SegmentPause {
				t.Fatalf("SegmentUtterance(%q) produced consecutive pauses at %d", in, i)
			}
		}
	}
}

func TestSegmentUtteranceEdgeCases(t *testing.T) {
	if got := SegmentUtterance(""); len(got) != 0 {
		t.Fatalf("empty input produced %d segments", len(got))
	}
	if got := SegmentUtterance("   \t\n "); len(got) != 0 {
		t.Fatalf("whitespace input produced %d segments", len(got))
	}

	got := SegmentUtterance("no terminal punctuation here")
	if len(got) != 1 || got[0].Kind != SegmentText || got[0].Content != "no terminal punctuation here" {
		t.Fatalf("unpunctuated span = %+v, want single text segment", got)
	}
}

func TestSegmentUtteranceTrailingEffectHasNoTrailingPause(t *testing.T) {
	got := SegmentUtterance("Hello! Squawk")

	want := []Segment{
		{Kind: SegmentText, Content: "Hello!"},
		{Kind: SegmentEffect, Effect: audio.EffectSquawk},
	}
	assertSegments(t, got, want)
}

func assertSegments(t *testing.T, got, want []Segment) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("segments = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind ||
			got[i].Content != want[i].Content ||
			got[i].Duration != want[i].Duration ||
			got[i].Effect != want[i].Effect {
			t.Fatalf("segment[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
