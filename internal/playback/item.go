package playback

import (
	"context"
	"sync"
)

// ItemKind identifies what a queued playback item carries.
type ItemKind string

const (
	KindAudio  ItemKind = "audio"
	KindEffect ItemKind = "effect"
)

// Item is one unit of work for the playback worker. Its completion channel
// is closed exactly once when the worker is done with it, on every path
// including device failures and missing effect assets.
type Item struct {
	Kind   ItemKind
	Audio  []byte
	Effect string

	once sync.Once
	done chan struct{}
}

// NewAudioItem wraps a synthesized audio buffer. Ownership of data passes to
// the worker for the duration of playback.
func NewAudioItem(data []byte) *Item {
	return &Item{Kind: KindAudio, Audio: data, done: make(chan struct{})}
}

// NewEffectItem references a preloaded effect or ambient asset by name.
func NewEffectItem(name string) *Item {
	return &Item{Kind: KindEffect, Effect: name, done: make(chan struct{})}
}

// Done is closed when playback of this item has finished.
func (i *Item) Done() <-chan struct{} { return i.done }

// Wait blocks until the item completes or ctx is cancelled.
func (i *Item) Wait(ctx context.Context) error {
	select {
	case <-i.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Label names the item for events and logs.
func (i *Item) Label() string {
	if i.Kind == KindEffect {
		return i.Effect
	}
	return "speech"
}

func (i *Item) complete() {
	i.once.Do(func() { close(i.done) })
}
