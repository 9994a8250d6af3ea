package playback

import (
	"log"
	"sync"
	"time"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/audio"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/observability"
)

// Listener observes playback transitions, e.g. to fan events out to
// websocket clients. Callbacks run on the worker goroutine and must return
// quickly.
type Listener interface {
	ItemStarted(item *Item)
	ItemFinished(item *Item, err error)
}

// Worker owns the audio output device. It is the only component allowed to
// touch it, which is what keeps clips from ever overlapping: one goroutine
// drains a FIFO and plays items strictly one at a time.
type Worker struct {
	device   audio.Device
	effects  *audio.EffectBank
	metrics  *observability.Metrics
	listener Listener

	pollInterval time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*Item
	draining bool
	started  bool
	done     chan struct{}
}

func NewWorker(device audio.Device, effects *audio.EffectBank, metrics *observability.Metrics) *Worker {
	w := &Worker{
		device:       device,
		effects:      effects,
		metrics:      metrics,
		pollInterval: 20 * time.Millisecond,
		done:         make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// SetListener must be called before Start.
func (w *Worker) SetListener(l Listener) { w.listener = l }

// Start launches the worker goroutine. It runs for the lifetime of the
// process until Close.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

// Enqueue pushes an item onto the FIFO and returns immediately. Items
// enqueued after Close are dropped and never signaled, matching shutdown
// semantics for items already queued.
func (w *Worker) Enqueue(item *Item) {
	w.mu.Lock()
	if w.draining {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, item)
	depth := len(w.queue)
	w.cond.Signal()
	w.mu.Unlock()
	w.metrics.QueueDepth.Set(float64(depth))
}

// Flush discards all queued items and stops the device. Unlike shutdown,
// flushed completions are signaled so no caller is left waiting on audio
// that will never play.
func (w *Worker) Flush() {
	w.mu.Lock()
	pending := w.queue
	w.queue = nil
	w.mu.Unlock()

	for _, item := range pending {
		item.complete()
	}
	w.device.Stop()
	w.metrics.QueueDepth.Set(0)
	if len(pending) > 0 {
		log.Printf("playback queue flushed, %d items dropped", len(pending))
	}
}

// Close transitions the worker to draining: the current item finishes, the
// rest of the queue is discarded without signaling, and the goroutine exits.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.draining {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.draining = true
	w.cond.Broadcast()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.draining {
			w.cond.Wait()
		}
		if w.draining {
			dropped := len(w.queue)
			w.queue = nil
			w.mu.Unlock()
			if dropped > 0 {
				log.Printf("playback worker draining, %d queued items discarded", dropped)
			}
			return
		}
		item := w.queue[0]
		w.queue = w.queue[1:]
		depth := len(w.queue)
		w.mu.Unlock()

		w.metrics.QueueDepth.Set(float64(depth))
		w.play(item)
	}
}

// play dispatches one item and always signals its completion before
// returning, so callers never hang on a dead item.
func (w *Worker) play(item *Item) {
	var playErr error
	defer func() {
		item.complete()
		if w.listener != nil {
			w.listener.ItemFinished(item, playErr)
		}
	}()

	if w.listener != nil {
		w.listener.ItemStarted(item)
	}

	data := item.Audio
	if item.Kind == KindEffect {
		var ok bool
		data, ok = w.effects.Lookup(item.Effect)
		if !ok {
			log.Printf("effect %q not loaded, skipping", item.Effect)
			w.metrics.PlaybackItems.WithLabelValues(string(item.Kind), "skipped").Inc()
			return
		}
	}

	if playErr = w.device.LoadBytes(data); playErr != nil {
		log.Printf("device load failed for %s: %v", item.Label(), playErr)
		w.metrics.PlaybackItems.WithLabelValues(string(item.Kind), "error").Inc()
		return
	}
	if playErr = w.device.Play(); playErr != nil {
		log.Printf("device play failed for %s: %v", item.Label(), playErr)
		w.metrics.PlaybackItems.WithLabelValues(string(item.Kind), "error").Inc()
		return
	}
	for w.device.IsBusy() {
		time.Sleep(w.pollInterval)
	}
	w.metrics.PlaybackItems.WithLabelValues(string(item.Kind), "played").Inc()
}
