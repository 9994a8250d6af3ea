package voice

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	text    string
	voiceID string
}

// SynthesisCache memoizes synthesized audio by exact (text, voice) pair so
// Salty's stock phrases do not burn provider quota. Bounded LRU: a hit
// promotes the entry, the (N+1)th insert evicts the least recently used.
type SynthesisCache struct {
	entries *lru.Cache[cacheKey, []byte]
}

func NewSynthesisCache(capacity int) (*SynthesisCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	entries, err := lru.New[cacheKey, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("init synthesis cache: %w", err)
	}
	return &SynthesisCache{entries: entries}, nil
}

func (c *SynthesisCache) Get(text, voiceID string) ([]byte, bool) {
	return c.entries.Get(cacheKey{text: text, voiceID: voiceID})
}

func (c *SynthesisCache) Put(text, voiceID string, data []byte) {
	c.entries.Add(cacheKey{text: text, voiceID: voiceID}, data)
}

func (c *SynthesisCache) Len() int {
	return c.entries.Len()
}
