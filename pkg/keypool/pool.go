package keypool

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for key rotation.
var (
	keyRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytfinder_key_rotations_total",
		Help: "Total number of API key rotations",
	})

	activeKeyIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytfinder_active_key_index",
		Help: "Zero-based index of the API key currently in use",
	})
)

// ErrNoCredentials is returned when a pool would be created without any key.
var ErrNoCredentials = errors.New("no API keys available")

// maskLen is the number of trailing key characters shown in logs.
const maskLen = 6

// Pool is a non-empty, ordered list of API keys with a cursor.
//
// Rotation is cyclic in load order and no key is ever removed: an exhausted
// key is revisited on the next full cycle. The cursor is shared by every
// caller holding the pool, so a key found bad by one call is skipped by the
// calls that follow.
type Pool struct {
	mu     sync.Mutex
	keys   []string
	idx    int
	logger zerolog.Logger
}

// New creates a pool from keys. Blank entries are dropped; at least one
// non-blank key is required.
func New(keys []string, logger zerolog.Logger) (*Pool, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoCredentials
	}

	activeKeyIndex.Set(0)
	logger.Info().Int("keys", len(cleaned)).Msg("Loaded API keys")

	return &Pool{
		keys:   cleaned,
		logger: logger,
	}, nil
}

// Current returns the key at the cursor.
func (p *Pool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[p.idx]
}

// Rotate advances the cursor by one position, wrapping around, and returns
// the new current key. On a single-key pool it returns the same key.
func (p *Pool) Rotate() string {
	p.mu.Lock()
	p.idx = (p.idx + 1) % len(p.keys)
	idx := p.idx
	key := p.keys[idx]
	p.mu.Unlock()

	keyRotationsTotal.Inc()
	activeKeyIndex.Set(float64(idx))
	p.logger.Warn().
		Int("key_number", idx+1).
		Str("key", Mask(key)).
		Msg("Switched API key")

	return key
}

// Size returns the number of keys in the pool.
func (p *Pool) Size() int {
	return len(p.keys)
}

// Index returns the zero-based cursor position.
func (p *Pool) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}

// SetIndex moves the cursor to i.
func (p *Pool) SetIndex(i int) error {
	if i < 0 || i >= len(p.keys) {
		return fmt.Errorf("key index %d out of range [0, %d)", i, len(p.keys))
	}

	p.mu.Lock()
	p.idx = i
	p.mu.Unlock()

	activeKeyIndex.Set(float64(i))
	return nil
}

// Keys returns a copy of the keys in load order.
func (p *Pool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Mask hides all but the last six characters of a key.
func Mask(key string) string {
	if len(key) <= maskLen {
		return "..." + key
	}
	return "..." + key[len(key)-maskLen:]
}
