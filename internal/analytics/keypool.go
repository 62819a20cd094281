package analytics

import (
	"errors"
	"strings"
	"studiosync/internal/providers"
	"studiosync/internal/structures"
	"sync"
	"time"
)

// KeyCooldown is how long an exhausted credential stays blacklisted before it
// self-heals back to ACTIVE.
const KeyCooldown = time.Hour

type KeyStatus string

const (
	KeyActive    KeyStatus = "ACTIVE"
	KeyExhausted KeyStatus = "EXHAUSTED"
)

type KeyStatusEntry struct {
	Masked string    `json:"masked"`
	Status KeyStatus `json:"status"`
}

var ErrNoActiveKey = errors.New("all api keys exhausted")

type poolKey struct {
	key         string
	exhausted   bool
	exhaustedAt time.Time
}

// KeyPool rotates provider credentials. A key reported exhausted is skipped
// until its cooldown elapses; revival is checked lazily on every read, so no
// background sweep is needed.
type KeyPool struct {
	mu     sync.Mutex
	keys   []*poolKey
	next   int
	now    func() time.Time
	logger providers.Logger
}

func NewKeyPool(conf *structures.Config, logger providers.Logger) *KeyPool {
	pool := &KeyPool{
		now:    time.Now,
		logger: logger,
	}
	for _, k := range conf.Provider.Keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		pool.keys = append(pool.keys, &poolKey{key: k})
	}
	logger.Infof(providers.TypeApp, "Credential pool initialized: %d keys", len(pool.keys))
	return pool
}

func (p *KeyPool) reviveLocked(k *poolKey) {
	if k.exhausted && p.now().Sub(k.exhaustedAt) >= KeyCooldown {
		k.exhausted = false
	}
}

// NextActiveKey returns a usable credential or fails fast with
// ErrNoActiveKey once every key is in cooldown. The same key is served until
// it is reported exhausted.
func (p *KeyPool) NextActiveKey() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.keys)
	if n == 0 {
		return "", ErrNoActiveKey
	}

	for i := 0; i < n; i++ {
		idx := (p.next + i) % n
		k := p.keys[idx]
		p.reviveLocked(k)
		if !k.exhausted {
			p.next = idx
			return k.key, nil
		}
	}
	return "", ErrNoActiveKey
}

func (p *KeyPool) ReportExhausted(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, k := range p.keys {
		if k.key == key && !k.exhausted {
			k.exhausted = true
			k.exhaustedAt = p.now()
			p.logger.Warnf(providers.TypeSync, "API key %s exhausted, cooling down for %s", maskKey(key), KeyCooldown)
			return
		}
	}
}

// ListStatus exposes the pool for observability without leaking secrets.
func (p *KeyPool) ListStatus() []KeyStatusEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]KeyStatusEntry, 0, len(p.keys))
	for _, k := range p.keys {
		p.reviveLocked(k)
		status := KeyActive
		if k.exhausted {
			status = KeyExhausted
		}
		out = append(out, KeyStatusEntry{Masked: maskKey(k.key), Status: status})
	}
	return out
}

func (p *KeyPool) CountByStatus() (active int, exhausted int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, k := range p.keys {
		p.reviveLocked(k)
		if k.exhausted {
			exhausted++
		} else {
			active++
		}
	}
	return active, exhausted
}

func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

func maskKey(key string) string {
	if len(key) <= 6 {
		return "******"
	}
	return key[:4] + "..." + key[len(key)-2:]
}
