package credentials

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoCredentials is returned when a pool would be constructed without secrets.
var ErrNoCredentials = errors.New("no credentials configured")

// Default cooldown windows applied by ReportOutcome.
const (
	DefaultRateLimitCooldown = 60 * time.Second
	DefaultForbiddenCooldown = 300 * time.Second
	DefaultTransientCooldown = 10 * time.Second
)

// Cooldowns configures how long a credential is blacklisted per failure class.
type Cooldowns struct {
	RateLimited time.Duration
	Forbidden   time.Duration
	Transient   time.Duration
}

// DefaultCooldowns returns the standard 60s/300s/10s policy.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{
		RateLimited: DefaultRateLimitCooldown,
		Forbidden:   DefaultForbiddenCooldown,
		Transient:   DefaultTransientCooldown,
	}
}

// Option customises a Pool.
type Option func(*Pool)

// WithClock replaces the time source (tests drive simulated time through it).
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCooldowns overrides the blacklist windows. Zero fields keep defaults.
func WithCooldowns(c Cooldowns) Option {
	return func(p *Pool) {
		if c.RateLimited > 0 {
			p.cooldowns.RateLimited = c.RateLimited
		}
		if c.Forbidden > 0 {
			p.cooldowns.Forbidden = c.Forbidden
		}
		if c.Transient > 0 {
			p.cooldowns.Transient = c.Transient
		}
	}
}

// Pool holds the credentials of a single provider together with a rotation
// cursor and a blacklist. All methods are safe for concurrent use.
type Pool struct {
	provider  string
	cooldowns Cooldowns
	now       func() time.Time

	mu        sync.Mutex
	keys      []string
	cursor    int
	blacklist map[string]time.Time
}

// NewPool builds a pool from an ordered list of secrets. Blank and duplicate
// entries are dropped; the first occurrence keeps its position.
func NewPool(provider string, keys []string, opts ...Option) (*Pool, error) {
	seen := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ordered = append(ordered, k)
	}
	if len(ordered) == 0 {
		return nil, fmt.Errorf("provider %s: %w", provider, ErrNoCredentials)
	}

	p := &Pool{
		provider:  provider,
		cooldowns: DefaultCooldowns(),
		now:       time.Now,
		keys:      ordered,
		blacklist: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Provider returns the provider name the pool belongs to.
func (p *Pool) Provider() string {
	return p.provider
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	return len(p.keys)
}

// Acquire returns the credential at the cursor, skipping blacklisted ones.
// When every credential is blacklisted the one at the cursor is returned
// anyway, so callers must expect it to fail.
func (p *Pool) Acquire() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for attempts := 0; attempts < len(p.keys); attempts++ {
		key := p.keys[p.cursor]
		if !p.blacklistedLocked(key, now) {
			return key
		}
		p.advanceLocked()
	}
	return p.keys[p.cursor]
}

// ReportOutcome applies the cooldown policy for a failed call made with key.
// It returns true when the pool rotated. Statuses outside the policy
// (other 4xx, 2xx) leave the pool untouched.
func (p *Pool) ReportOutcome(key string, status int) bool {
	cooldown, rotate := p.cooldownFor(status)
	if !rotate {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	until := p.now().Add(cooldown)
	if current, ok := p.blacklist[key]; !ok || until.After(current) {
		p.blacklist[key] = until
	}
	p.advanceLocked()
	return true
}

// Blacklisted reports whether key is currently cooling down.
func (p *Pool) Blacklisted(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blacklistedLocked(key, p.now())
}

// Status is a point-in-time view of a pool that never includes secrets.
type Status struct {
	Provider    string `json:"provider"`
	Size        int    `json:"size"`
	Cursor      int    `json:"cursor"`
	Blacklisted int    `json:"blacklisted"`
}

// Status snapshots the pool.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	blocked := 0
	for _, k := range p.keys {
		if p.blacklistedLocked(k, now) {
			blocked++
		}
	}
	return Status{Provider: p.provider, Size: len(p.keys), Cursor: p.cursor, Blacklisted: blocked}
}

func (p *Pool) cooldownFor(status int) (time.Duration, bool) {
	switch {
	case status == 429:
		return p.cooldowns.RateLimited, true
	case status == 403:
		return p.cooldowns.Forbidden, true
	case status == 0 || status >= 500:
		return p.cooldowns.Transient, true
	default:
		return 0, false
	}
}

func (p *Pool) advanceLocked() {
	p.cursor = (p.cursor + 1) % len(p.keys)
}

func (p *Pool) blacklistedLocked(key string, now time.Time) bool {
	until, ok := p.blacklist[key]
	return ok && now.Before(until)
}

// Mask renders a secret for logs, keeping only the last four characters.
func Mask(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
