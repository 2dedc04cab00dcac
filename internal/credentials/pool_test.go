package credentials

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNewPoolRejectsEmpty(t *testing.T) {
	_, err := NewPool("groq", nil)
	require.ErrorIs(t, err, ErrNoCredentials)

	_, err = NewPool("groq", []string{"", ""})
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewPoolDeduplicates(t *testing.T) {
	p, err := NewPool("groq", []string{"a", "b", "a", "", "c"})
	require.NoError(t, err)
	require.Equal(t, 3, p.Size())
}

func TestAcquireReturnsOnlyPoolMembers(t *testing.T) {
	keys := []string{"k1", "k2", "k3"}
	clock := newFakeClock()
	p, err := NewPool("groq", keys, WithClock(clock.Now))
	require.NoError(t, err)

	statuses := []int{429, 200, 403, 0, 503, 400, 429, 429, 429}
	for _, status := range statuses {
		k := p.Acquire()
		require.Contains(t, keys, k)
		p.ReportOutcome(k, status)
		clock.Advance(7 * time.Second)
	}
}

func TestRateLimitedKeyCoolsDownForSixtySeconds(t *testing.T) {
	clock := newFakeClock()
	p, err := NewPool("groq", []string{"k1", "k2"}, WithClock(clock.Now))
	require.NoError(t, err)

	require.Equal(t, "k1", p.Acquire())
	require.True(t, p.ReportOutcome("k1", 429))

	for i := 0; i < 59; i++ {
		require.Equal(t, "k2", p.Acquire())
		// force the cursor back onto k1 so Acquire has to skip it
		p.mu.Lock()
		p.cursor = 0
		p.mu.Unlock()
		clock.Advance(time.Second)
	}

	clock.Advance(time.Second)
	require.False(t, p.Blacklisted("k1"))
	require.Equal(t, "k1", p.Acquire())
}

func TestReportOutcomePolicy(t *testing.T) {
	cases := []struct {
		status   int
		rotates  bool
		cooldown time.Duration
	}{
		{status: 429, rotates: true, cooldown: 60 * time.Second},
		{status: 403, rotates: true, cooldown: 300 * time.Second},
		{status: 0, rotates: true, cooldown: 10 * time.Second},
		{status: 500, rotates: true, cooldown: 10 * time.Second},
		{status: 502, rotates: true, cooldown: 10 * time.Second},
		{status: 400, rotates: false},
		{status: 401, rotates: false},
		{status: 404, rotates: false},
	}

	for _, tc := range cases {
		clock := newFakeClock()
		p, err := NewPool("p", []string{"a", "b"}, WithClock(clock.Now))
		require.NoError(t, err)

		rotated := p.ReportOutcome("a", tc.status)
		require.Equal(t, tc.rotates, rotated, "status %d", tc.status)
		if !tc.rotates {
			require.Equal(t, 0, p.Status().Cursor)
			require.False(t, p.Blacklisted("a"))
			continue
		}
		require.Equal(t, 1, p.Status().Cursor)
		clock.Advance(tc.cooldown - time.Nanosecond)
		require.True(t, p.Blacklisted("a"), "status %d", tc.status)
		clock.Advance(time.Nanosecond)
		require.False(t, p.Blacklisted("a"), "status %d", tc.status)
	}
}

func TestBlacklistNeverShortens(t *testing.T) {
	clock := newFakeClock()
	p, err := NewPool("p", []string{"a", "b"}, WithClock(clock.Now))
	require.NoError(t, err)

	p.ReportOutcome("a", 403)
	clock.Advance(time.Second)
	p.ReportOutcome("a", 500)

	clock.Advance(200 * time.Second)
	require.True(t, p.Blacklisted("a"))
}

func TestAdvanceIsCyclic(t *testing.T) {
	p, err := NewPool("p", []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	p.mu.Lock()
	defer p.mu.Unlock()
	start := p.cursor
	for i := 0; i < len(p.keys); i++ {
		p.advanceLocked()
	}
	require.Equal(t, start, p.cursor)
}

func TestAcquireWhenAllBlacklisted(t *testing.T) {
	clock := newFakeClock()
	keys := []string{"a", "b", "c"}
	p, err := NewPool("p", keys, WithClock(clock.Now))
	require.NoError(t, err)

	for _, k := range keys {
		p.ReportOutcome(k, 429)
	}
	require.Equal(t, 3, p.Status().Blacklisted)
	require.Contains(t, keys, p.Acquire())
}

func TestWithCooldownsOverrides(t *testing.T) {
	clock := newFakeClock()
	p, err := NewPool("p", []string{"a", "b"}, WithClock(clock.Now), WithCooldowns(Cooldowns{RateLimited: 5 * time.Second}))
	require.NoError(t, err)

	p.ReportOutcome("a", 429)
	clock.Advance(5 * time.Second)
	require.False(t, p.Blacklisted("a"))

	p.ReportOutcome("a", 403)
	clock.Advance(299 * time.Second)
	require.True(t, p.Blacklisted("a"))
}

func TestConcurrentAcquireAndReport(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e"}
	p, err := NewPool("p", keys)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k := p.Acquire()
				if (i+j)%3 == 0 {
					p.ReportOutcome(k, 503)
				}
			}
		}(i)
	}
	wg.Wait()

	st := p.Status()
	require.GreaterOrEqual(t, st.Cursor, 0)
	require.Less(t, st.Cursor, len(keys))
}

func TestMask(t *testing.T) {
	require.Equal(t, "****", Mask("abc"))
	require.Equal(t, "****wxyz", Mask("gsk_abcdwxyz"))
}
