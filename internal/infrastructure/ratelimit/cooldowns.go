// Package ratelimit enforces the per-viewer and per-channel cooldowns that
// command descriptors declare.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"catcmd/internal/usecase/commands"
)

// Cooldowns keeps one single-token limiter per cooldown key. A key is
// refilled once its cooldown has elapsed since the last accepted use.
type Cooldowns struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{limiters: make(map[string]*rate.Limiter)}
}

// Acquire consumes the viewer and global cooldowns of cmd at now. Nothing is
// consumed when either one is still running; wait is then the longer of the
// two remaining times.
func (c *Cooldowns) Acquire(now time.Time, userID string, cmd commands.Command) (time.Duration, bool) {
	meta := cmd.Meta()
	kind := cmd.Kind()

	c.mu.Lock()
	defer c.mu.Unlock()

	var held []*rate.Limiter
	var wait time.Duration

	if meta.ViewerCooldown > 0 {
		l := c.limiter(fmt.Sprintf("viewer:%s:%s", kind, userID), meta.ViewerCooldown)
		held = append(held, l)
		wait = max(wait, remaining(l, now, meta.ViewerCooldown))
	}
	if meta.GlobalCooldown > 0 {
		l := c.limiter(fmt.Sprintf("global:%s", kind), meta.GlobalCooldown)
		held = append(held, l)
		wait = max(wait, remaining(l, now, meta.GlobalCooldown))
	}

	if wait > 0 {
		return wait, false
	}
	for _, l := range held {
		l.AllowN(now, 1)
	}
	return 0, true
}

// Prune drops limiters that are fully refilled at now. Dropping them does not
// change any future decision.
func (c *Cooldowns) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, l := range c.limiters {
		if l.TokensAt(now) >= 1 {
			delete(c.limiters, key)
			removed++
		}
	}
	return removed
}

// Len reports how many cooldown keys are tracked.
func (c *Cooldowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}

func (c *Cooldowns) limiter(key string, cooldown time.Duration) *rate.Limiter {
	l, ok := c.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(cooldown), 1)
		c.limiters[key] = l
	}
	return l
}

func remaining(l *rate.Limiter, now time.Time, cooldown time.Duration) time.Duration {
	tokens := l.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	wait := time.Duration((1 - tokens) * float64(cooldown))
	if wait <= 0 {
		return time.Nanosecond
	}
	return wait
}
