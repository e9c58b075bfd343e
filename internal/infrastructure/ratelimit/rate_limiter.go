package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionTyping      = "typing"
	ActionHelpBot     = "help_bot"
)

// Policy is a burst size plus a steady refill interval.
type Policy struct {
	Burst int
	Every time.Duration
}

var defaultPolicies = map[string]Policy{
	// 10 messages, then one every 6 seconds
	ActionSendMessage: {Burst: 10, Every: 6 * time.Second},
	// 5 chats, then one every 12 minutes
	ActionCreateChat: {Burst: 5, Every: 12 * time.Minute},
	// typing events arrive per keystroke
	ActionTyping:  {Burst: 30, Every: 200 * time.Millisecond},
	ActionHelpBot: {Burst: 5, Every: 10 * time.Second},
}

var fallbackPolicy = Policy{Burst: 20, Every: 3 * time.Second}

type entry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// RateLimiter keeps one token bucket per user and action.
type RateLimiter struct {
	entries  map[string]*entry
	policies map[string]Policy
	mutex    sync.RWMutex
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithPolicies(nil)
}

// NewRateLimiterWithPolicies overrides the default policy of the named actions.
func NewRateLimiterWithPolicies(overrides map[string]Policy) *RateLimiter {
	policies := make(map[string]Policy, len(defaultPolicies)+len(overrides))
	for k, v := range defaultPolicies {
		policies[k] = v
	}
	for k, v := range overrides {
		policies[k] = v
	}
	return &RateLimiter{
		entries:  make(map[string]*entry),
		policies: policies,
		now:      time.Now,
	}
}

// Allow consumes a token for userID:action. When none is available it returns
// false and the time until the next token.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.RLock()
	e, exists := rl.entries[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		if e, exists = rl.entries[key]; !exists {
			p, ok := rl.policies[action]
			if !ok {
				p = fallbackPolicy
			}
			e = &entry{limiter: rate.NewLimiter(rate.Every(p.Every), p.Burst)}
			rl.entries[key] = e
		}
		rl.mutex.Unlock()
	}

	rl.mutex.Lock()
	e.lastUsed = now
	rl.mutex.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	wait := r.DelayFrom(now)
	if wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, e := range rl.entries {
		if now.Sub(e.lastUsed) > idle {
			delete(rl.entries, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup every 30 minutes until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}

func (rl *RateLimiter) size() int {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	return len(rl.entries)
}
