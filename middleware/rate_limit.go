package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"verifyproxy/config"
	"verifyproxy/utils"
)

const (
	ReasonRateLimited = "rate limit exceeded"
	ReasonBanned      = "banned due to repeated auth failures"
)

// RateLimitEntry is the fixed-window counter for one client IP.
type RateLimitEntry struct {
	Count        int
	ResetAt      time.Time
	AuthFailures int
}

// RateLimiter tracks per-IP request windows and auth-failure bans. All state
// lives behind one mutex so check-and-increment is atomic across connections.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*RateLimitEntry
	bans    map[string]time.Time
	cfg     config.RateLimitConfig
	now     func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*RateLimitEntry),
		bans:    make(map[string]time.Time),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Check counts a request from ip and reports whether it may proceed.
func (rl *RateLimiter) Check(ip string) (bool, string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if until, ok := rl.bans[ip]; ok && now.Before(until) {
		return false, ReasonBanned
	}

	entry, ok := rl.entries[ip]
	if !ok {
		rl.entries[ip] = &RateLimitEntry{Count: 1, ResetAt: now.Add(rl.cfg.Window)}
		return true, ""
	}
	if now.After(entry.ResetAt) {
		entry.Count = 1
		entry.ResetAt = now.Add(rl.cfg.Window)
		return true, ""
	}

	entry.Count++
	if entry.Count > rl.cfg.Max {
		return false, ReasonRateLimited
	}
	return true, ""
}

// RecordAuthFailure adds one failure for ip and returns true when this failure installed a ban.
func (rl *RateLimiter) RecordAuthFailure(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.entries[ip]
	if !ok {
		entry = &RateLimitEntry{ResetAt: now.Add(rl.cfg.Window)}
		rl.entries[ip] = entry
	}

	entry.AuthFailures++
	if entry.AuthFailures < rl.cfg.BanThreshold {
		return false
	}

	entry.AuthFailures = 0
	rl.bans[ip] = now.Add(rl.cfg.BanDuration)
	return true
}

// Sweep evicts windows that ended more than one sweep interval ago and lapsed bans.
func (rl *RateLimiter) Sweep() (entries int, bans int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, entry := range rl.entries {
		if now.Sub(entry.ResetAt) > rl.cfg.SweepInterval {
			delete(rl.entries, ip)
			entries++
		}
	}
	for ip, until := range rl.bans {
		if !now.Before(until) {
			delete(rl.bans, ip)
			bans++
		}
	}
	return entries, bans
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

func (rl *RateLimiter) banCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.bans)
}

// RateLimit rejects banned or over-limit clients with 429.
func RateLimit(rl *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ok, reason := rl.Check(ip); !ok {
			utils.LogEvent("rate_limited", map[string]interface{}{
				"ip":     ip,
				"reason": reason,
			})
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, reason)
		}
		return c.Next()
	}
}
