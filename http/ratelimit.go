package http

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-domain request rate limiting using token bucket algorithm.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// DefaultRPS is requests per second for domains without a custom rate
	// (0 = unlimited)
	DefaultRPS float64
	// CustomRates maps domains to RPS values
	CustomRates map[string]float64
}

// StoreRPS is the tabular store's documented per-base request limit.
const StoreRPS = 5.0

// DefaultRateLimiterConfig returns defaults: the public tabular store API is
// limited, everything else is unlimited.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		DefaultRPS: 0,
		CustomRates: map[string]float64{
			"api.airtable.com": StoreRPS,
		},
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rates := make(map[string]float64, len(cfg.CustomRates))
	for domain, rps := range cfg.CustomRates {
		rates[strings.ToLower(domain)] = rps
	}
	cfg.CustomRates = rates

	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait waits until the rate limit allows a request for the given URL.
// Returns an error if the context is canceled or exceeded deadline.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}

	limiter := rl.getLimiter(urlStr)
	if limiter == nil {
		// No rate limiting for this domain
		return nil
	}

	if !limiter.Allow() {
		reservation := limiter.Reserve()
		if !reservation.OK() {
			return fmt.Errorf("rate limit: cannot reserve token")
		}

		timer := time.NewTimer(reservation.Delay())
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			reservation.Cancel()
			return ctx.Err()
		}
	}

	return nil
}

// getLimiter returns the rate limiter for a given URL, creating one if necessary.
func (rl *RateLimiter) getLimiter(urlStr string) *rate.Limiter {
	domain := extractDomain(urlStr)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rps := rl.getRPS(domain)
	if rps <= 0 {
		return nil
	}

	if limiter, ok := rl.limiters[domain]; ok {
		return limiter
	}

	// Burst of 1 keeps requests evenly spaced.
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[domain] = limiter
	return limiter
}

// getRPS returns the requests per second for a given domain.
// Must be called with mutex held.
func (rl *RateLimiter) getRPS(domain string) float64 {
	if rps, ok := rl.config.CustomRates[domain]; ok {
		return rps
	}
	return rl.config.DefaultRPS
}

// extractDomain extracts the lower-cased host (without port) from a URL string.
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// SetCustomRate sets a custom rate limit for a specific domain.
// A rate of 0 disables limiting for that domain.
func (rl *RateLimiter) SetCustomRate(domain string, rps float64) {
	domain = strings.ToLower(domain)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.config.CustomRates[domain] = rps

	// Clear existing limiter to force recreation with new rate
	delete(rl.limiters, domain)
}

// Stats returns the configured rate of every domain that has a live limiter.
func (rl *RateLimiter) Stats() map[string]float64 {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := make(map[string]float64, len(rl.limiters))
	for domain := range rl.limiters {
		stats[domain] = rl.getRPS(domain)
	}
	return stats
}
