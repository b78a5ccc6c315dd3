// Package ratelimit tracks the products API request quota and gates
// requests before the quota is exhausted.
// It reads the X-RateLimit-Remaining and X-RateLimit-Reset response headers
// and shares the resulting state between admin instances through Redis.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRemaining      = "product-admin:rate_limit:remaining"
	RedisKeyResetTimestamp = "product-admin:rate_limit:reset_timestamp"
	RedisKeyLastUpdate     = "product-admin:rate_limit:last_update"
)

// Response headers carrying the upstream quota.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Thresholds for rate limit decisions.
const (
	// ThresholdCritical blocks all requests when remaining falls below this value.
	ThresholdCritical = 1

	// ThresholdWarning applies throttling when remaining falls below this value.
	ThresholdWarning = 5

	// ThresholdHealthy marks the quota as healthy at or above this value.
	ThresholdHealthy = 20
)

// RateLimitState is the last known upstream quota.
type RateLimitState struct {
	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets (from X-RateLimit-Reset seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was recorded.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests must be blocked until reset.
// A window that has already reset never blocks.
func (s *RateLimitState) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *RateLimitState) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsCriticalBlock() && s.TimeUntilReset() > 0
}

// TimeUntilReset returns the duration until the window resets, or 0.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates IsHealthy from Remaining.
func (s *RateLimitState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}
