package ratelimit

import (
	"testing"
	"time"
)

func TestRateLimitState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    *RateLimitState
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    &RateLimitState{LastUpdate: time.Now()},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    &RateLimitState{LastUpdate: time.Now().Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
		{
			name:     "just under max age",
			state:    &RateLimitState{LastUpdate: time.Now().Add(-4 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.state.IsStale(tt.maxAge); result != tt.expected {
				t.Errorf("IsStale() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestRateLimitState_Decisions(t *testing.T) {
	tests := []struct {
		name           string
		remaining      int
		resetIn        time.Duration
		expectBlock    bool
		expectThrottle bool
		expectHealthy  bool
	}{
		{"plenty left", 100, time.Minute, false, false, true},
		{"at healthy threshold", ThresholdHealthy, time.Minute, false, false, true},
		{"below healthy, above warning", ThresholdWarning + 1, time.Minute, false, false, false},
		{"warning band", ThresholdWarning - 1, time.Minute, false, true, false},
		{"at critical threshold", ThresholdCritical, time.Minute, false, true, false},
		{"exhausted", 0, time.Minute, true, false, false},
		{"exhausted but window reset", 0, -time.Second, false, false, false},
		{"warning but window reset", 2, -time.Second, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &RateLimitState{
				Remaining:  tt.remaining,
				ResetAt:    time.Now().Add(tt.resetIn),
				LastUpdate: time.Now(),
			}
			state.UpdateHealth()

			if got := state.NeedsCriticalBlock(); got != tt.expectBlock {
				t.Errorf("NeedsCriticalBlock() = %v, want %v", got, tt.expectBlock)
			}
			if got := state.NeedsThrottling(); got != tt.expectThrottle {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.expectThrottle)
			}
			if state.IsHealthy != tt.expectHealthy {
				t.Errorf("IsHealthy = %v, want %v", state.IsHealthy, tt.expectHealthy)
			}
		})
	}
}

func TestRateLimitState_TimeUntilReset(t *testing.T) {
	past := &RateLimitState{ResetAt: time.Now().Add(-time.Minute)}
	if got := past.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() for past reset = %v, want 0", got)
	}

	future := &RateLimitState{ResetAt: time.Now().Add(30 * time.Second)}
	got := future.TimeUntilReset()
	if got <= 25*time.Second || got > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want ~30s", got)
	}
}
