package middleware

import (
	"testing"

	"institute/config"

	"golang.org/x/time/rate"
)

// TestLimiterUsesConfiguredBudget checks that the per-IP limiter is built
// from MAX_REQUESTS_PER_MIN rather than a hardcoded rate.
func TestLimiterUsesConfiguredBudget(t *testing.T) {
	prev := config.AppConfig.MaxRequestsPerMin
	defer func() { config.AppConfig.MaxRequestsPerMin = prev }()

	config.AppConfig.MaxRequestsPerMin = 2
	store := &rateLimiterStore{limiters: make(map[string]*rate.Limiter)}

	limiter := store.getLimiter("10.0.0.1")
	if limiter.Burst() != 2 {
		t.Errorf("burst: got %d, want 2", limiter.Burst())
	}
	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("limiter denied requests within the budget")
	}
	if limiter.Allow() {
		t.Error("limiter allowed a request beyond the budget")
	}
}

func TestLimiterDefaultsWhenUnconfigured(t *testing.T) {
	prev := config.AppConfig.MaxRequestsPerMin
	defer func() { config.AppConfig.MaxRequestsPerMin = prev }()

	config.AppConfig.MaxRequestsPerMin = 0
	store := &rateLimiterStore{limiters: make(map[string]*rate.Limiter)}

	if got := store.getLimiter("10.0.0.2").Burst(); got != 100 {
		t.Errorf("default burst: got %d, want 100", got)
	}
}
