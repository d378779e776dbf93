package config

import (
    "errors"
    "fmt"
    "time"
)

// RateLimitConfig sizes the per-client token bucket.  A client may spend
// Burst requests at once and earns the full bucket back over Window, so the
// sustained rate is Burst per Window.
type RateLimitConfig struct {
    Enabled bool
    Burst   int
    Window  time.Duration
    Prefix  string // Redis key prefix
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED (default true),
// RATE_LIMIT_BURST (60), RATE_LIMIT_WINDOW (1m) and RATE_LIMIT_PREFIX.
func LoadRateLimitConfig() (RateLimitConfig, error) {
    var errs []error
    cfg := RateLimitConfig{
        Enabled: boolVar("RATE_LIMIT_ENABLED", true, &errs),
        Burst:   intVar("RATE_LIMIT_BURST", 60, &errs),
        Window:  durationVar("RATE_LIMIT_WINDOW", time.Minute, &errs),
        Prefix:  getenv("RATE_LIMIT_PREFIX", "todo:rl"),
    }
    if cfg.Burst < 1 {
        errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", cfg.Burst))
    }
    if cfg.Window < time.Millisecond {
        errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1ms, got %s", cfg.Window))
    }
    return cfg, errors.Join(errs...)
}
