package config

import "time"

// CacheConfig controls the Redis read-through cache in front of the
// upstream providers.  With Enabled false, or without a Redis client,
// every lookup goes to the provider.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads UPSTREAM_CACHE_* variables.  Seat counts change
// through the day, so the default TTL is short.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled: envBool("UPSTREAM_CACHE_ENABLED", true),
		TTL:     envDur("UPSTREAM_CACHE_TTL", 2*time.Minute),
		Prefix:  envStr("UPSTREAM_CACHE_PREFIX", "upstream"),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Minute
	}
	return cfg
}
