// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a default; Validate fails fast on values
// that would silently break the presence timers.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures everything the presence gateway needs at startup.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig
	NATSURL     string
	// AttachmentServiceURL points at the file service's internal cleanup API.
	// Empty disables orphaned-attachment cleanup.
	AttachmentServiceURL string
	Presence             PresenceConfig
}

// RedisConfig controls the optional shared throttle store. An empty URL means
// throttling stays in-process.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PresenceConfig holds the tunables of the presence engine.
type PresenceConfig struct {
	// OfflineThreshold is how stale lastActiveAt may be before the sweep
	// flips an online subject offline.
	OfflineThreshold time.Duration
	// MaintenanceInterval is the reconciliation sweep period.
	MaintenanceInterval time.Duration
	// ThrottleInterval is the minimum gap between persisted activity writes
	// per subject.
	ThrottleInterval time.Duration
	// CacheCleanupInterval is the throttle cache eviction sweep period.
	CacheCleanupInterval time.Duration
	// CacheMaxAge is how long an idle throttle entry survives before eviction.
	CacheMaxAge time.Duration
	// AnonymousSessionTTL is how long an inactive anonymous subject is kept
	// before the daily cleanup hard-deletes it.
	AnonymousSessionTTL time.Duration
	// OrphanedAttachmentThreshold is the minimum age of an unlinked attachment
	// before the daily cleanup deletes it.
	OrphanedAttachmentThreshold time.Duration
	// CleanupWindowStartHour / CleanupWindowEndHour bound the local-time window
	// inside which the daily cleanup may run.
	CleanupWindowStartHour int
	CleanupWindowEndHour   int
}

// FromEnv builds a Config from environment variables. An unparsable numeric
// value is a configuration error and stops startup; only unset variables fall
// back to defaults.
func FromEnv() (Config, error) {
	var errs []error
	intVar := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: not an integer: %q", key, v))
			return def
		}
		return n
	}

	cfg := Config{
		Addr:        envOr("MEESHY_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		NATSURL:              os.Getenv("NATS_URL"),
		AttachmentServiceURL: os.Getenv("ATTACHMENT_SERVICE_URL"),
		Presence: PresenceConfig{
			OfflineThreshold:            time.Duration(intVar("OFFLINE_THRESHOLD_MINUTES", 5)) * time.Minute,
			MaintenanceInterval:         time.Duration(intVar("MAINTENANCE_INTERVAL_MS", 15000)) * time.Millisecond,
			ThrottleInterval:            time.Duration(intVar("THROTTLE_INTERVAL_MS", 60000)) * time.Millisecond,
			CacheCleanupInterval:        time.Duration(intVar("CACHE_CLEANUP_INTERVAL_MS", 300000)) * time.Millisecond,
			CacheMaxAge:                 time.Duration(intVar("CACHE_MAX_AGE_MS", 600000)) * time.Millisecond,
			AnonymousSessionTTL:         time.Duration(intVar("ANONYMOUS_SESSION_TTL_HOURS", 24)) * time.Hour,
			OrphanedAttachmentThreshold: time.Duration(intVar("ORPHANED_ATTACHMENT_THRESHOLD_HOURS", 24)) * time.Hour,
			CleanupWindowStartHour:      intVar("CLEANUP_WINDOW_START_HOUR", 2),
			CleanupWindowEndHour:        intVar("CLEANUP_WINDOW_END_HOUR", 3),
		},
	}
	return cfg, errors.Join(errs...)
}

// Validate rejects configurations that would break timers or cleanup at
// runtime. Called once at startup; validation failures are not recoverable.
func (c Config) Validate() error {
	p := c.Presence
	for _, check := range []struct {
		name  string
		value time.Duration
	}{
		{"OFFLINE_THRESHOLD_MINUTES", p.OfflineThreshold},
		{"MAINTENANCE_INTERVAL_MS", p.MaintenanceInterval},
		{"THROTTLE_INTERVAL_MS", p.ThrottleInterval},
		{"CACHE_CLEANUP_INTERVAL_MS", p.CacheCleanupInterval},
		{"CACHE_MAX_AGE_MS", p.CacheMaxAge},
		{"ANONYMOUS_SESSION_TTL_HOURS", p.AnonymousSessionTTL},
		{"ORPHANED_ATTACHMENT_THRESHOLD_HOURS", p.OrphanedAttachmentThreshold},
	} {
		if check.value <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", check.name, check.value)
		}
	}
	if p.CacheMaxAge < p.ThrottleInterval {
		return fmt.Errorf("config: CACHE_MAX_AGE_MS (%s) must not be shorter than THROTTLE_INTERVAL_MS (%s)",
			p.CacheMaxAge, p.ThrottleInterval)
	}
	if p.CleanupWindowStartHour < 0 || p.CleanupWindowStartHour > 23 ||
		p.CleanupWindowEndHour < 1 || p.CleanupWindowEndHour > 24 ||
		p.CleanupWindowStartHour >= p.CleanupWindowEndHour {
		return fmt.Errorf("config: cleanup window [%d, %d) is not a valid hour range",
			p.CleanupWindowStartHour, p.CleanupWindowEndHour)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
