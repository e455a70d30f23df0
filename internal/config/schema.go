// Package config loads and validates the server's process-wide configuration.
package config

import (
	"fmt"
	"time"
)

// Edition gates which tool categories register at startup.
type Edition string

const (
	EditionEnhanced   Edition = "enhanced"
	EditionEnterprise Edition = "enterprise"
)

// Exposure controls which tools tools/list and tools/call surface.
type Exposure string

const (
	ExposurePublic Exposure = "public"
	ExposureAll    Exposure = "all"
)

// OracleConfig holds connection parameters for the target Oracle instance.
type OracleConfig struct {
	// URL is a JDBC-style connection string: host:port/service_or_sid.
	URL string `yaml:"url" env:"ORACLE_URL"`
	// User is the Oracle login name.
	User string `yaml:"user" env:"ORACLE_USER"`
	// Password is never logged or echoed in errors.
	Password string `yaml:"password" env:"ORACLE_PASSWORD"`
}

// PoolConfig tunes the Connection Pool (C3).
type PoolConfig struct {
	MaxSize               int           `yaml:"max_size" env:"POOL_MAX_SIZE"`
	MinIdle               int           `yaml:"min_idle" env:"POOL_MIN_IDLE"`
	AcquireTimeoutMS      int           `yaml:"acquire_timeout_ms" env:"POOL_ACQUIRE_TIMEOUT_MS"`
	MaxLifetimeMS         int           `yaml:"max_lifetime_ms" env:"POOL_MAX_LIFETIME_MS"`
	IdleTimeoutMS         int           `yaml:"idle_timeout_ms" env:"POOL_IDLE_TIMEOUT_MS"`
	LeakThresholdMS       int           `yaml:"leak_threshold_ms" env:"POOL_LEAK_THRESHOLD_MS"`
	ValidationQuery       string        `yaml:"validation_query"`
	ReconnectInitialDelay time.Duration `yaml:"-"`
	ReconnectMaxDelay     time.Duration `yaml:"-"`
	ReconnectMaxRetries   int           `yaml:"-"`
}

// AcquireTimeout returns PoolConfig.AcquireTimeoutMS as a time.Duration.
func (p PoolConfig) AcquireTimeout() time.Duration {
	return time.Duration(p.AcquireTimeoutMS) * time.Millisecond
}

// MaxLifetime returns PoolConfig.MaxLifetimeMS as a time.Duration.
func (p PoolConfig) MaxLifetime() time.Duration {
	return time.Duration(p.MaxLifetimeMS) * time.Millisecond
}

// IdleTimeout returns PoolConfig.IdleTimeoutMS as a time.Duration.
func (p PoolConfig) IdleTimeout() time.Duration {
	return time.Duration(p.IdleTimeoutMS) * time.Millisecond
}

// LeakThreshold returns PoolConfig.LeakThresholdMS as a time.Duration.
func (p PoolConfig) LeakThreshold() time.Duration {
	return time.Duration(p.LeakThresholdMS) * time.Millisecond
}

// QueryConfig tunes the Execution Engine (C4) defaults.
type QueryConfig struct {
	DefaultFetchSize int `yaml:"default_fetch_size" env:"QUERY_DEFAULT_FETCH_SIZE"`
	MaxRows          int `yaml:"max_rows" env:"QUERY_MAX_ROWS"`
	TimeoutMS        int `yaml:"timeout_ms" env:"QUERY_TIMEOUT_MS"`
}

// Timeout returns QueryConfig.TimeoutMS as a time.Duration.
func (q QueryConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutMS) * time.Millisecond
}

// FeaturesConfig tunes the Dialect Feature Detector (C1).
type FeaturesConfig struct {
	DetectTTLMS int `yaml:"detect_ttl_ms" env:"FEATURES_DETECT_TTL_MS"`
}

// DetectTTL returns FeaturesConfig.DetectTTLMS as a time.Duration.
func (f FeaturesConfig) DetectTTL() time.Duration {
	return time.Duration(f.DetectTTLMS) * time.Millisecond
}

// SecurityConfig tunes SQL Builder safety rules (§4.3).
type SecurityConfig struct {
	BlockSystemUsers   bool     `yaml:"block_system_users" env:"SECURITY_BLOCK_SYSTEM_USERS"`
	ExtraSystemDenylist []string `yaml:"extra_system_denylist,omitempty"`
}

// ToolsConfig controls registry exposure filtering.
type ToolsConfig struct {
	Exposure Exposure `yaml:"exposure" env:"TOOLS_EXPOSURE"`
}

// DispatchConfig tunes the Dispatcher (C7).
type DispatchConfig struct {
	// CallDeadlineMS bounds pool acquire + execute + formatting for a
	// single tool call, independent of query.timeout_ms which only
	// bounds the Execution Engine's own statement.
	CallDeadlineMS int `yaml:"call_deadline_ms" env:"DISPATCH_CALL_DEADLINE_MS"`
}

// CallDeadline returns DispatchConfig.CallDeadlineMS as a time.Duration.
func (d DispatchConfig) CallDeadline() time.Duration {
	return time.Duration(d.CallDeadlineMS) * time.Millisecond
}

// Config is the process-wide configuration, assembled at startup from
// defaults, an optional profile file, and environment overrides (in that
// order — environment always wins, per spec.md §6).
type Config struct {
	Oracle       OracleConfig   `yaml:"oracle"`
	Edition      Edition        `yaml:"edition" env:"EDITION"`
	Tools        ToolsConfig    `yaml:"tools"`
	Dispatch     DispatchConfig `yaml:"dispatch"`
	Pool         PoolConfig     `yaml:"pool"`
	Query        QueryConfig    `yaml:"query"`
	Features     FeaturesConfig `yaml:"features"`
	Security     SecurityConfig `yaml:"security"`
	// DrainTimeout is a duration string (e.g. "30s"), not milliseconds —
	// LoadFromEnv parses time.Duration fields with time.ParseDuration.
	DrainTimeout time.Duration `yaml:"drain_timeout" env:"DRAIN_TIMEOUT"`
	LogLevel     string         `yaml:"log_level" env:"LOG_LEVEL"`
}

// Validate checks the assembled configuration for obvious misconfiguration,
// returning an error that maps to exit code 1 (fatal configuration error)
// per spec.md §6.
func (c *Config) Validate() error {
	if c.Oracle.URL == "" {
		return fmt.Errorf("oracle.url is required")
	}
	if c.Oracle.User == "" {
		return fmt.Errorf("oracle.user is required")
	}
	switch c.Edition {
	case EditionEnhanced, EditionEnterprise:
	default:
		return fmt.Errorf("edition must be %q or %q, got %q", EditionEnhanced, EditionEnterprise, c.Edition)
	}
	switch c.Tools.Exposure {
	case ExposurePublic, ExposureAll:
	default:
		return fmt.Errorf("tools.exposure must be %q or %q, got %q", ExposurePublic, ExposureAll, c.Tools.Exposure)
	}
	if c.Pool.MaxSize <= 0 {
		return fmt.Errorf("pool.max_size must be positive, got %d", c.Pool.MaxSize)
	}
	if c.Pool.MinIdle < 0 || c.Pool.MinIdle > c.Pool.MaxSize {
		return fmt.Errorf("pool.min_idle must be between 0 and max_size, got %d", c.Pool.MinIdle)
	}
	if c.Query.MaxRows <= 0 {
		return fmt.Errorf("query.max_rows must be positive, got %d", c.Query.MaxRows)
	}
	return nil
}
