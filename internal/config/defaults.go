package config

import "time"

// Default returns the baseline configuration applied before any profile
// file or environment override is layered on top.
func Default() *Config {
	return &Config{
		Edition: EditionEnhanced,
		Tools: ToolsConfig{
			Exposure: ExposurePublic,
		},
		Dispatch: DispatchConfig{
			CallDeadlineMS: 300 * 1000,
		},
		Pool: PoolConfig{
			MaxSize:               10,
			MinIdle:               1,
			AcquireTimeoutMS:      30 * 1000,
			MaxLifetimeMS:         30 * 60 * 1000,
			IdleTimeoutMS:         10 * 60 * 1000,
			LeakThresholdMS:       60 * 1000,
			ValidationQuery:       "SELECT 1 FROM DUAL",
			ReconnectInitialDelay: 250 * time.Millisecond,
			ReconnectMaxDelay:     10 * time.Second,
			ReconnectMaxRetries:   5,
		},
		Query: QueryConfig{
			DefaultFetchSize: 1000,
			MaxRows:          10000,
			TimeoutMS:        30000,
		},
		Features: FeaturesConfig{
			DetectTTLMS: 60 * 60 * 1000,
		},
		Security: SecurityConfig{
			BlockSystemUsers: true,
		},
		DrainTimeout: 30 * time.Second,
		LogLevel:     "info",
	}
}
