package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Process:   DefaultProcessConfig(),
		Planner:   DefaultPlannerConfig(),
		Snapshot:  DefaultSnapshotConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultProcessConfig returns the default execution loop settings.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		MaxActions:       50,
		MaxCost:          0,
		ActionsPerSecond: 0,
		ActionTimeout:    0,
	}
}

// DefaultPlannerConfig returns the default planner settings.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		MaxPlanDepth: 20,
	}
}

// DefaultSnapshotConfig returns the default snapshot settings.
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Store: "memory",
		Dir:   "snapshots",
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			DB:     0,
			Prefix: "goapflow",
			TTL:    24 * time.Hour,
		},
	}
}

// DefaultLogConfig returns the default logger settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry settings.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "goapflow",
		SampleRate:   0.1,
	}
}
