// Package config loads goapflow configuration from YAML files with
// environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("GOAPFLOW").
//	    Load()
//
// Precedence: defaults, then YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/goapflow/types"
)

// Config is the full goapflow configuration.
type Config struct {
	// Process controls the execution loop.
	Process ProcessConfig `yaml:"process" env:"PROCESS"`

	// Planner controls the GOAP search.
	Planner PlannerConfig `yaml:"planner" env:"PLANNER"`

	// Snapshot controls process snapshot persistence.
	Snapshot SnapshotConfig `yaml:"snapshot" env:"SNAPSHOT"`

	// Log configures the zap logger.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry configures the OTel SDK.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ProcessConfig controls the plan-act-replan loop.
type ProcessConfig struct {
	// MaxActions bounds the number of executed actions per run. Zero
	// means unbounded.
	MaxActions int `yaml:"max_actions" env:"MAX_ACTIONS"`
	// MaxCost bounds the cumulative action cost per run. Zero means
	// unbounded.
	MaxCost float64 `yaml:"max_cost" env:"MAX_COST"`
	// ActionsPerSecond throttles action execution. Zero disables the
	// limiter.
	ActionsPerSecond float64 `yaml:"actions_per_second" env:"ACTIONS_PER_SECOND"`
	// ActionTimeout bounds a single action body. Zero means no timeout.
	ActionTimeout time.Duration `yaml:"action_timeout" env:"ACTION_TIMEOUT"`
}

// PlannerConfig controls the GOAP search.
type PlannerConfig struct {
	// MaxPlanDepth bounds the number of actions in a single plan.
	MaxPlanDepth int `yaml:"max_plan_depth" env:"MAX_PLAN_DEPTH"`
}

// SnapshotConfig controls process snapshot persistence.
type SnapshotConfig struct {
	// Store selects the backend: memory, file, redis.
	Store string `yaml:"store" env:"STORE"`
	// Dir is the file store's directory.
	Dir string `yaml:"dir" env:"DIR"`
	// Redis configures the redis store.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`
}

// RedisConfig configures the redis snapshot backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig configures the OTel SDK.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Loader builds a Config from defaults, file, and environment.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "GOAPFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator appends a validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration. A missing file is not an error; the
// defaults simply stand.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, err
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, err
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, types.WrapError(err, types.ErrConfigInvalid, "config validation failed")
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return types.WrapError(err, types.ErrConfigNotFound, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return types.WrapError(err, types.ErrConfigInvalid, "failed to parse config file")
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return types.WrapError(err, types.ErrConfigInvalid, fmt.Sprintf("failed to set %s", envKey))
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// Comma-separated string slices only.
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads the configuration from path, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads the configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []string

	if c.Process.MaxActions < 0 {
		errs = append(errs, "process.max_actions must not be negative")
	}
	if c.Process.MaxCost < 0 {
		errs = append(errs, "process.max_cost must not be negative")
	}
	if c.Planner.MaxPlanDepth <= 0 {
		errs = append(errs, "planner.max_plan_depth must be positive")
	}
	switch c.Snapshot.Store {
	case "memory", "file", "redis":
	default:
		errs = append(errs, fmt.Sprintf("unknown snapshot store %q", c.Snapshot.Store))
	}
	if c.Snapshot.Store == "redis" && c.Snapshot.Redis.Addr == "" {
		errs = append(errs, "snapshot.redis.addr is required for the redis store")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry.otlp_endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return types.NewError(types.ErrConfigInvalid, strings.Join(errs, "; "))
	}

	return nil
}
