package config

import "time"

// WardenConfig is the root configuration for a warden instance.
type WardenConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Stream   StreamConfig   `yaml:"stream"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Policy   PolicyConfig   `yaml:"policy"`
	Debounce DebounceConfig `yaml:"debounce"`
	Database DBConfig       `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ops      OpsConfig      `yaml:"ops"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this warden.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds platform API settings.
type APIConfig struct {
	RestURL       string        `yaml:"rest_url"`
	StreamURL     string        `yaml:"stream_url"`
	AppKey        string        `yaml:"app_key"`         // App key ID (for WARDEN-APP-KEY header)
	AppSecretPath string        `yaml:"app_secret_path"` // Path to the shared-secret file
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
}

// StreamConfig holds per-connection stream settings.
type StreamConfig struct {
	IdleTimeout      time.Duration `yaml:"idle_timeout"`      // no traffic for this long aborts the socket
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	Cooldown         time.Duration `yaml:"cooldown"`       // hold-off after a rate-limited termination
	StatsInterval    time.Duration `yaml:"stats_interval"` // periodic supervisor stats log line
}

// SamplerConfig holds candidate sampler settings.
type SamplerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
	OpenRate  float64       `yaml:"open_rate"` // connection opens per second
	OpenBurst int           `yaml:"open_burst"`
}

// PolicyConfig holds block-decision thresholds.
type PolicyConfig struct {
	MinAccountAge time.Duration `yaml:"min_account_age"` // actors younger than this are NEW_ACCOUNT
	MinFollowers  int           `yaml:"min_followers"`   // actors below this are LOW_FOLLOWERS
	BackfillLimit int           `yaml:"backfill_limit"`  // recent mentions swept after connect
}

// DebounceConfig holds reconciliation debouncer settings.
type DebounceConfig struct {
	Window time.Duration `yaml:"window"`
}

// DBConfig holds the Postgres connection for accounts, the action queue,
// and the block mirror.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds the actor cache connection. An empty Addr disables
// the cache entirely.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	ActorTTL time.Duration `yaml:"actor_ttl"`
}

// OpsConfig holds the health/metrics listener settings.
type OpsConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
