package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.warden.example.com/v2"
	DefaultStreamURL        = "wss://stream.warden.example.com/v2/user"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultIdleTimeout      = 70 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultCooldown         = 15 * time.Minute
	DefaultStatsInterval    = 1 * time.Minute
	DefaultSampleInterval   = 1 * time.Second
	DefaultSampleBatchSize  = 10
	DefaultOpenRate         = 5.0
	DefaultOpenBurst        = 10
	DefaultMinAccountAge    = 7 * 24 * time.Hour
	DefaultMinFollowers     = 15
	DefaultBackfillLimit    = 50
	DefaultDebounceWindow   = 2 * time.Second
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultActorTTL         = 24 * time.Hour
	DefaultOpsAddr          = ":9090"
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *WardenConfig) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.StreamURL == "" {
		c.API.StreamURL = DefaultStreamURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Stream defaults
	if c.Stream.IdleTimeout == 0 {
		c.Stream.IdleTimeout = DefaultIdleTimeout
	}
	if c.Stream.HandshakeTimeout == 0 {
		c.Stream.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Stream.Cooldown == 0 {
		c.Stream.Cooldown = DefaultCooldown
	}
	if c.Stream.StatsInterval == 0 {
		c.Stream.StatsInterval = DefaultStatsInterval
	}

	// Sampler defaults
	if c.Sampler.Interval == 0 {
		c.Sampler.Interval = DefaultSampleInterval
	}
	if c.Sampler.BatchSize == 0 {
		c.Sampler.BatchSize = DefaultSampleBatchSize
	}
	if c.Sampler.OpenRate == 0 {
		c.Sampler.OpenRate = DefaultOpenRate
	}
	if c.Sampler.OpenBurst == 0 {
		c.Sampler.OpenBurst = DefaultOpenBurst
	}

	// Policy defaults
	if c.Policy.MinAccountAge == 0 {
		c.Policy.MinAccountAge = DefaultMinAccountAge
	}
	if c.Policy.MinFollowers == 0 {
		c.Policy.MinFollowers = DefaultMinFollowers
	}
	if c.Policy.BackfillLimit == 0 {
		c.Policy.BackfillLimit = DefaultBackfillLimit
	}

	// Debounce defaults
	if c.Debounce.Window == 0 {
		c.Debounce.Window = DefaultDebounceWindow
	}

	// Database defaults
	applyDBDefaults(&c.Database)

	// Redis defaults (cache stays disabled when addr is empty)
	if c.Redis.ActorTTL == 0 {
		c.Redis.ActorTTL = DefaultActorTTL
	}

	// Ops defaults
	if c.Ops.Addr == "" {
		c.Ops.Addr = DefaultOpsAddr
	}
	if c.Ops.MetricsPath == "" {
		c.Ops.MetricsPath = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
