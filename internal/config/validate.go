package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *WardenConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.StreamURL == "" {
		return errors.New("api.stream_url is required")
	}
	if c.API.AppKey == "" {
		return errors.New("api.app_key is required")
	}
	if c.API.AppSecretPath == "" {
		return errors.New("api.app_secret_path is required")
	}

	if c.Stream.IdleTimeout <= 0 {
		return errors.New("stream.idle_timeout must be positive")
	}
	if c.Stream.Cooldown <= 0 {
		return errors.New("stream.cooldown must be positive")
	}

	if c.Sampler.BatchSize < 1 {
		return errors.New("sampler.batch_size must be >= 1")
	}
	if c.Sampler.OpenRate <= 0 {
		return errors.New("sampler.open_rate must be positive")
	}

	if c.Policy.MinFollowers < 0 {
		return errors.New("policy.min_followers must be >= 0")
	}
	if c.Policy.BackfillLimit < 1 {
		return errors.New("policy.backfill_limit must be >= 1")
	}

	if c.Debounce.Window <= 0 {
		return errors.New("debounce.window must be positive")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
