// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Defaults cover every tunable; a minimal config needs only instance.id, the
// api credentials, and the database section.
package config
