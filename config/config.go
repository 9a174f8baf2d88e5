// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package config loads the runtime configuration from a file and LOCKSTAKE_*
// environment variables and bootstraps a stake runtime from it.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/internal/validation"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/log"
)

// EnvPrefix prefixes the environment variables overriding the configuration.
// Nested keys use underscores: LOCKSTAKE_LEDGER_BACKEND.
const EnvPrefix = "LOCKSTAKE"

// Ledger backends
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// Config is the runtime configuration
type Config struct {
	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `mapstructure:"log_level"`
	// Ledger selects where identities are allocated
	Ledger LedgerConfig `mapstructure:"ledger"`
	// Audit selects the sinks receiving the audit records
	Audit AuditConfig `mapstructure:"audit"`
	// Metrics toggles the OpenTelemetry instruments
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LedgerConfig configures the identity ledger
type LedgerConfig struct {
	// Backend is one of memory, bolt, redis. Defaults to memory.
	Backend string `mapstructure:"backend"`
	// Path is the bbolt file used by the bolt backend
	Path string `mapstructure:"path"`
	// Redis configures the redis backend
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis ledger backend
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// AuditConfig configures the audit sinks
type AuditConfig struct {
	// Stream enables the in-process stream sink
	Stream bool `mapstructure:"stream"`
	// Journal enables the badger journal
	Journal bool `mapstructure:"journal"`
	// JournalDir is the journal directory. Empty keeps the journal in memory.
	JournalDir string `mapstructure:"journal_dir"`
	// NATS configures the NATS sink
	NATS NATSConfig `mapstructure:"nats"`
}

// NATSConfig configures the NATS sink
type NATSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Server     string `mapstructure:"server"`
	Subject    string `mapstructure:"subject"`
	ClientName string `mapstructure:"client_name"`
}

// MetricsConfig configures the instruments
type MetricsConfig struct {
	// Enabled records the stake counters on the global meter provider
	Enabled bool `mapstructure:"enabled"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		LogLevel: log.InfoLevel.String(),
		Ledger: LedgerConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				KeyPrefix: "lockstake",
			},
		},
		Audit: AuditConfig{
			Stream: true,
			NATS: NATSConfig{
				Subject:    "lockstake.audit",
				ClientName: "lockstake",
			},
		},
	}
}

// Load reads the configuration file at path, when given, and applies the
// LOCKSTAKE_* environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks whether the configuration is usable
func (c *Config) Validate() error {
	_, levelErr := log.ParseLevel(c.LogLevel)

	chain := validation.New(validation.AllErrors()).
		AddAssertion(levelErr == nil, fmt.Sprintf("the [log_level] %q is not a known level", c.LogLevel))

	switch c.Ledger.Backend {
	case BackendMemory:
	case BackendBolt:
		chain.AddValidator(validation.NewEmptyStringValidator("ledger.path", c.Ledger.Path))
	case BackendRedis:
		chain.AddValidator(validation.NewTCPAddressValidator(c.Ledger.Redis.Addr)).
			AddValidator(validation.NewEmptyStringValidator("ledger.redis.key_prefix", c.Ledger.Redis.KeyPrefix))
	default:
		chain.AddAssertion(false, fmt.Sprintf("the [ledger.backend] %q is not one of memory, bolt, redis", c.Ledger.Backend))
	}

	if c.Audit.NATS.Enabled {
		chain.AddValidator(c.natsConfig())
	}
	return chain.Validate()
}

func (c *Config) natsConfig() audit.NATSConfig {
	return audit.NATSConfig{
		NatsServer: c.Audit.NATS.Server,
		Subject:    c.Audit.NATS.Subject,
		ClientName: c.Audit.NATS.ClientName,
	}
}

func (c *Config) redisConfig() *ledger.RedisConfig {
	return &ledger.RedisConfig{
		Addr:      c.Ledger.Redis.Addr,
		Password:  c.Ledger.Redis.Password,
		DB:        c.Ledger.Redis.DB,
		KeyPrefix: c.Ledger.Redis.KeyPrefix,
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("ledger.backend", cfg.Ledger.Backend)
	v.SetDefault("ledger.path", cfg.Ledger.Path)
	v.SetDefault("ledger.redis.addr", cfg.Ledger.Redis.Addr)
	v.SetDefault("ledger.redis.password", cfg.Ledger.Redis.Password)
	v.SetDefault("ledger.redis.db", cfg.Ledger.Redis.DB)
	v.SetDefault("ledger.redis.key_prefix", cfg.Ledger.Redis.KeyPrefix)
	v.SetDefault("audit.stream", cfg.Audit.Stream)
	v.SetDefault("audit.journal", cfg.Audit.Journal)
	v.SetDefault("audit.journal_dir", cfg.Audit.JournalDir)
	v.SetDefault("audit.nats.enabled", cfg.Audit.NATS.Enabled)
	v.SetDefault("audit.nats.server", cfg.Audit.NATS.Server)
	v.SetDefault("audit.nats.subject", cfg.Audit.NATS.Subject)
	v.SetDefault("audit.nats.client_name", cfg.Audit.NATS.ClientName)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
}
