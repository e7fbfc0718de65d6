package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Retention  RetentionConfig  `yaml:"retention"`
	Agent      AgentConfig      `yaml:"agent"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the push fan-out worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// RetentionConfig controls how long delivered notifications are kept and
// how often the sweeper runs.
type RetentionConfig struct {
	WindowHours          int           `yaml:"window_hours"`
	SweepIntervalMinutes int           `yaml:"sweep_interval_minutes"`
	Window               time.Duration `yaml:"-"`
	SweepInterval        time.Duration `yaml:"-"`
}

// AgentConfig holds the poll cadences for the delivery agents. The two
// cadences are independent; no correctness property depends on their
// values or relative phase.
type AgentConfig struct {
	DispatcherIntervalSeconds int           `yaml:"dispatcher_interval_seconds"`
	ReconcilerIntervalSeconds int           `yaml:"reconciler_interval_seconds"`
	DispatcherInterval        time.Duration `yaml:"-"`
	ReconcilerInterval        time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Retention.WindowHours <= 0 {
		cfg.Retention.WindowHours = 24
	}
	if cfg.Retention.SweepIntervalMinutes <= 0 {
		cfg.Retention.SweepIntervalMinutes = 60
	}
	cfg.Retention.Window = time.Duration(cfg.Retention.WindowHours) * time.Hour
	cfg.Retention.SweepInterval = time.Duration(cfg.Retention.SweepIntervalMinutes) * time.Minute

	if cfg.Agent.DispatcherIntervalSeconds <= 0 {
		cfg.Agent.DispatcherIntervalSeconds = 30
	}
	if cfg.Agent.ReconcilerIntervalSeconds <= 0 {
		cfg.Agent.ReconcilerIntervalSeconds = 5
	}
	cfg.Agent.DispatcherInterval = time.Duration(cfg.Agent.DispatcherIntervalSeconds) * time.Second
	cfg.Agent.ReconcilerInterval = time.Duration(cfg.Agent.ReconcilerIntervalSeconds) * time.Second

	return &cfg, nil
}
