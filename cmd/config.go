package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"

	"vdv736/domain"
)

const (
	RolePublisher  = "publisher"
	RoleSubscriber = "subscriber"

	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	ModeSubscribe = "subscribe"
	ModeRequest   = "request"
)

// Config is read from VDV736_* environment variables.
type Config struct {
	Role           string        `envconfig:"ROLE" required:"true"`
	Ref            string        `envconfig:"REF" required:"true"`
	Participants   string        `envconfig:"PARTICIPANTS" default:"participants.yaml"`
	ListenAddr     string        `envconfig:"LISTEN_ADDR"` // defaults to the port of REF in the participant directory
	Storage        string        `envconfig:"STORAGE" default:"sqlite"`
	SQLitePath     string        `envconfig:"SQLITE_PATH" default:"data/vdv736.db"`
	RedisURL       string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	SituationsDir  string        `envconfig:"SITUATIONS_DIR"`
	PublisherRefs  []string      `envconfig:"PUBLISHER_REFS"`
	SubscriberMode string        `envconfig:"SUBSCRIBER_MODE" default:"subscribe"`
	StatusInterval time.Duration `envconfig:"STATUS_INTERVAL" default:"1m"`
	ShutdownGrace  time.Duration `envconfig:"SHUTDOWN_GRACE" default:"5s"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"5s"`
}

// LoadConfig loads configuration from environment variables.
// VDV736_ROLE and VDV736_REF are required.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("VDV736", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the combination of role, storage and timing settings.
func (c *Config) Validate() error {
	switch c.Role {
	case RolePublisher, RoleSubscriber:
	default:
		return fmt.Errorf("VDV736_ROLE must be %q or %q, got %q", RolePublisher, RoleSubscriber, c.Role)
	}
	if c.Ref == "" {
		return fmt.Errorf("VDV736_REF is required")
	}

	switch c.Storage {
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("VDV736_SQLITE_PATH is required for sqlite storage")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("VDV736_REDIS_URL is required for redis storage")
		}
	default:
		return fmt.Errorf("VDV736_STORAGE must be %q or %q, got %q", StorageSQLite, StorageRedis, c.Storage)
	}

	if c.Role == RoleSubscriber {
		switch c.SubscriberMode {
		case ModeSubscribe, ModeRequest:
		default:
			return fmt.Errorf("VDV736_SUBSCRIBER_MODE must be %q or %q, got %q", ModeSubscribe, ModeRequest, c.SubscriberMode)
		}
		if c.StatusInterval <= 0 {
			return fmt.Errorf("VDV736_STATUS_INTERVAL must be positive")
		}
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("VDV736_HTTP_TIMEOUT must be positive")
	}
	return nil
}

// listenAddr is ListenAddr, or all interfaces on the port self is published at.
func (c *Config) listenAddr(self domain.Participant) string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return net.JoinHostPort("", strconv.Itoa(self.Port))
}
