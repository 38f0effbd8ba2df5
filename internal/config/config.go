package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	Port              int           `mapstructure:"port" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"gte=0"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path" validate:"required"`
	StaticDir    string `mapstructure:"static_dir" yaml:"static_dir,omitempty"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// AdminToken is the shared secret for destructive room operations.
	// Empty disables them.
	AdminToken string `mapstructure:"admin_token" yaml:"admin_token,omitempty"`

	Rooms       []string  `mapstructure:"rooms" yaml:"rooms" validate:"required,min=1,dive,required,max=64"`
	DefaultRoom string    `mapstructure:"default_room" yaml:"default_room" validate:"required"`
	Cooldowns   Cooldowns `mapstructure:"cooldowns" yaml:"cooldowns"`
}

// Cooldowns are the minimum intervals between two actions of the same kind
// from one session.
type Cooldowns struct {
	Post    time.Duration `mapstructure:"post" yaml:"post" validate:"gte=0"`
	SetName time.Duration `mapstructure:"set_name" yaml:"set_name" validate:"gte=0"`
	Clear   time.Duration `mapstructure:"clear" yaml:"clear" validate:"gte=0"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		MaxMessageBytes:   64 << 10,
		DatabasePath:      "chat.db",
		LogLevel:          "info",
		Rooms:             []string{"general", "support", "random"},
		DefaultRoom:       "general",
		Cooldowns: Cooldowns{
			Post:    300 * time.Millisecond,
			SetName: time.Second,
			Clear:   5 * time.Second,
		},
	}
}

// ListenAddr returns the address the HTTP server binds to. A non-zero Port
// overrides the port part of Addr and keeps its host.
func (c *Config) ListenAddr() string {
	if c.Port == 0 {
		return c.Addr
	}
	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, room := range c.Rooms {
		if room == c.DefaultRoom {
			return nil
		}
	}
	return fmt.Errorf("invalid config: default room %q is not in rooms", c.DefaultRoom)
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.StaticDir != "" {
		c.StaticDir = other.StaticDir
	}
	if other.AdminToken != "" {
		c.AdminToken = other.AdminToken
	}
}
