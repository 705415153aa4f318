// Package config provides Viper-based configuration loading for the
// snakebattle session coordinator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the websocket/HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the maximum time to wait for a frame from a client
	// before the connection is considered dead.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-frame write timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PingInterval is how often keepalive pings are sent. Must be shorter
	// than ReadTimeout or idle connections get reaped between pings.
	PingInterval time.Duration `mapstructure:"ping_interval"`
	// EventBuffer is the per-connection outbound event queue size.
	EventBuffer int `mapstructure:"event_buffer"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds the match coordination parameters.
type GameConfig struct {
	// RoomCodeLength is the number of characters in a room code.
	RoomCodeLength int `mapstructure:"room_code_length"`
	// RoomCapacity is the maximum number of players per room.
	RoomCapacity int `mapstructure:"room_capacity"`
	// MatchDurationSeconds is the match length announced in game_started.
	MatchDurationSeconds int `mapstructure:"match_duration_seconds"`
	// FoodPoints is the score awarded when game_food_eaten omits points.
	FoodPoints int `mapstructure:"food_points"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if s.PingInterval <= 0 {
		errs = append(errs, "server.ping_interval must be positive")
	} else if s.ReadTimeout > 0 && s.PingInterval >= s.ReadTimeout {
		errs = append(errs, "server.ping_interval must be shorter than server.read_timeout")
	}
	if s.EventBuffer < 1 {
		errs = append(errs, fmt.Sprintf("server.event_buffer must be >= 1, got %d", s.EventBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.RoomCodeLength < 4 || g.RoomCodeLength > 12 {
		errs = append(errs, fmt.Sprintf("game.room_code_length must be 4-12, got %d", g.RoomCodeLength))
	}
	if g.RoomCapacity < 2 {
		errs = append(errs, fmt.Sprintf("game.room_capacity must be >= 2, got %d", g.RoomCapacity))
	}
	if g.MatchDurationSeconds < 1 {
		errs = append(errs, fmt.Sprintf("game.match_duration_seconds must be >= 1, got %d", g.MatchDurationSeconds))
	}
	if g.FoodPoints < 1 {
		errs = append(errs, fmt.Sprintf("game.food_points must be >= 1, got %d", g.FoodPoints))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SNAKE_ prefix
	v.SetEnvPrefix("SNAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Unmarshalling pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.ping_interval", "30s")
	v.SetDefault("server.event_buffer", 64)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("game.room_code_length", 6)
	v.SetDefault("game.room_capacity", 2)
	v.SetDefault("game.match_duration_seconds", 120)
	v.SetDefault("game.food_points", 10)
}
