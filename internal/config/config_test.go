package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			ReadTimeout:  time.Minute,
			WriteTimeout: 10 * time.Second,
			PingInterval: 30 * time.Second,
			EventBuffer:  64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Game: GameConfig{
			RoomCodeLength:       6,
			RoomCapacity:         2,
			MatchDurationSeconds: 120,
			FoodPoints:           10,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Game.RoomCodeLength)
	assert.Equal(t, 2, cfg.Game.RoomCapacity)
	assert.Equal(t, 120, cfg.Game.MatchDurationSeconds)
	assert.Equal(t, 10, cfg.Game.FoodPoints)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 5001
  read_timeout: 1m
  write_timeout: 10s
  ping_interval: 20s
  event_buffer: 32
logging:
  level: debug
  format: console
game:
  room_code_length: 8
  match_duration_seconds: 90
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.EventBuffer)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Game.RoomCodeLength)
	assert.Equal(t, 90, cfg.Game.MatchDurationSeconds)
	// Unspecified keys fall back to defaults.
	assert.Equal(t, 2, cfg.Game.RoomCapacity)
	assert.Equal(t, 10, cfg.Game.FoodPoints)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateServerPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = 65536
	assert.Error(t, cfg.Validate())
}

func TestValidatePingIntervalVsReadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.PingInterval = cfg.Server.ReadTimeout
	assert.Error(t, cfg.Validate())
}

func TestValidateEventBuffer(t *testing.T) {
	cfg := validConfig()
	cfg.Server.EventBuffer = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateRoomCodeLength(t *testing.T) {
	cfg := validConfig()
	cfg.Game.RoomCodeLength = 3
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Game.RoomCodeLength = 13
	assert.Error(t, cfg.Validate())
}

func TestValidateRoomCapacity(t *testing.T) {
	cfg := validConfig()
	cfg.Game.RoomCapacity = 1
	assert.Error(t, cfg.Validate())
}

func TestValidateMatchDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Game.MatchDurationSeconds = 0
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("port %d should be valid: %v", port, err)
		}
	})
}

func TestPropertyValidCodeLengthRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(4, 12).Draw(t, "code_length")
		cfg := validConfig()
		cfg.Game.RoomCodeLength = n
		if err := cfg.Validate(); err != nil {
			t.Fatalf("code length %d should be valid: %v", n, err)
		}
	})
}
