package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the file-backed configuration of the riskmcp binary.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Session       SessionConfig       `toml:"session"`
	Collaborators CollaboratorsConfig `toml:"collaborators"`
	Cache         CacheConfig         `toml:"cache"`
	Logging       LoggingConfig       `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	SSEPath      string `toml:"sse_path"`
	MessagesPath string `toml:"messages_path"`
}

// SessionConfig contains per-session limits.
type SessionConfig struct {
	QueueSize        int      `toml:"queue_size"`
	OutboundBuffer   int      `toml:"outbound_buffer"`
	KeepAlive        Duration `toml:"keep_alive"`
	HandshakeTimeout Duration `toml:"handshake_timeout"`
	MaxMessageBytes  int64    `toml:"max_message_bytes"`
}

// CollaboratorsConfig locates the external services backing the built-in tools.
// An empty AnalyzerURL selects the local deterministic analyzer.
type CollaboratorsConfig struct {
	EmbedderURL string   `toml:"embedder_url"`
	AnalyzerURL string   `toml:"analyzer_url"`
	Timeout     Duration `toml:"timeout"`
}

// CacheConfig sizes the risk report cache.
type CacheConfig struct {
	Size int      `toml:"size"`
	TTL  Duration `toml:"ttl"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration that reads TOML strings such as "15s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}

	*d = Duration(v)

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8000,
			SSEPath:      DefaultSSEPath,
			MessagesPath: DefaultMessagesPath,
		},
		Session: SessionConfig{
			QueueSize:        DefaultQueueSize,
			OutboundBuffer:   DefaultOutboundBuffer,
			KeepAlive:        Duration(DefaultKeepAlive),
			HandshakeTimeout: Duration(DefaultHandshakeTimeout),
			MaxMessageBytes:  DefaultMaxMessageBytes,
		},
		Collaborators: CollaboratorsConfig{
			EmbedderURL: "http://localhost:8001",
			Timeout:     Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  Duration(time.Hour),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFiles loads configuration with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies RISKMCP_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("RISKMCP_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if port := os.Getenv("RISKMCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if u := os.Getenv("RISKMCP_EMBEDDER_URL"); u != "" {
		cfg.Collaborators.EmbedderURL = u
	}

	if u := os.Getenv("RISKMCP_ANALYZER_URL"); u != "" {
		cfg.Collaborators.AnalyzerURL = u
	}

	if v := os.Getenv("RISKMCP_HANDSHAKE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.HandshakeTimeout = Duration(d)
		}
	}

	if level := os.Getenv("RISKMCP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if format := os.Getenv("RISKMCP_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(cfg *Config, host string, port int, logLevel string) {
	if host != "" {
		cfg.Server.Host = host
	}

	if port > 0 {
		cfg.Server.Port = port
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Options converts the file configuration into runtime Options.
func (c *Config) Options() *Options {
	opts := DefaultOptions()
	opts.SSEPath = c.Server.SSEPath
	opts.MessagesPath = c.Server.MessagesPath
	opts.QueueSize = c.Session.QueueSize
	opts.OutboundBuffer = c.Session.OutboundBuffer
	opts.KeepAlive = time.Duration(c.Session.KeepAlive)
	opts.HandshakeTimeout = time.Duration(c.Session.HandshakeTimeout)
	opts.MaxMessageBytes = c.Session.MaxMessageBytes
	opts.Normalize()

	return opts
}
