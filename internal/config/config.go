// Package config loads the sessionscope server configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML file,
// and SESSIONSCOPE_* environment variables. Sources are merged as generic maps
// and decoded into Config with mapstructure so durations may be written as
// "30m" in both YAML and the environment; a bare integer means seconds.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. SESSIONSCOPE_SESSION_TTL.
const EnvPrefix = "SESSIONSCOPE_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the server configuration.
type Config struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
	Session  SessionConfig `mapstructure:"session" yaml:"session"`
	Store    StoreConfig   `mapstructure:"store" yaml:"store"`
}

// SessionConfig controls session lifetime and transport.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	CookieName    string        `mapstructure:"cookie_name" yaml:"cookie_name"`
	SecureCookie  bool          `mapstructure:"secure_cookie" yaml:"secure_cookie"`
}

// StoreConfig selects the session index backend.
type StoreConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend"`
	Path    string      `mapstructure:"path" yaml:"path"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
	Lock     bool   `mapstructure:"lock" yaml:"lock"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Session: SessionConfig{
			TTL:           domain.DefaultSessionTTL,
			SweepInterval: domain.DefaultSweepInterval,
			CookieName:    domain.DefaultCookieName,
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "sessionscope:session:",
			},
		},
	}
}

// Load reads path (optional; "" or a missing file means defaults only) and
// applies environment overrides from environ (os.Environ() format).
func Load(path string, environ []string) (Config, error) {
	cfg := Default()

	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		setPath(raw, envPath(strings.TrimPrefix(name, EnvPrefix)), value)
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session ttl must not be negative")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie_name must not be empty")
	}
	return nil
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationSeconds,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// durationSeconds reads bare integers as seconds rather than nanoseconds,
// whether they come from YAML (int) or the environment (string).
func durationSeconds(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return time.Duration(n) * time.Second, nil
		}
	}
	return data, nil
}

// knownSections are the nested keys env names may address.
var knownSections = map[string]bool{"session": true, "store": true, "redis": true}

// envPath maps SESSION_TTL to [session ttl] and STORE_REDIS_ADDR to
// [store redis addr]; unknown leading segments stay part of the leaf name.
func envPath(name string) []string {
	parts := strings.Split(strings.ToLower(name), "_")
	var path []string
	for len(parts) > 1 && knownSections[parts[0]] {
		path = append(path, parts[0])
		parts = parts[1:]
	}
	return append(path, strings.Join(parts, "_"))
}

func setPath(m map[string]any, path []string, value string) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}
