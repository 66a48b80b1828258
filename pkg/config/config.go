// Package config loads the masonry configuration file.
//
// The file is TOML by default; .yaml/.yml and .json files are read as YAML
// and JSON. Every key is optional and falls back to [Default]:
//
//	[gallery]
//	column_width = 240
//	best_fit = true
//	animate = true
//
//	[box]
//	padding = 4
//	border = 1
//	margin = 5
//
//	[server]
//	addr = ":8080"
//	cors_origins = ["https://example.com"]
//
//	[cache]
//	backend = "redis"      # file | redis | none
//	redis_addr = "localhost:6379"
//
//	[log]
//	level = "debug"
//
// Command-line flags override values from the file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
)

const appName = "masonry"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Gallery gallery.Options `json:"gallery" yaml:"gallery" toml:"gallery"`
	Box     layout.BoxModel `json:"box" yaml:"box" toml:"box"`
	Server  Server          `json:"server" yaml:"server" toml:"server"`
	Cache   Cache           `json:"cache" yaml:"cache" toml:"cache"`
	Log     Log             `json:"log" yaml:"log" toml:"log"`
}

// Server configures `masonry serve`.
type Server struct {
	Addr         string   `json:"addr" yaml:"addr" toml:"addr"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend       string `json:"backend" yaml:"backend" toml:"backend"`
	Dir           string `json:"dir" yaml:"dir" toml:"dir"` // empty means the XDG cache dir
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" toml:"redis_db"`
	Prefix        string `json:"prefix" yaml:"prefix" toml:"prefix"`
}

// Log configures the logger.
type Log struct {
	Level string `json:"level" yaml:"level" toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Gallery: gallery.DefaultOptions(),
		Server: Server{
			Addr:         ":8080",
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 1 << 20,
		},
		Cache: Cache{
			Backend: BackendFile,
			Prefix:  appName + ":",
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/masonry/config.toml, falling back
// to ~/.config/masonry/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults and validates the result.
// A missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decode(path, data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDefault loads the file at DefaultPath. A missing file yields the
// defaults.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err != nil && err == io.EOF {
			err = nil // empty file
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	default:
		var md toml.MetaData
		md, err = toml.Decode(string(data), cfg)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return errors.New(errors.ErrCodeInvalidConfiguration,
					"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		}
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "config %s", path)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if err := errors.ValidateDimension("gallery.column_width", c.Gallery.ColumnWidth); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "config")
	}
	if err := errors.ValidateBoxModel(c.Box.Padding, c.Box.Border, c.Box.Margin); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"cache.backend must be one of file, redis, none (got %q)", c.Cache.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "log.level")
	}
	return nil
}

// LogLevel returns the configured level. Validate has already rejected
// unknown names; they map to info here.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
