package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/porter/stemmer"
)

// Environment variables that override the file.
const (
	EnvAddress   = "PORTER_ADDR"
	EnvLanguage  = "PORTER_LANGUAGE"
	EnvLowercase = "PORTER_LOWERCASE"
	EnvCacheSize = "PORTER_CACHE_SIZE"
	EnvLogLevel  = "PORTER_LOG_LEVEL"
	EnvLogFile   = "PORTER_LOG_FILE"
	EnvJWTSecret = "PORTER_JWT_SECRET"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Server  Server         `yaml:"server"`
	Stemmer stemmer.Config `yaml:"stemmer"`
	Cache   Cache          `yaml:"cache"`
	Batch   Batch          `yaml:"batch"`
	Log     Log            `yaml:"log"`
	Auth    Auth           `yaml:"auth"`
}

type Server struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	BodyLimit    int           `yaml:"body_limit"`
	RateLimit    RateLimit     `yaml:"rate_limit"`
}

// RateLimit caps requests per client IP; Max 0 disables it.
type RateLimit struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// Cache sizes the stem LRU; 0 disables it.
type Cache struct {
	Size int `yaml:"size"`
}

type Batch struct {
	Workers  int `yaml:"workers"`
	MaxWords int `yaml:"max_words"`
}

type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Auth enables bearer JWT checks on the API when JWTSecret is set.
type Auth struct {
	JWTSecret string `yaml:"jwt_secret"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			BodyLimit:    1 << 20,
			RateLimit:    RateLimit{Max: 0, Window: time.Minute},
		},
		Stemmer: stemmer.DefaultConfig(),
		Cache:   Cache{Size: 10000},
		Batch:   Batch{Workers: 0, MaxWords: 10000},
		Log: Log{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv loads .env style files into the process environment. Missing files
// are ignored and variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddress); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := lookup(EnvLanguage); ok && v != "" {
		c.Stemmer.Language = v
	}
	if v, ok := lookup(EnvLowercase); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvLowercase, v, err)
		}
		c.Stemmer.LowercaseFold = b
	}
	if v, ok := lookup(EnvCacheSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvCacheSize, v, err)
		}
		c.Cache.Size = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := lookup(EnvJWTSecret); ok {
		c.Auth.JWTSecret = v
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("%w: server.address is empty", ErrInvalid)
	}
	if c.Server.BodyLimit < 0 {
		return fmt.Errorf("%w: server.body_limit is negative", ErrInvalid)
	}
	if c.Server.RateLimit.Max < 0 {
		return fmt.Errorf("%w: server.rate_limit.max is negative", ErrInvalid)
	}
	if c.Server.RateLimit.Max > 0 && c.Server.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: server.rate_limit.window must be positive", ErrInvalid)
	}
	if err := c.Stemmer.Validate(); err != nil {
		return fmt.Errorf("%w: stemmer: %w", ErrInvalid, err)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("%w: cache.size is negative", ErrInvalid)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch.workers is negative", ErrInvalid)
	}
	if c.Batch.MaxWords <= 0 {
		return fmt.Errorf("%w: batch.max_words must be positive", ErrInvalid)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// LoadJSON reads a JSON file into a new T.
func LoadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg T
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
