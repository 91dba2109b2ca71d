package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/plugins"
)

const (
	FileName   = ".reviewer.yml"
	MaxWorkers = 256

	envContextLines = "REVIEWER_CONTEXT_LINES"
	envWorkers      = "REVIEWER_WORKERS"
	envCacheBackend = "REVIEWER_CACHE_BACKEND"
	envRedisURL     = "REVIEWER_REDIS_URL"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

type IgnoreRule struct {
	Rule   string `yaml:"rule,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Reason string `yaml:"reason,omitempty"`
}

type CacheConfig struct {
	Backend  string        `yaml:"backend"`
	Dir      string        `yaml:"dir,omitempty"`
	RedisURL string        `yaml:"redisUrl,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

type Config struct {
	ContextLines int                `yaml:"contextLines"`
	Workers      int                `yaml:"workers"`
	TimeBudgetMs int                `yaml:"timeBudgetMs"`
	Categories   []string           `yaml:"categories,omitempty"`
	Plugins      []string           `yaml:"plugins,omitempty"`
	Ignore       []IgnoreRule       `yaml:"ignore,omitempty"`
	Thresholds   plugins.Thresholds `yaml:"thresholds"`
	Cache        CacheConfig        `yaml:"cache"`
	Extensions   []string           `yaml:"extensions"`
}

func Default() Config {
	return Config{
		ContextLines: 3,
		Workers:      0,
		TimeBudgetMs: 0,
		Thresholds:   plugins.DefaultThresholds(),
		Cache:        CacheConfig{Backend: CacheNone},
		Extensions:   []string{".py"},
	}
}

// IsZero reports whether c is the zero Config rather than one built by
// Default or Load.
func (c Config) IsZero() bool {
	return c.ContextLines == 0 && c.Workers == 0 && c.TimeBudgetMs == 0 &&
		len(c.Categories) == 0 && len(c.Plugins) == 0 && len(c.Ignore) == 0 &&
		len(c.Extensions) == 0 &&
		c.Thresholds == (plugins.Thresholds{}) && c.Cache == (CacheConfig{})
}

// Load searches startDir and its parents for .reviewer.yml, then applies
// environment overrides. It returns the path of the file used, if any.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	path := Find(startDir)
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return cfg, path, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, path, err
	}
	return cfg, path, cfg.Validate()
}

// Find returns the nearest .reviewer.yml at or above startDir, or "".
func Find(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadFile reads one config file over the defaults. Missing keys keep their
// default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envContextLines); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envContextLines, err)
		}
		c.ContextLines = n
	}
	if v := os.Getenv(envWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(envCacheBackend); v != "" {
		c.Cache.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(envRedisURL); v != "" {
		c.Cache.RedisURL = v
		if c.Cache.Backend == "" || c.Cache.Backend == CacheNone {
			c.Cache.Backend = CacheRedis
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.ContextLines < 0 {
		return fmt.Errorf("contextLines must not be negative (got %d)", c.ContextLines)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 0 and %d (got %d)", MaxWorkers, c.Workers)
	}
	if c.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must not be negative (got %d)", c.TimeBudgetMs)
	}
	for _, name := range c.Categories {
		if _, err := model.ParseCategory(name); err != nil {
			return err
		}
	}
	th := c.Thresholds
	if th.FunctionLength < 0 || th.Parameters < 0 || th.Complexity < 0 || th.Methods < 0 {
		return errors.New("thresholds must not be negative")
	}
	switch c.Cache.Backend {
	case "", CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache backend redis requires cache.redisUrl or " + envRedisURL)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// CategorySet returns the configured category allow-list, or nil for all.
func (c Config) CategorySet() map[model.Category]bool {
	if len(c.Categories) == 0 {
		return nil
	}
	out := make(map[model.Category]bool, len(c.Categories))
	for _, name := range c.Categories {
		if cat, err := model.ParseCategory(strings.TrimSpace(name)); err == nil {
			out[cat] = true
		}
	}
	return out
}

// Digest identifies the settings that change what a file's analysis yields.
// It is part of the findings cache key.
func (c Config) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "ctx=%d;th=%d,%d,%d,%d",
		c.ContextLines, c.Thresholds.FunctionLength, c.Thresholds.Parameters,
		c.Thresholds.Complexity, c.Thresholds.Methods)
	return hex.EncodeToString(h.Sum(nil))
}

// Marshal renders c as YAML, as written by "reviewer init".
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
