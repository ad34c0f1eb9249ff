package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/mclaude-statusline/internal/util"
)

const (
	DefaultSystemOverhead int64   = 21400
	DefaultCharsPerToken  float64 = 3.31
)

// DefaultTimeout bounds one status line render.
const DefaultTimeout = 2 * time.Second

const (
	logFileName = "statusline.log"
	dbFileName  = "history.db"
	catalogFile = "model_prices_and_context_window.json"
)

// env mirrors the raw environment. Numeric and boolean values are kept as
// strings so a bad value degrades to its default instead of failing the load.
type env struct {
	SystemOverhead string `envconfig:"CLAUDE_CODE_SYSTEM_OVERHEAD"`
	CharsPerToken  string `envconfig:"CLAUDE_CODE_CHARS_PER_TOKEN"`
	Debug          string `envconfig:"CLAUDE_CODE_STATUSLINE_DEBUG"`
	LogFile        string `envconfig:"STATUSLINE_LOG_FILE"`
	Timeout        string `envconfig:"STATUSLINE_TIMEOUT"`
	History        string `envconfig:"STATUSLINE_HISTORY"`
	DBPath         string `envconfig:"STATUSLINE_DB_PATH"`
	ModelCatalog   string `envconfig:"STATUSLINE_MODEL_CATALOG"`
}

// Config holds validated status line settings.
type Config struct {
	SystemOverhead int64
	CharsPerToken  float64
	Debug          bool
	LogFile        string
	Timeout        time.Duration
	History        bool
	DBPath         string
	ModelCatalog   string

	// Warnings lists every value that was rejected in favor of its default.
	Warnings []string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var raw env
	if err := envconfig.Process("", &raw); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{
		LogFile:      raw.LogFile,
		DBPath:       raw.DBPath,
		ModelCatalog: raw.ModelCatalog,
	}
	cfg.SystemOverhead = cfg.nonNegativeInt("CLAUDE_CODE_SYSTEM_OVERHEAD", raw.SystemOverhead, DefaultSystemOverhead)
	cfg.CharsPerToken = cfg.positiveFloat("CLAUDE_CODE_CHARS_PER_TOKEN", raw.CharsPerToken, DefaultCharsPerToken)
	cfg.Debug = cfg.flag("CLAUDE_CODE_STATUSLINE_DEBUG", raw.Debug)
	cfg.History = cfg.flag("STATUSLINE_HISTORY", raw.History)
	cfg.Timeout = cfg.duration("STATUSLINE_TIMEOUT", raw.Timeout, DefaultTimeout)

	if err := cfg.fillPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillPaths() error {
	if c.LogFile == "" {
		dir, err := util.GetXDGStateDir()
		if err != nil {
			return err
		}
		c.LogFile = filepath.Join(dir, logFileName)
	}
	if c.DBPath == "" {
		dir, err := util.GetXDGDataDir()
		if err != nil {
			return err
		}
		c.DBPath = filepath.Join(dir, dbFileName)
	}
	if c.ModelCatalog == "" {
		dir, err := util.GetXDGCacheDir()
		if err != nil {
			return err
		}
		c.ModelCatalog = filepath.Join(dir, catalogFile)
	}
	return nil
}

func (c *Config) warn(key, value, fallback string) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is invalid, using %s", key, value, fallback))
}

func (c *Config) nonNegativeInt(key, value string, def int64) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		c.warn(key, value, strconv.FormatInt(def, 10))
		return def
	}
	return n
}

func (c *Config) positiveFloat(key, value string, def float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		c.warn(key, value, strconv.FormatFloat(def, 'f', -1, 64))
		return def
	}
	return f
}

func (c *Config) flag(key, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		c.warn(key, value, "false")
		return false
	}
	return b
}

func (c *Config) duration(key, value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		c.warn(key, value, def.String())
		return def
	}
	return d
}
