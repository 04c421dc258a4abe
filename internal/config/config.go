package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Site struct {
		ContentDir string `yaml:"content_dir"`
		StaticDir  string `yaml:"static_dir"`
		Template   string `yaml:"template"` // HTML template with {{ Title }} and {{ Content }}
		PublicDir  string `yaml:"public_dir"`
	} `yaml:"site"`
	Build struct {
		Workers         int    `yaml:"workers"`
		ContinueOnError bool   `yaml:"continue_on_error"`
		CacheDB         string `yaml:"cache_db"` // empty disables the page cache
		Clean           bool   `yaml:"clean"`    // wipe public dir before copying static files
	} `yaml:"build"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.Site.ContentDir = "content"
	cfg.Site.StaticDir = "static"
	cfg.Site.Template = "static/template.html"
	cfg.Site.PublicDir = "public"
	cfg.Build.Workers = 4
	cfg.Build.ContinueOnError = true
	cfg.Build.CacheDB = ".mdsite/cache.db"
	cfg.Build.Clean = true
	cfg.Log.Level = "info"
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config on top of the defaults
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if dir := os.Getenv("MDSITE_CONTENT_DIR"); dir != "" {
		cfg.Site.ContentDir = dir
	}
	if dir := os.Getenv("MDSITE_PUBLIC_DIR"); dir != "" {
		cfg.Site.PublicDir = dir
	}
	if tpl := os.Getenv("MDSITE_TEMPLATE"); tpl != "" {
		cfg.Site.Template = tpl
	}
	if w := os.Getenv("MDSITE_WORKERS"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, fmt.Errorf("MDSITE_WORKERS: %w", err)
		}
		cfg.Build.Workers = n
	}
	if level := os.Getenv("MDSITE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a build.
func (c *Config) Validate() error {
	if c.Site.ContentDir == "" {
		return errors.New("site.content_dir must not be empty")
	}
	if c.Site.PublicDir == "" {
		return errors.New("site.public_dir must not be empty")
	}
	if c.Site.Template == "" {
		return errors.New("site.template must not be empty")
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1, got %d", c.Build.Workers)
	}
	switch c.Log.Level {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, error; got %q", c.Log.Level)
	}
	return nil
}
