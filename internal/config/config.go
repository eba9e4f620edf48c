package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		// Dir is the catalog project that holds the authored records.
		Dir string `yaml:"dir"`
		// WorkDir is the generator's working directory; catalog-files are
		// resolved under it.
		WorkDir string `yaml:"work_dir"`
	} `yaml:"project"`
	Cache struct {
		Disabled bool `yaml:"disabled"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Export struct {
		Organization string `yaml:"organization"`
		Tagline      string `yaml:"tagline"`
		BaseURL      string `yaml:"base_url"`
	} `yaml:"export"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

func Default() *Config {
	var cfg Config
	cfg.Project.Dir = "."
	cfg.Server.Addr = ":8080"
	cfg.Storage.DBPath = "eventdocs.db"
	cfg.Export.Organization = "EventCatalog"
	cfg.Log.Level = "info"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error; environment variables override both.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if dir := os.Getenv("PROJECT_DIR"); dir != "" {
		cfg.Project.Dir = dir
	}
	if v := os.Getenv("EVENTDOCS_DISABLE_CACHE"); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Disabled = disabled
		}
	}
	if addr := os.Getenv("EVENTDOCS_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if db := os.Getenv("EVENTDOCS_DB"); db != "" {
		cfg.Storage.DBPath = db
	}
	if baseURL := os.Getenv("EVENTDOCS_BASE_URL"); baseURL != "" {
		cfg.Export.BaseURL = baseURL
	}
	if level := os.Getenv("EVENTDOCS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Project.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.Project.WorkDir = wd
		}
	}

	return cfg, nil
}
