package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store    StoreConfig
	Proxy    ProxyConfig
	Archive  ArchiveConfig
	LogLevel string
	Sites    map[string]*SiteConfig
}

type StoreConfig struct {
	Backend      string // csv, sqlite, postgres
	DatasetPath  string
	MetadataPath string
	SQLitePath   string
	PostgresURL  string
}

type ProxyConfig struct {
	URL string
}

type ArchiveConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// SiteConfig describes one listing source. Selector values are data, not
// code: when a site renames its markup classes, its YAML file changes, not
// the extractor.
type SiteConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Handler     string            `yaml:"handler"`
	BaseURL     string            `yaml:"base_url"`
	LinkBase    string            `yaml:"link_base"` // prepended to relative card links
	PagePattern string            `yaml:"page_pattern"` // appended to base_url for page >= 2, e.g. "page-%d/"
	MaxPages    int               `yaml:"max_pages"`
	RateLimitMS int               `yaml:"rate_limit_ms"`
	OnPageError string            `yaml:"on_page_error"` // stop (default) or skip
	Selectors   map[string]string `yaml:"selectors"`
}

// PageURL returns the fetch URL for a 1-based page number. Path-style
// patterns ("page-%d/") get a slash-terminated base; query-string patterns
// ("&page=%d") are appended as-is.
func (s *SiteConfig) PageURL(page int) string {
	if page <= 1 {
		return s.BaseURL
	}
	suffix := fmt.Sprintf(s.PagePattern, page)
	base := s.BaseURL
	if suffix != "" && suffix[0] != '&' && suffix[0] != '?' {
		if base != "" && base[len(base)-1] != '/' {
			base += "/"
		}
	}
	return base + suffix
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store: StoreConfig{
			Backend:      getEnv("STORE_BACKEND", "csv"),
			DatasetPath:  getEnv("DATASET_PATH", "data/listings.csv"),
			MetadataPath: getEnv("METADATA_PATH", "data/last_run.json"),
			SQLitePath:   getEnv("SQLITE_PATH", "data/listings.db"),
			PostgresURL:  os.Getenv("DATABASE_URL"),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Archive: ArchiveConfig{
			Enabled:         os.Getenv("ARCHIVE_ENABLED") == "true",
			Bucket:          os.Getenv("ARCHIVE_S3_BUCKET"),
			Region:          getEnv("ARCHIVE_S3_REGION", "eu-central-1"),
			Endpoint:        os.Getenv("ARCHIVE_S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARCHIVE_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_S3_SECRET_ACCESS_KEY"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Sites:    make(map[string]*SiteConfig),
	}

	if err := cfg.loadSiteConfigs(getEnv("SITES_DIR", "config/sites")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSiteConfigs(configDir string) error {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if site.ID == "" {
			return fmt.Errorf("site config %s has no id", path)
		}
		if site.MaxPages <= 0 {
			site.MaxPages = 20
		}
		if site.RateLimitMS <= 0 {
			site.RateLimitMS = 1000
		}
		if site.OnPageError == "" {
			site.OnPageError = "stop"
		}

		c.Sites[site.ID] = &site
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
