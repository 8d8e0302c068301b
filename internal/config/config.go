package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SerperConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type GoogleAdsConfig struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RefreshToken   string `yaml:"refresh_token"`
	DeveloperToken string `yaml:"developer_token"`
	CustomerID     string `yaml:"customer_id"`
}

type TrackerConfig struct {
	DelayMS        int `yaml:"delay_ms"`
	RefreshDelayMS int `yaml:"refresh_delay_ms"`
	MaxKeywords    int `yaml:"max_keywords"`
}

type AuditConfig struct {
	TimeoutSec  int   `yaml:"timeout_sec"`
	MaxBodySize int64 `yaml:"max_body_size"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // memory or sqlite
	Path   string `yaml:"path"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Serper    SerperConfig    `yaml:"serper"`
	GoogleAds GoogleAdsConfig `yaml:"google_ads"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Audit     AuditConfig     `yaml:"audit"`
	Storage   StorageConfig   `yaml:"storage"`
}

// Load reads YAML config from path (skipped when empty), applies env-var
// overrides for secrets, then fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Serper.APIKey, "SERPER_API_KEY")
	setFromEnv(&c.GoogleAds.ClientID, "GOOGLE_ADS_CLIENT_ID")
	setFromEnv(&c.GoogleAds.ClientSecret, "GOOGLE_ADS_CLIENT_SECRET")
	setFromEnv(&c.GoogleAds.RefreshToken, "GOOGLE_ADS_REFRESH_TOKEN")
	setFromEnv(&c.GoogleAds.DeveloperToken, "GOOGLE_ADS_DEVELOPER_TOKEN")
	setFromEnv(&c.GoogleAds.CustomerID, "GOOGLE_ADS_CUSTOMER_ID")
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Tracker.DelayMS == 0 {
		c.Tracker.DelayMS = 100
	}
	if c.Tracker.RefreshDelayMS == 0 {
		c.Tracker.RefreshDelayMS = 150
	}
	if c.Tracker.MaxKeywords == 0 {
		c.Tracker.MaxKeywords = 100
	}
	if c.Audit.TimeoutSec == 0 {
		c.Audit.TimeoutSec = 15
	}
	if c.Audit.MaxBodySize == 0 {
		c.Audit.MaxBodySize = 5 * 1024 * 1024
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
}
