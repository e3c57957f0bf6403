package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PostsPerPage   int           `yaml:"posts_per_page"`
	ThreadsPerPage int           `yaml:"threads_per_page"`
	MinContentLen  int           `yaml:"min_content_len"`
	MaxContentLen  int           `yaml:"max_content_len"`
	MinTitleLen    int           `yaml:"min_title_len"`
	MaxTitleLen    int           `yaml:"max_title_len"`
	WatchInterval  time.Duration `yaml:"watch_interval"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
}

type Private struct {
	BearerToken string `yaml:"bearer_token"`
}

func (c *Config) BearerToken() string {
	return c.private.BearerToken
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.mustValidate()
	return cfg
}

func (c *Config) mustValidate() {
	if c.Public.APIBaseURL == "" {
		panic("config: api_base_url is required")
	}
	if c.Public.PostsPerPage <= 0 {
		panic("config: posts_per_page must be positive")
	}
	if c.Public.ThreadsPerPage <= 0 {
		panic("config: threads_per_page must be positive")
	}
	if c.Public.MinContentLen <= 0 {
		panic("config: min_content_len must be positive")
	}
}
