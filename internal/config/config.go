package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type FetcherConfig struct {
	UserAgent     string `yaml:"userAgent"`
	TimeoutMs     int    `yaml:"timeoutMs"`
	RespectRobots bool   `yaml:"respectRobots"`
}

// TierTimeouts carries per-tier fetch deadlines. Rendering-capable
// paid tiers get longer defaults than plain site fetches.
type TierTimeouts struct {
	SiteMs  int `yaml:"siteMs"`
	Tier1Ms int `yaml:"tier1Ms"`
	ProxyMs int `yaml:"proxyMs"`
	ActorMs int `yaml:"actorMs"`
}

// ScraperAPIConfig configures the paid rendering-proxy tier. An empty
// API key disables the tier silently.
type ScraperAPIConfig struct {
	APIKey string `yaml:"apiKey"`
}

// ApifyConfig configures the browser-farm actor tier. The tier needs
// both the token and the explicit enablement flag.
type ApifyConfig struct {
	Token   string `yaml:"token"`
	ActorID string `yaml:"actorId"`
	Enabled bool   `yaml:"enabled"`
}

// BrowserConfig reserves the flag for a local rendering tier that is
// not implemented; enabling it has no effect today.
type BrowserConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CacheConfig struct {
	TTLHours             int    `yaml:"ttlHours"`
	SweepIntervalMinutes int    `yaml:"sweepIntervalMinutes"`
	RedisURL             string `yaml:"redisURL"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type BatchConfig struct {
	MaxConcurrent int `yaml:"maxConcurrent"`
	MaxURLs       int `yaml:"maxURLs"`
}

// RetentionConfig controls TTL deletion of stored extraction attempts
// so the analytics table does not grow without bound.
type RetentionConfig struct {
	Enabled     bool `yaml:"enabled"`
	AttemptDays int  `yaml:"attemptDays"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type GoogleLLMConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type LLMConfig struct {
	DefaultProvider string          `yaml:"defaultProvider"`
	TimeoutMs       int             `yaml:"timeoutMs"`
	OpenAI          OpenAIConfig    `yaml:"openai"`
	Anthropic       AnthropicConfig `yaml:"anthropic"`
	Google          GoogleLLMConfig `yaml:"google"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Timeouts   TierTimeouts     `yaml:"timeouts"`
	ScraperAPI ScraperAPIConfig `yaml:"scraperapi"`
	Apify      ApifyConfig      `yaml:"apify"`
	Browser    BrowserConfig    `yaml:"browser"`
	Cache      CacheConfig      `yaml:"cache"`
	Database   DatabaseConfig   `yaml:"database"`
	Batch      BatchConfig      `yaml:"batch"`
	Retention  RetentionConfig  `yaml:"retention"`
	LLM        LLMConfig        `yaml:"llm"`

	// BlockedDomains is the curated list of sites known to resist
	// every strategy; a 403/999 from one of these aborts the cascade.
	BlockedDomains []string `yaml:"blockedDomains"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	cfg.applyEnvOverrides()
	return &cfg
}

// applyEnvOverrides lets credentials come from the environment so
// config files can be committed without secrets. The file value wins
// only when the variable is unset.
func (c *Config) applyEnvOverrides() {
	override := func(target *string, envKey string) {
		if v := os.Getenv(envKey); v != "" {
			*target = v
		}
	}

	override(&c.ScraperAPI.APIKey, "SCRAPERAPI_KEY")
	override(&c.Apify.Token, "APIFY_TOKEN")
	override(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	override(&c.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	override(&c.LLM.Google.APIKey, "GOOGLE_API_KEY")
	override(&c.Database.DSN, "DATABASE_URL")
	override(&c.Cache.RedisURL, "REDIS_URL")
}
