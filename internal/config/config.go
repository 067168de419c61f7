package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UpgradePath    string        `yaml:"upgrade_path"` // where locked content redirects to
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // prediction cache lifetime
}

type AIConfig struct {
	OpenAIKey       string            `yaml:"openai_key"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	DefaultModel    string            `yaml:"default_model"`
	MetisKey        string            `yaml:"metis_key"`
	MetisBaseURL    string            `yaml:"metis_base_url"`
	ModelProviders  map[string]string `yaml:"model_providers"`  // model -> openai|gemini|metis
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxRetries      int               `yaml:"max_retries"`
	MaxOutputTokens int               `yaml:"max_output_tokens"`
	Timeout         time.Duration     `yaml:"timeout"`
}

type FootballConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timezone   string        `yaml:"timezone"`
	Leagues    []int         `yaml:"leagues"` // empty = every league
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

type VIPConfig struct {
	AdminCode    string        `yaml:"admin_code"`
	Codes        []string      `yaml:"codes"`
	CodesFile    string        `yaml:"codes_file"`
	LoadFromDB   bool          `yaml:"load_codes_from_db"`
	Store        string        `yaml:"store"` // memory|redis|postgres
	KeyPrefix    string        `yaml:"key_prefix"`
	Window       time.Duration `yaml:"window"`
	EliteTeams   []string      `yaml:"elite_teams"` // empty = built-in list
	RedeemLimit  int           `yaml:"redeem_limit"`
	RedeemWindow time.Duration `yaml:"redeem_window"`
}

type AuthConfig struct {
	SessionSecret    string        `yaml:"session_secret"`
	CookieName       string        `yaml:"cookie_name"`
	CookieDomain     string        `yaml:"cookie_domain"`
	SecureCookie     bool          `yaml:"secure_cookie"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	IdentitySecret   string        `yaml:"identity_secret"`
	IdentityIssuer   string        `yaml:"identity_issuer"`
	IdentityAudience string        `yaml:"identity_audience"`
}

type SchedulerConfig struct {
	WarmupInterval  time.Duration `yaml:"warmup_interval"` // 0 disables
	WarmPredictions bool          `yaml:"warm_predictions"`
	Workers         int           `yaml:"workers"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Football  FootballConfig  `yaml:"football"`
	VIP       VIPConfig       `yaml:"vip"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// LoadConfig reads the YAML file at path, applies defaults and validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read; used by tests.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 60 * time.Second
	}
	if cfg.HTTP.UpgradePath == "" {
		cfg.HTTP.UpgradePath = "/settings/upgrade"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxRetries < 0 {
		cfg.AI.MaxRetries = 0
	} else if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 2
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1500
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 45 * time.Second
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MetisBaseURL == "" {
		cfg.AI.MetisBaseURL = "https://api.metisai.ir/openai/v1"
	}

	if cfg.Football.BaseURL == "" {
		cfg.Football.BaseURL = "https://v3.football.api-sports.io"
	}
	if cfg.Football.Timezone == "" {
		cfg.Football.Timezone = "Europe/Paris"
	}
	if cfg.Football.MaxRetries <= 0 {
		cfg.Football.MaxRetries = 3
	}
	if cfg.Football.Timeout <= 0 {
		cfg.Football.Timeout = 15 * time.Second
	}

	cfg.VIP.Store = strings.ToLower(strings.TrimSpace(cfg.VIP.Store))
	if cfg.VIP.Store == "" {
		cfg.VIP.Store = StoreMemory
	}
	if cfg.VIP.KeyPrefix == "" {
		cfg.VIP.KeyPrefix = "betiq_vip"
	}
	if cfg.VIP.Window <= 0 {
		cfg.VIP.Window = 30 * 24 * time.Hour
	}
	if cfg.VIP.RedeemLimit <= 0 {
		cfg.VIP.RedeemLimit = 10
	}
	if cfg.VIP.RedeemWindow <= 0 {
		cfg.VIP.RedeemWindow = time.Minute
	}

	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "betiq_session"
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.Auth.SessionSecret == "" && cfg.Runtime.Dev {
		cfg.Auth.SessionSecret = "dev-session-secret-change-me"
	}

	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 4
	}
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.VIP.AdminCode) == "" {
		return errors.New("vip.admin_code is required")
	}
	if cfg.Auth.SessionSecret == "" {
		return errors.New("auth.session_secret is required")
	}
	switch cfg.VIP.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required when vip.store=redis")
		}
	case StorePostgres:
		if cfg.Database.URL == "" {
			return errors.New("database.url is required when vip.store=postgres")
		}
	default:
		return fmt.Errorf("vip.store %q: want memory, redis or postgres", cfg.VIP.Store)
	}
	if cfg.VIP.LoadFromDB && cfg.Database.URL == "" {
		return errors.New("database.url is required when vip.load_codes_from_db is set")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
