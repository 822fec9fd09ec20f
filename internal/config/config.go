package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed default.yaml
var defaultYAML []byte

// EnvConfigPath names the environment variable consulted for the config path.
const EnvConfigPath = "RESUMEANALYZER_CONFIG"

// Analysis modes.
const (
	ModeLLM             = "llm"
	ModeHeuristic       = "heuristic"
	ModeLLMWithFallback = "llm_with_fallback"
)

// LLM providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Storage drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

const (
	defaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultSQLitePath    = "resumeanalyzer.db"
)

var defaultModels = map[string]string{
	ProviderGroq:   "llama-3.1-8b-instant",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.5-flash",
}

// Config is the root configuration for the resume analyzer.
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Cache    CacheConfig
	History  HistoryConfig
	Archive  ArchiveConfig
	Log      LogConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	ClientURL       string // extra CORS origin, next to http://localhost:3000
	MaxUploadMB     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// MaxUploadBytes returns the multipart body limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// LLMConfig selects and tunes the generative model backend.
type LLMConfig struct {
	Provider          string
	BaseURL           string // empty keeps the gemini SDK default
	Model             string
	APIKey            string // expanded from env var by Load
	Timeout           time.Duration
	MaxTokens         int
	MaxRetries        int // 0 disables retries
	RetryDelay        time.Duration
	RequestsPerMinute int // 0 disables client-side limiting
}

// AnalysisConfig selects how resumes are scored.
type AnalysisConfig struct {
	Mode string `yaml:"mode"`
}

// UsesLLM reports whether the mode calls the model at all.
func (a AnalysisConfig) UsesLLM() bool {
	return a.Mode != ModeHeuristic
}

// CacheConfig selects the market trends cache backend.
type CacheConfig struct {
	Driver       string
	Path         string // sqlite file
	URL          string // redis or postgres URL
	WarmInterval time.Duration
}

// HistoryConfig selects the analysis history backend.
type HistoryConfig struct {
	Driver    string
	Path      string
	URL       string
	Retention time.Duration // 0 keeps records forever
}

// ArchiveConfig controls optional archival of uploaded resumes to S3.
type ArchiveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // for R2, MinIO and other S3-compatible stores
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server   rawServerConfig  `yaml:"server"`
	LLM      rawLLMConfig     `yaml:"llm"`
	Analysis AnalysisConfig   `yaml:"analysis"`
	Cache    rawCacheConfig   `yaml:"cache"`
	History  rawHistoryConfig `yaml:"history"`
	Archive  ArchiveConfig    `yaml:"archive"`
	Log      LogConfig        `yaml:"log"`
}

type rawServerConfig struct {
	Addr            string `yaml:"addr"`
	ClientURL       string `yaml:"client_url"`
	MaxUploadMB     int    `yaml:"max_upload_mb"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type rawLLMConfig struct {
	Provider          string `yaml:"provider"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	Timeout           string `yaml:"timeout"`
	MaxTokens         int    `yaml:"max_tokens"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelay        string `yaml:"retry_delay"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type rawCacheConfig struct {
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	URL          string `yaml:"url"`
	WarmInterval string `yaml:"warm_interval"`
}

type rawHistoryConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	URL       string `yaml:"url"`
	Retention string `yaml:"retention"`
}

// Resolve loads .env from the working directory, then the config at the
// first of: path, $RESUMEANALYZER_CONFIG, ./config.yaml. With none of them
// present the built-in defaults are used.
func Resolve(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path == "" {
		return Parse(defaultYAML)
	}
	return Load(path)
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it on top of the
// built-in defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(defaultYAML))), &raw); err != nil {
		return nil, fmt.Errorf("parse default config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := raw.convert()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (raw rawConfig) convert() (*Config, error) {
	var p durationParser
	cfg := &Config{
		Server: ServerConfig{
			Addr:            raw.Server.Addr,
			ClientURL:       raw.Server.ClientURL,
			MaxUploadMB:     raw.Server.MaxUploadMB,
			ReadTimeout:     p.parse("server.read_timeout", raw.Server.ReadTimeout),
			WriteTimeout:    p.parse("server.write_timeout", raw.Server.WriteTimeout),
			ShutdownTimeout: p.parse("server.shutdown_timeout", raw.Server.ShutdownTimeout),
		},
		LLM: LLMConfig{
			Provider:          strings.ToLower(raw.LLM.Provider),
			BaseURL:           raw.LLM.BaseURL,
			Model:             raw.LLM.Model,
			APIKey:            raw.LLM.APIKey,
			Timeout:           p.parse("llm.timeout", raw.LLM.Timeout),
			MaxTokens:         raw.LLM.MaxTokens,
			MaxRetries:        raw.LLM.MaxRetries,
			RetryDelay:        p.parse("llm.retry_delay", raw.LLM.RetryDelay),
			RequestsPerMinute: raw.LLM.RequestsPerMinute,
		},
		Analysis: raw.Analysis,
		Cache: CacheConfig{
			Driver:       raw.Cache.Driver,
			Path:         raw.Cache.Path,
			URL:          raw.Cache.URL,
			WarmInterval: p.parse("cache.warm_interval", raw.Cache.WarmInterval),
		},
		History: HistoryConfig{
			Driver:    raw.History.Driver,
			Path:      raw.History.Path,
			URL:       raw.History.URL,
			Retention: p.parse("history.retention", raw.History.Retention),
		},
		Archive: raw.Archive,
		Log:     raw.Log,
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.LLM.BaseURL == "" {
		switch cfg.LLM.Provider {
		case ProviderGroq:
			cfg.LLM.BaseURL = defaultGroqBaseURL
		case ProviderOpenAI:
			cfg.LLM.BaseURL = defaultOpenAIBaseURL
		}
	}
	// the embedded default model belongs to groq
	if cfg.LLM.Provider != ProviderGroq && cfg.LLM.Model == defaultModels[ProviderGroq] {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}
	if cfg.LLM.RetryDelay == 0 {
		cfg.LLM.RetryDelay = 2 * time.Second
	}
	if cfg.Cache.Driver == DriverSQLite && cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultSQLitePath
	}
	if cfg.History.Driver == DriverSQLite && cfg.History.Path == "" {
		cfg.History.Path = defaultSQLitePath
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "resumes"
	}
	return cfg, nil
}

// durationParser keeps the first parse error so convert can stay linear.
type durationParser struct {
	err error
}

func (p *durationParser) parse(field, value string) time.Duration {
	if value == "" || p.err != nil {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.err = fmt.Errorf("parse %s %q: %w", field, value, err)
		return 0
	}
	return d
}

func validate(cfg *Config) error {
	if err := check(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return nil
}

func check(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 || cfg.Server.ShutdownTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}

	if !slices.Contains([]string{ModeLLM, ModeHeuristic, ModeLLMWithFallback}, cfg.Analysis.Mode) {
		return fmt.Errorf("analysis.mode must be one of llm, heuristic, llm_with_fallback, got %q", cfg.Analysis.Mode)
	}

	if !slices.Contains([]string{ProviderGroq, ProviderOpenAI, ProviderGemini}, cfg.LLM.Provider) {
		return fmt.Errorf("llm.provider must be one of groq, openai, gemini, got %q", cfg.LLM.Provider)
	}
	if cfg.Analysis.UsesLLM() {
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when analysis.mode is %q (set GROQ_API_KEY)", cfg.Analysis.Mode)
		}
		if cfg.LLM.Model == "" {
			return errors.New("llm.model is required")
		}
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxRetries < 0 || cfg.LLM.RequestsPerMinute < 0 || cfg.LLM.MaxTokens < 0 {
		return errors.New("llm.max_retries, llm.requests_per_minute and llm.max_tokens must not be negative")
	}

	if !slices.Contains([]string{DriverNone, DriverSQLite, DriverRedis, DriverPostgres}, cfg.Cache.Driver) {
		return fmt.Errorf("cache.driver must be one of none, sqlite, redis, postgres, got %q", cfg.Cache.Driver)
	}
	if (cfg.Cache.Driver == DriverRedis || cfg.Cache.Driver == DriverPostgres) && cfg.Cache.URL == "" {
		return fmt.Errorf("cache.url is required when cache.driver is %q", cfg.Cache.Driver)
	}
	if cfg.Cache.WarmInterval < 0 {
		return errors.New("cache.warm_interval must not be negative")
	}

	if !slices.Contains([]string{DriverNone, DriverSQLite, DriverPostgres}, cfg.History.Driver) {
		return fmt.Errorf("history.driver must be one of none, sqlite, postgres, got %q", cfg.History.Driver)
	}
	if cfg.History.Driver == DriverPostgres && cfg.History.URL == "" {
		return errors.New("history.url is required when history.driver is \"postgres\"")
	}

	if cfg.Archive.Enabled && cfg.Archive.Bucket == "" {
		return errors.New("archive.bucket is required when archive.enabled is true")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(cfg.Log.Level)) {
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}
