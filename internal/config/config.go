package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/newsmania/internal/credibility"
	"github.com/ppiankov/newsmania/internal/model"
)

const (
	// EnvPrefix prefixes every environment override (NEWSMANIA_NEWS_API_KEY)
	EnvPrefix = "NEWSMANIA"
	dirName   = ".newsmania"
	fileName  = "config.yaml"
)

// DefaultPath returns ~/.newsmania/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "config: find home directory")
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Load reads configuration from defaults, the config file and environment.
// An empty path uses DefaultPath; a missing default file is not an error,
// a missing explicit file is.
func Load(path string) (*model.Config, error) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, eris.Wrapf(err, "config: read %s", path)
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if v.ConfigFileUsed() != "" {
		// viper lowercases map keys; source names are case-sensitive
		overrides, err := trustOverridesFromFile(v.ConfigFileUsed())
		if err != nil {
			return nil, err
		}
		if overrides != nil {
			cfg.Credibility.TrustOverrides = overrides
		}
	}
	applyEnvKeys(&cfg)

	return &cfg, nil
}

func trustOverridesFromFile(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "config: read %s", path)
	}
	var doc struct {
		Credibility struct {
			TrustOverrides map[string]int `yaml:"trust_overrides"`
		} `yaml:"credibility"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "config: parse %s", path)
	}
	return doc.Credibility.TrustOverrides, nil
}

// Used reports the config file Load would read, or "" when none exists
func Used(path string) string {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return ""
		}
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)
	v.SetDefault("http.respect_robots", d.HTTP.RespectRobots)
	v.SetDefault("http.http_proxy", "")
	v.SetDefault("http.https_proxy", "")
	v.SetDefault("http.no_proxy", "")

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_dir", d.Cache.DiskDir)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("concurrency.refresh_workers", d.Concurrency.RefreshWorkers)
	v.SetDefault("concurrency.batch_workers", d.Concurrency.BatchWorkers)
	v.SetDefault("concurrency.requests_per_sec", d.Concurrency.RequestsPerSec)
	v.SetDefault("concurrency.burst", d.Concurrency.Burst)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)

	v.SetDefault("news.api_key", "")
	v.SetDefault("news.base_url", d.News.BaseURL)
	v.SetDefault("news.country", d.News.Country)
	v.SetDefault("news.page_size", d.News.PageSize)
	v.SetDefault("news.categories", d.News.Categories)
	v.SetDefault("news.refresh_ttl", d.News.RefreshTTL)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("credibility.trust_file", "")
}

// applyEnvKeys fills API keys from the conventional provider variables
// when neither the file nor NEWSMANIA_* set them
func applyEnvKeys(cfg *model.Config) {
	if cfg.News.APIKey == "" {
		cfg.News.APIKey = os.Getenv("NEWS_API_KEY")
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "gemini", "google":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// TrustTable builds the source trust table from the trust file and inline overrides.
// Inline overrides win over file entries.
func TrustTable(cfg model.CredibilityConfig) (*credibility.TrustTable, error) {
	overrides := make(map[string]int)
	if cfg.TrustFile != "" {
		fromFile, err := credibility.LoadTrustFile(cfg.TrustFile)
		if err != nil {
			return nil, err
		}
		for name, score := range fromFile {
			overrides[name] = score
		}
	}
	for name, score := range cfg.TrustOverrides {
		overrides[name] = score
	}
	return credibility.NewTrustTable(overrides)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg model.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
