// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/occ-vacantes/internal/search"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Env       EnvironmentConfig `mapstructure:"environment"`
	Search    SearchConfig      `mapstructure:"search"`
	Scraper   ScraperConfig     `mapstructure:"scraper"`
	Artifacts ArtifactsConfig   `mapstructure:"artifacts"`
	Geocode   GeocodeConfig     `mapstructure:"geocode"`
	Storage   StorageConfig     `mapstructure:"storage"`
	DB        DBConfig          `mapstructure:"db"`
	PubSub    PubSubConfig      `mapstructure:"pubsub"`
	Logging   LoggingConfig     `mapstructure:"logging"`
	Tracing   TracingConfig     `mapstructure:"tracing"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"`
	StaticDir              string `mapstructure:"static_dir"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

// EnvironmentConfig describes where the process runs. Constrained is true on
// time-limited serverless hosting (VERCEL=1).
type EnvironmentConfig struct {
	Constrained bool `mapstructure:"constrained"`
}

// SearchConfig holds the race deadlines in seconds.
type SearchConfig struct {
	LocalTimeoutSeconds       int `mapstructure:"local_timeout_seconds"`
	ConstrainedTimeoutSeconds int `mapstructure:"constrained_timeout_seconds"`
}

// ScraperConfig governs the listing scrape.
type ScraperConfig struct {
	BaseURL               string            `mapstructure:"base_url"`
	UserAgent             string            `mapstructure:"user_agent"`
	MaxPages              int               `mapstructure:"max_pages"`
	ConstrainedMaxPages   int               `mapstructure:"constrained_max_pages"`
	RequestTimeoutSeconds int               `mapstructure:"request_timeout_seconds"`
	RespectRobots         bool              `mapstructure:"respect_robots"`
	RatePerSecond         float64           `mapstructure:"rate_per_second"`
	Burst                 int               `mapstructure:"burst"`
	Headless              HeadlessConfig    `mapstructure:"headless"`
	Selectors             map[string]string `mapstructure:"selectors"`
}

// HeadlessConfig configures the chromedp renderer.
type HeadlessConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	MaxParallel        int    `mapstructure:"max_parallel"`
	NavTimeoutSeconds  int    `mapstructure:"nav_timeout_seconds"`
	WaitSelector       string `mapstructure:"wait_selector"`
	PromotionThreshold int    `mapstructure:"promotion_threshold"`
}

// ArtifactsConfig sets where export files are written and served from.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// GeocodeConfig configures the LocationIQ proxy.
type GeocodeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	CountryCodes   string `mapstructure:"country_codes"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StorageConfig enables the optional GCS mirror.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls the optional search audit table.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int    `mapstructure:"max_conns"`
}

// PubSubConfig holds metadata for completion notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VACANTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Hosting platforms set these without our prefix.
	if err := v.BindEnv("environment.constrained", "VACANTES_ENVIRONMENT_CONSTRAINED", "VERCEL"); err != nil {
		return Config{}, fmt.Errorf("bind environment: %w", err)
	}
	if err := v.BindEnv("server.port", "VACANTES_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("environment.constrained", false)
	v.SetDefault("search.local_timeout_seconds", int(search.DefaultLocalDeadline/time.Second))
	v.SetDefault("search.constrained_timeout_seconds", int(search.DefaultConstrainedDeadline/time.Second))
	v.SetDefault("scraper.base_url", "https://www.occ.com.mx")
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	v.SetDefault("scraper.max_pages", 5)
	v.SetDefault("scraper.constrained_max_pages", 2)
	v.SetDefault("scraper.request_timeout_seconds", 20)
	v.SetDefault("scraper.respect_robots", false)
	v.SetDefault("scraper.rate_per_second", 1.0)
	v.SetDefault("scraper.burst", 1)
	v.SetDefault("scraper.headless.enabled", true)
	v.SetDefault("scraper.headless.max_parallel", 1)
	v.SetDefault("scraper.headless.nav_timeout_seconds", 45)
	v.SetDefault("scraper.headless.wait_selector", "")
	v.SetDefault("scraper.headless.promotion_threshold", 60)
	v.SetDefault("artifacts.dir", ".")
	v.SetDefault("geocode.base_url", "https://us1.locationiq.com/v1/search.php")
	v.SetDefault("geocode.api_key", "")
	v.SetDefault("geocode.country_codes", "mx")
	v.SetDefault("geocode.user_agent", "Scrapin-OCC/1.0 (tuemail@dominio.com)")
	v.SetDefault("geocode.timeout_seconds", 10)
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "searches")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "searches")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("tracing.enabled", true)
	v.SetDefault("tracing.service_name", "vacantes")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Search.LocalTimeoutSeconds <= 0 {
		return fmt.Errorf("search.local_timeout_seconds must be > 0")
	}
	if c.Search.ConstrainedTimeoutSeconds <= 0 {
		return fmt.Errorf("search.constrained_timeout_seconds must be > 0")
	}
	if c.Scraper.MaxPages <= 0 {
		return fmt.Errorf("scraper.max_pages must be > 0")
	}
	if c.Scraper.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.request_timeout_seconds must be > 0")
	}
	if c.Scraper.RatePerSecond < 0 {
		return fmt.Errorf("scraper.rate_per_second must be >= 0")
	}
	if c.Scraper.Headless.Enabled && c.Scraper.Headless.MaxParallel <= 0 {
		return fmt.Errorf("scraper.headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1")
	}
	return nil
}

// ExecutionEnvironment resolves the environment flag once for injection.
func (c Config) ExecutionEnvironment() search.Environment {
	return search.EnvironmentFrom(c.Env.Constrained)
}

// Deadlines converts the configured timeouts into governor deadlines.
func (c Config) Deadlines() search.Deadlines {
	return search.Deadlines{
		Local:       time.Duration(c.Search.LocalTimeoutSeconds) * time.Second,
		Constrained: time.Duration(c.Search.ConstrainedTimeoutSeconds) * time.Second,
	}
}

// MaxPages returns the page budget for the given environment.
func (c Config) MaxPages(env search.Environment) int {
	if env.Constrained() && c.Scraper.ConstrainedMaxPages > 0 {
		return c.Scraper.ConstrainedMaxPages
	}
	return c.Scraper.MaxPages
}
