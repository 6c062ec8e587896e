package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/spf13/viper"
)

type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	EnableLatency  bool `mapstructure:"enable_latency"`
	EnableUpstream bool `mapstructure:"enable_upstream"`
	EnablePerRoute bool `mapstructure:"enable_per_route"`
	EnableGuard    bool `mapstructure:"enable_guard"`
	Workers        int  `mapstructure:"workers"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Sanitizer  SanitizerConfig  `mapstructure:"sanitizer"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	EmbedProxy EmbedProxyConfig `mapstructure:"embed_proxy"`
	Guard      GuardConfig      `mapstructure:"guard"`
	Patterns   PatternsConfig   `mapstructure:"patterns"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	ProxyPort   int    `mapstructure:"proxy_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
	// BodyLimit bounds POSTed documents, in bytes.
	BodyLimit   int  `mapstructure:"body_limit"`
	DocsEnabled bool `mapstructure:"docs_enabled"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type SanitizerConfig struct {
	Policy            string        `mapstructure:"policy"`
	HandlerAttributes []string      `mapstructure:"handler_attributes"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
}

type DispatcherConfig struct {
	ScrapeTimeout    time.Duration `mapstructure:"scrape_timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
	ProxyBase        string        `mapstructure:"proxy_base"`
	FramingTTL       time.Duration `mapstructure:"framing_ttl"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
	MaxResponseBytes int           `mapstructure:"max_response_bytes"`
}

type EmbedProxyConfig struct {
	// FailureStatus is the status of the fallback page served when the
	// upstream fetch fails. The body is always HTML.
	FailureStatus int           `mapstructure:"failure_status"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
}

type GuardConfig struct {
	PlaybackRoutes     []string      `mapstructure:"playback_routes"`
	ContentGuardRoutes []string      `mapstructure:"content_guard_routes"`
	AllowDomains       []string      `mapstructure:"allow_domains"`
	LocationPoll       time.Duration `mapstructure:"location_poll"`
	PopupSweep         time.Duration `mapstructure:"popup_sweep"`
	GestureWindow      time.Duration `mapstructure:"gesture_window"`
	ToastDuration      time.Duration `mapstructure:"toast_duration"`
}

type PatternsConfig struct {
	File  string                   `mapstructure:"file"`
	Extra []map[string]interface{} `mapstructure:"extra"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	MaxAge           string   `mapstructure:"max_age"`
}

// RateLimitConfig throttles the fetch-triggering routes per client IP.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
	Paths   []string      `mapstructure:"paths"`
}

var globalConfig Config
var providerConfig ProvidersConfig

// Load reads config.yaml and providers.yaml from configPath. A missing
// providers file is not an error; the dispatcher then has no providers.
func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues(&globalConfig)

	if err := loadConfigFile(configPath, "providers", &providerConfig); err != nil {
		var notFound *fileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("could not load providers config file: %w", err)
		}
	}

	globalConfig.Providers = providerConfig

	return nil
}

type fileNotFoundError struct {
	name string
}

func (e *fileNotFoundError) Error() string {
	return fmt.Sprintf("config file %s.yaml not found, using only environment variables", e.name)
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return &fileNotFoundError{name: fileName}
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.ProxyPort == 0 {
		cfg.Server.ProxyPort = 8081
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 8 * 1024 * 1024
	}
	if cfg.Metrics.Workers == 0 {
		cfg.Metrics.Workers = 5
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Sanitizer.FetchTimeout == 0 {
		cfg.Sanitizer.FetchTimeout = common.DefaultSanitizeTimeout
	}
	if cfg.Dispatcher.ScrapeTimeout == 0 {
		cfg.Dispatcher.ScrapeTimeout = common.DefaultScrapeTimeout
	}
	if cfg.Dispatcher.UserAgent == "" {
		cfg.Dispatcher.UserAgent = common.DefaultDesktopUserAgent
	}
	if cfg.Dispatcher.ProxyBase == "" {
		cfg.Dispatcher.ProxyBase = "/proxy"
	}
	if cfg.Dispatcher.FramingTTL == 0 {
		cfg.Dispatcher.FramingTTL = common.FramingPolicyTTL
	}
	if cfg.Dispatcher.BreakerTimeout == 0 {
		cfg.Dispatcher.BreakerTimeout = 30 * time.Second
	}
	if cfg.Dispatcher.BreakerFailures == 0 {
		cfg.Dispatcher.BreakerFailures = 5
	}
	if cfg.Dispatcher.MaxResponseBytes == 0 {
		cfg.Dispatcher.MaxResponseBytes = 16 * 1024 * 1024
	}
	if cfg.EmbedProxy.FailureStatus == 0 {
		cfg.EmbedProxy.FailureStatus = 200
	}
	if cfg.EmbedProxy.FetchTimeout == 0 {
		cfg.EmbedProxy.FetchTimeout = common.DefaultScrapeTimeout
	}
	if len(cfg.Guard.PlaybackRoutes) == 0 {
		cfg.Guard.PlaybackRoutes = []string{"/watch", "/live", "/embed"}
	}
	if len(cfg.Guard.ContentGuardRoutes) == 0 {
		cfg.Guard.ContentGuardRoutes = []string{"/watch", "/live"}
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 120
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if len(cfg.RateLimit.Paths) == 0 {
		cfg.RateLimit.Paths = []string{"/proxy/", "/extract-stream"}
	}
	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowMethods) == 0 {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
}

func GetConfig() *Config {
	return &globalConfig
}
