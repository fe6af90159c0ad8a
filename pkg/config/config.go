package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campushub/modgate/pkg/infra/events"
	"github.com/campushub/modgate/pkg/infra/prometheus"
	"github.com/campushub/modgate/pkg/moderation"
	"github.com/campushub/modgate/pkg/moderation/composer"
	"github.com/campushub/modgate/pkg/moderation/heuristic"
	"github.com/campushub/modgate/pkg/moderation/lexicon"
	"github.com/campushub/modgate/pkg/moderation/multimodal"
	"github.com/campushub/modgate/pkg/moderation/toxicity"
	"github.com/spf13/viper"
)

const (
	ProfileRelaxed = "relaxed"
	ProfileStrict  = "strict"

	relaxedThreshold = 0.55
	strictThreshold  = 0.30
)

type MetricsConfig struct {
	Enabled                  bool `mapstructure:"enabled"`
	prometheus.MetricsConfig `mapstructure:",squash"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Redis      events.Config    `mapstructure:"redis"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	MetricsPort  int           `mapstructure:"metrics_port"`
	Host         string        `mapstructure:"host"`
	BodyLimit    int           `mapstructure:"body_limit"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequestTimeout bounds one moderation, external calls included.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

type ModerationConfig struct {
	Profile       string           `mapstructure:"profile"`
	MaxImageBytes int              `mapstructure:"max_image_bytes"`
	Lexicon       LexiconConfig    `mapstructure:"lexicon"`
	Classifier    toxicity.Config  `mapstructure:"classifier"`
	Heuristic     heuristic.Config `mapstructure:"heuristic"`
	Multimodal    MultimodalConfig `mapstructure:"multimodal"`
}

type LexiconConfig struct {
	// Path replaces the embedded term table when set.
	Path        string `mapstructure:"path"`
	LeetFolding bool   `mapstructure:"leet_folding"`
}

type MultimodalConfig struct {
	multimodal.Config `mapstructure:",squash"`
	composer.Policy   `mapstructure:",squash"`
}

// ClassifierConfig returns the classifier settings with the profile threshold
// applied unless one was set explicitly.
func (m ModerationConfig) ClassifierConfig() toxicity.Config {
	cfg := m.Classifier
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = relaxedThreshold
		if m.IsStrict() {
			cfg.Threshold = strictThreshold
		}
	}
	return cfg
}

func (m ModerationConfig) LexiconTiers() []lexicon.Tier {
	if m.IsStrict() {
		return []lexicon.Tier{lexicon.TierCore, lexicon.TierExtended}
	}
	return []lexicon.Tier{lexicon.TierCore}
}

func (m ModerationConfig) IsStrict() bool {
	return strings.EqualFold(strings.TrimSpace(m.Profile), ProfileStrict)
}

func (m ModerationConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(m.Profile)) {
	case "", ProfileRelaxed, ProfileStrict:
	default:
		return fmt.Errorf("unknown moderation profile %q", m.Profile)
	}
	if m.MaxImageBytes <= 0 {
		return errors.New("moderation.max_image_bytes must be positive")
	}
	return nil
}

var globalConfig Config

// Load reads config.yaml from configPath, ./config or the working directory.
// A missing file is not an error; defaults and environment variables apply.
func Load(configPath string) error {
	v := viper.New()
	setDefaultValues(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Moderation.Validate(); err != nil {
		return err
	}

	globalConfig = cfg
	return nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.body_limit", 8*1024*1024)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 12*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_stage_latency", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "moderation.log")
	v.SetDefault("logging.console", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.channel", events.DefaultChannel)

	v.SetDefault("moderation.profile", ProfileRelaxed)
	v.SetDefault("moderation.max_image_bytes", moderation.DefaultMaxImageBytes)
	v.SetDefault("moderation.lexicon.path", "")
	v.SetDefault("moderation.lexicon.leet_folding", true)

	tox := toxicity.DefaultConfig()
	v.SetDefault("moderation.classifier.provider", tox.Provider)
	v.SetDefault("moderation.classifier.url", "")
	v.SetDefault("moderation.classifier.token", "")
	v.SetDefault("moderation.classifier.model", "")
	v.SetDefault("moderation.classifier.threshold", 0)
	v.SetDefault("moderation.classifier.timeout", tox.Timeout)
	v.SetDefault("moderation.classifier.toxic_labels", tox.ToxicLabels)
	v.SetDefault("moderation.classifier.breaker_failures", tox.BreakerFailures)
	v.SetDefault("moderation.classifier.breaker_cooldown", tox.BreakerCooldown)

	h := heuristic.DefaultConfig()
	v.SetDefault("moderation.heuristic.min_score", h.MinScore)
	v.SetDefault("moderation.heuristic.min_content_length", h.MinContentLength)
	v.SetDefault("moderation.heuristic.url_spam_threshold", h.URLSpamThreshold)

	v.SetDefault("moderation.multimodal.provider", "")
	v.SetDefault("moderation.multimodal.model", "")
	v.SetDefault("moderation.multimodal.api_key", "")
	v.SetDefault("moderation.multimodal.base_url", "")
	v.SetDefault("moderation.multimodal.max_tokens", 0)
	v.SetDefault("moderation.multimodal.timeout", multimodal.DefaultTimeout)
	v.SetDefault("moderation.multimodal.breaker_failures", 0)
	v.SetDefault("moderation.multimodal.breaker_cooldown", 0)
	v.SetDefault("moderation.multimodal.inappropriate_veto", composer.DefaultPolicy().ImageInappropriateVeto)
	v.SetDefault("moderation.multimodal.aws.access_key", "")
	v.SetDefault("moderation.multimodal.aws.secret_key", "")
	v.SetDefault("moderation.multimodal.aws.session_token", "")
	v.SetDefault("moderation.multimodal.aws.region", "")
	v.SetDefault("moderation.multimodal.aws.use_role", false)
	v.SetDefault("moderation.multimodal.aws.role_arn", "")
}

func GetConfig() *Config {
	return &globalConfig
}
