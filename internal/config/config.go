// Package config loads the tier worker's configuration from the
// environment (with an optional .env file), following the project's
// viper + godotenv convention.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is the fully resolved tier worker configuration.
type Config struct {
	Tier string `mapstructure:"tier"`

	BootstrapServers []string `mapstructure:"bootstrap_servers"`
	RedisHost        string   `mapstructure:"redis_host"`
	RedisPort        string   `mapstructure:"redis_port"`

	WebhookBaseURL string `mapstructure:"webhook_url"`
	LogStashTopic  string `mapstructure:"log_stash_topic"`

	Topic          string        `mapstructure:"topic"`
	Group          string        `mapstructure:"group"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	RankTopic []string `mapstructure:"rank_topic"`

	BatchLimit     int           `mapstructure:"batch_limit"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	RollingWindow  int           `mapstructure:"rolling_window"`
	RetryableCodes []int         `mapstructure:"retryable_codes"`
	MaxRetries     uint64        `mapstructure:"max_retries"`

	HTTPPort      string   `mapstructure:"http_port"`
	KafkaClientID string   `mapstructure:"kafka_client_id"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
}

// Load reads configuration from the environment (optionally preloaded
// from a .env file) and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	setDefaults()
	viper.AutomaticEnv()

	tier := strings.ToUpper(viper.GetString("TIER"))
	if tier == "" {
		return nil, fmt.Errorf("config: TIER is required")
	}
	bindTierEnv(tier)

	cfg := &Config{
		Tier:             tier,
		BootstrapServers: splitCSV(viper.GetString("BOOTSTRAP_SERVERS")),
		RedisHost:        viper.GetString("REDIS_HOST"),
		RedisPort:        viper.GetString("REDIS_PORT"),
		WebhookBaseURL:   viper.GetString("WEBHOOK_URL"),
		LogStashTopic:    viper.GetString("LOG_STASH_TOPIC"),
		Topic:            viper.GetString(tier + "_TOPIC"),
		Group:            viper.GetString(tier + "_GROUP"),
		RequestTimeout:   viper.GetDuration(tier + "_TIMEOUT_REQUEST"),
		RankTopic:        splitCSV(viper.GetString("RANK_TOPIC")),
		BatchLimit:       viper.GetInt("LIMIT_MSG"),
		PollTimeout:      viper.GetDuration("TIMEOUT_MSG"),
		RollingWindow:    viper.GetInt("LIMIT_REDIS_MSG"),
		RetryableCodes:   splitCSVInts(viper.GetString("STATUS_ALLOW")),
		MaxRetries:       uint64(viper.GetInt64("MAX_RETRIES")),
		HTTPPort:         viper.GetString("HTTP_PORT"),
		KafkaClientID:    viper.GetString("KAFKA_CLIENT_ID"),
		CORSOrigins:      splitCSV(viper.GetString("CORS_ORIGINS")),
	}

	if cfg.KafkaClientID == "" {
		cfg.KafkaClientID = "flowcatalyst-tierworker-" + strings.ToLower(tier)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all fields required to run a tier worker are set.
func (c *Config) Validate() error {
	if len(c.BootstrapServers) == 0 {
		return fmt.Errorf("BOOTSTRAP_SERVERS is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.WebhookBaseURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("%s_TOPIC is required", c.Tier)
	}
	if c.Group == "" {
		return fmt.Errorf("%s_GROUP is required", c.Tier)
	}
	if len(c.RankTopic) == 0 {
		return fmt.Errorf("RANK_TOPIC is required")
	}
	found := false
	for _, t := range c.RankTopic {
		if t == c.Topic {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s (%s) must appear in RANK_TOPIC", c.Tier, c.Topic)
	}
	return nil
}

// RedisAddr returns the host:port address for the cache client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func bindTierEnv(tier string) {
	_ = viper.BindEnv(tier + "_TOPIC")
	_ = viper.BindEnv(tier + "_GROUP")
	_ = viper.BindEnv(tier + "_TIMEOUT_REQUEST")
}

func setDefaults() {
	viper.SetDefault("LOG_STASH_TOPIC", "logstash_topic")
	viper.SetDefault("LIMIT_MSG", 100)
	viper.SetDefault("TIMEOUT_MSG", time.Second)
	viper.SetDefault("LIMIT_REDIS_MSG", 5)
	viper.SetDefault("STATUS_ALLOW", "500,502,503,504")
	viper.SetDefault("MAX_RETRIES", 5)
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("CORS_ORIGINS", "*")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitCSVInts(s string) []int {
	parts := splitCSV(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		var v int
		if _, err := fmt.Sscanf(p, "%d", &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
