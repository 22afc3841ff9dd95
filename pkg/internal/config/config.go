package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	SignatureModeRaw     = "raw"
	SignatureModeCompact = "compact"
)

var ErrMissingCredentials = errors.New("STREAM_API_KEY and STREAM_API_SECRET must be set")

type Config struct {
	Stream    StreamConfig  `mapstructure:"stream"`
	Webhook   WebhookConfig `mapstructure:"webhook"`
	Redis     RedisConfig   `mapstructure:"redis"`
	Calling   CallingConfig `mapstructure:"calling"`
	Debug     DebugConfig   `mapstructure:"debug"`
	Port      int           `mapstructure:"port"`
	GrpcBind  string        `mapstructure:"grpc_bind"`
	Heartbeat string        `mapstructure:"heartbeat"`
}

type StreamConfig struct {
	ApiKey    string `mapstructure:"api_key"`
	ApiSecret string `mapstructure:"api_secret"`
	Endpoint  string `mapstructure:"endpoint"`
}

type WebhookConfig struct {
	Secret        string `mapstructure:"secret"`
	SignatureMode string `mapstructure:"signature_mode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CallingConfig struct {
	EmptyTimeoutDuration uint32 `mapstructure:"empty_timeout_duration"`
	MaxParticipants      uint32 `mapstructure:"max_participants"`
}

type DebugConfig struct {
	PrintRoutes bool `mapstructure:"print_routes"`
}

func (v Config) Bind() string {
	return fmt.Sprintf(":%d", v.Port)
}

func (v Config) Validate() error {
	if len(v.Stream.ApiKey) == 0 || len(v.Stream.ApiSecret) == 0 {
		return ErrMissingCredentials
	}
	switch v.Webhook.SignatureMode {
	case SignatureModeRaw, SignatureModeCompact:
	default:
		return fmt.Errorf("unknown webhook signature mode %q", v.Webhook.SignatureMode)
	}
	if v.Port <= 0 || v.Port > 65535 {
		return fmt.Errorf("invalid port %d", v.Port)
	}
	return nil
}

// New prepares a viper instance reading settings.toml and the environment.
// Environment variables win over the settings file.
func New() *viper.Viper {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("settings")
	v.SetConfigType("toml")

	v.SetDefault("stream.endpoint", "http://localhost:7880")
	v.SetDefault("port", 3000)
	v.SetDefault("webhook.signature_mode", SignatureModeRaw)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("calling.empty_timeout_duration", 300)
	v.SetDefault("calling.max_participants", 0)
	v.SetDefault("heartbeat", "@every 1m")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values of keys viper already knows about.
	for key, env := range map[string]string{
		"stream.api_key":     "STREAM_API_KEY",
		"stream.api_secret":  "STREAM_API_SECRET",
		"webhook.secret":     "WEBHOOK_SECRET",
		"redis.password":     "REDIS_PASSWORD",
		"grpc_bind":          "GRPC_BIND",
		"debug.print_routes": "DEBUG_PRINT_ROUTES",
	} {
		_ = v.BindEnv(key, env)
	}

	return v
}

// Load reads the optional settings file and decodes the result.
// A missing settings file is not an error, the environment alone is enough.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("unable to read settings: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse settings: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
