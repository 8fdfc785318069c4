package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every runtime knob for the telecare server. Values come
// from the environment, with a .env file as a development convenience.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// WebSocket signaling hardening.
	MaxSignalMessageBytes      int64 `mapstructure:"MAX_SIGNAL_MESSAGE_BYTES"`
	MaxSignalMessagesPerSecond int   `mapstructure:"MAX_SIGNAL_MESSAGES_PER_SECOND"`

	// ICE servers handed to clients before they start a call. Either a JSON
	// list (ICE_SERVERS_JSON) or the STUN/TURN convenience variables.
	ICEServersJSON string `mapstructure:"ICE_SERVERS_JSON"`
	STUNURLs       string `mapstructure:"STUN_URLS"`
	TURNURLs       string `mapstructure:"TURN_URLS"`
	TURNUsername   string `mapstructure:"TURN_USERNAME"`
	TURNCredential string `mapstructure:"TURN_CREDENTIAL"`

	SMTPAddr     string `mapstructure:"SMTP_ADDR"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	// Base URL of the external risk-model inference service.
	PredictionURL     string        `mapstructure:"PREDICTION_URL"`
	PredictionTimeout time.Duration `mapstructure:"PREDICTION_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("MAX_SIGNAL_MESSAGE_BYTES", 64*1024)
	v.SetDefault("MAX_SIGNAL_MESSAGES_PER_SECOND", 0) // 0 disables the limiter
	v.SetDefault("MAIL_FROM", "no-reply@telecare.local")
	v.SetDefault("PREDICTION_TIMEOUT", "5s")

	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "CORS_ORIGINS",
		"MAX_SIGNAL_MESSAGE_BYTES", "MAX_SIGNAL_MESSAGES_PER_SECOND",
		"ICE_SERVERS_JSON", "STUN_URLS", "TURN_URLS", "TURN_USERNAME", "TURN_CREDENTIAL",
		"SMTP_ADDR", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
		"PREDICTION_URL", "PREDICTION_TIMEOUT",
	} {
		v.BindEnv(key)
	}

	// Missing .env is fine; real deployments use the environment.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects configurations that would start an insecure or
// non-functional server. The JWT secret gate is the important one: without
// it every login token and every signaling credential would be forgeable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
		}
		c.JWTSecret = "telecare-dev-secret"
	}
	if c.MaxSignalMessageBytes < 0 {
		return fmt.Errorf("MAX_SIGNAL_MESSAGE_BYTES must not be negative")
	}
	if c.MaxSignalMessagesPerSecond < 0 {
		return fmt.Errorf("MAX_SIGNAL_MESSAGES_PER_SECOND must not be negative")
	}
	if _, err := c.ICEServers(); err != nil {
		return err
	}
	return nil
}
