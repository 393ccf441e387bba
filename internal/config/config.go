package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`

	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR,required,notEmpty"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Passphrase the secret cipher derives its AES key from.
	// Never logged.
	EncryptionKey string `env:"ENCRYPTION_KEY,required,notEmpty"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL,required,notEmpty"`

	FacebookAppID       string `env:"FACEBOOK_APP_ID,required,notEmpty"`
	FacebookAppSecret   string `env:"FACEBOOK_APP_SECRET,required,notEmpty"`
	FacebookRedirectURL string `env:"FACEBOOK_REDIRECT_URL,required,notEmpty"`
}

// Load reads configuration from the environment. A missing required
// value is a startup failure, not a per-request error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
