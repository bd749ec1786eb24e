package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/massgo/mailer-backend/internal/logger"
)

const DefaultEnvFile = ".env"

// Config is the whole process configuration. Every knob has a default so the
// binary runs with no environment at all.
type Config struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:5000"`
	OpenBrowser bool   `envconfig:"OPEN_BROWSER" default:"true"`

	SMTPHost string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`

	// Delays between consecutive send attempts. These are a deliberate soft
	// throttle against provider abuse detection, not tunables for speed.
	SingleSendDelay   time.Duration `envconfig:"SINGLE_SEND_DELAY" default:"500ms"`
	RotationSendDelay time.Duration `envconfig:"ROTATION_SEND_DELAY" default:"750ms"`

	// PerAccountLimit caps how many messages one sender account may attempt
	// within a single rotation campaign.
	PerAccountLimit int `envconfig:"PER_ACCOUNT_LIMIT" default:"480"`

	Logger logger.Config
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// .env file is optional, failure is acceptable
	_ = godotenv.Load(DefaultEnvFile)

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to envconfig.Process")
	}

	return c, nil
}
