package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	StoreSQL    = "sql"
	StoreMemory = "memory"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	MinJWTSecretLength = 32
)

type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	Store string `env:"STORE" envDefault:"sql"`

	DBDriver               string        `env:"DB_DRIVER" envDefault:"mysql"`
	DBUser                 string        `env:"DB_USER"`
	DBPassword             string        `env:"DB_PASSWORD"`
	DBHost                 string        `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string        `env:"DB_NAME"`
	DBPort                 string        `env:"DB_PORT"`
	InstanceConnectionName string        `env:"INSTANCE_CONNECTION_NAME"`
	DatabaseURL            string        `env:"DATABASE_URL"`
	DBQueryTimeout         time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"arena-backend"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	WelcomeBonus     int64         `env:"WELCOME_BONUS" envDefault:"100"`
	ClaimMaxAttempts int           `env:"CLAIM_MAX_ATTEMPTS" envDefault:"3"`

	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"LOG_FORMAT" envDefault:"json"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	StorageBucket     string        `env:"STORAGE_BUCKET"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1m"`

	GitSHA    string `env:"GIT_SHA" envDefault:"unknown"`
	BuildTime string `env:"BUILD_TIME" envDefault:"unknown"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if cfg.DBPort == "" {
		cfg.DBPort = defaultPort(cfg.DBDriver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

// Validate checks settings that depend on each other. Database settings are
// only required when the SQL store is selected.
func (c *Config) Validate() error {
	var errs []error
	switch secret := strings.TrimSpace(c.JWTSecret); {
	case secret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case len(secret) < MinJWTSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ClaimMaxAttempts < 1 {
		errs = append(errs, errors.New("CLAIM_MAX_ATTEMPTS must be at least 1"))
	}
	if c.WelcomeBonus < 0 {
		errs = append(errs, errors.New("WELCOME_BONUS must not be negative"))
	}
	if c.SchedulerInterval <= 0 {
		errs = append(errs, errors.New("SCHEDULER_INTERVAL must be positive"))
	}

	switch c.Store {
	case StoreMemory:
	case StoreSQL:
		switch c.DBDriver {
		case DriverMySQL, DriverPostgres:
		default:
			errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
		}
		if c.DatabaseURL == "" {
			if c.DBUser == "" || c.DBName == "" {
				errs = append(errs, errors.New("DB_USER and DB_NAME are required when DATABASE_URL is unset"))
			}
			if c.DBHost == "" && c.InstanceConnectionName == "" {
				errs = append(errs, errors.New("DB_HOST or INSTANCE_CONNECTION_NAME is required when DATABASE_URL is unset"))
			}
		}
		if c.DBQueryTimeout <= 0 {
			errs = append(errs, errors.New("DB_QUERY_TIMEOUT must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE %q is not supported (want %s or %s)", c.Store, StoreSQL, StoreMemory))
	}
	return errors.Join(errs...)
}
