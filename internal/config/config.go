// Package config loads runtime settings from configs/config.yml and TASKS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const envPrefix = "TASKS"

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	SigningKey         string        `mapstructure:"signing_key"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	BcryptCost         int           `mapstructure:"bcrypt_cost"`
	PublicRegistration bool          `mapstructure:"public_registration"`
	JanitorInterval    time.Duration `mapstructure:"janitor_interval"`
}

// BootstrapConfig describes the admin account ensured at start-up.
// An empty username disables bootstrapping. SeedTasks gives every user
// without tasks a sample set.
type BootstrapConfig struct {
	Admin     AdminConfig `mapstructure:"admin"`
	SeedTasks bool        `mapstructure:"seed_tasks"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "app.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("auth.public_registration", true)
	v.SetDefault("auth.janitor_interval", time.Minute)
	v.SetDefault("bootstrap.admin.username", "")
	v.SetDefault("bootstrap.admin.password", "")
	v.SetDefault("bootstrap.admin.full_name", "")
	v.SetDefault("bootstrap.seed_tasks", false)
}

// Load reads the config file at path (or configs/config.yml when path is empty),
// applies defaults and environment overrides, and validates the result.
// A missing file is tolerated so that the service can run from env vars alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("config: db.dsn is empty")
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("config: auth.signing_key is empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: auth.bcrypt_cost %d out of range", c.Auth.BcryptCost)
	}
	if c.Auth.JanitorInterval <= 0 {
		return fmt.Errorf("config: auth.janitor_interval must be positive, got %s", c.Auth.JanitorInterval)
	}
	return nil
}
