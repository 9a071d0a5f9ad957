// internal/config/config.go
//
// Runtime configuration.
//
// Responsibilities:
//   - Defaults for every key the server reads.
//   - Optional config.yaml in "." or "./config".
//   - Environment overrides with the HOH_ prefix (HOH_SERVER_PORT, HOH_DATABASE_DSN, ...).
//
// Notes:
//   - .env is loaded by main via godotenv before Load runs, so its values
//     arrive here as plain environment variables.

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ClientOrigins  []string      `mapstructure:"client_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig selects the store backend: "sqlite3", "pgx" or "memory".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiresDays int    `mapstructure:"jwt_expires_days"`
	CookieName     string `mapstructure:"cookie_name"`
	SecureCookies  bool   `mapstructure:"secure_cookies"`
}

// LogConfig: File is empty for stderr only.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
}

// TokenTTL converts the configured day count.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.JWTExpiresDays) * 24 * time.Hour
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5175")
	v.SetDefault("server.client_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.request_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "./data/hero-of-habits.db")

	v.SetDefault("auth.jwt_secret", "dev_secret_change_me")
	v.SetDefault("auth.jwt_expires_days", 14)
	v.SetDefault("auth.cookie_name", "hoh_token")
	v.SetDefault("auth.secure_cookies", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")
}

// Load reads defaults, then config.yaml (if any), then HOH_* env vars.
// Extra search paths are tried before the built-in ones.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("HOH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx", "memory":
	default:
		return errors.New("database.driver must be sqlite3, pgx or memory")
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Auth.JWTExpiresDays <= 0 {
		return errors.New("auth.jwt_expires_days must be positive")
	}
	return nil
}
