package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr        string
		AllowOrigin string
	}
	Database struct {
		Driver string
		Path   string
		URL    string
	}
	Auth struct {
		AccessSecret     string
		RefreshSecret    string
		PrivateKeyPath   string
		Issuer           string
		AccessTTLMinutes int
		RefreshTTLDays   int
		BcryptCost       int
	}
	Cookie struct {
		Domain string
		Secure bool
	}
	Log struct {
		Level  string
		Format string
	}
	Sentry struct {
		DSN         string
		Environment string
	}
	Maintenance struct {
		IntervalMinutes int
	}
}

// AccessTTL is the access credential and cookie lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

// RefreshTTL is the refresh credential, record and cookie lifetime.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLDays) * 24 * time.Hour
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Maintenance.IntervalMinutes) * time.Minute
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.RefreshSecret) == "" {
		return fmt.Errorf("auth refresh secret is required")
	}
	if strings.TrimSpace(c.Auth.AccessSecret) == "" && strings.TrimSpace(c.Auth.PrivateKeyPath) == "" {
		return fmt.Errorf("auth access secret or private key path is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.AccessTTL() >= c.RefreshTTL() {
		return fmt.Errorf("access ttl must be shorter than refresh ttl")
	}
	return nil
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// existing environment wins over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AUTHSVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5501")
	v.SetDefault("server.alloworigin", "http://localhost:5173")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/auth.db")
	v.SetDefault("database.url", "")
	v.SetDefault("auth.accesssecret", "")
	v.SetDefault("auth.refreshsecret", "")
	v.SetDefault("auth.privatekeypath", "")
	v.SetDefault("auth.issuer", "auth-service")
	v.SetDefault("auth.accessttlminutes", 60)
	v.SetDefault("auth.refreshttldays", 365)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("cookie.domain", "localhost")
	v.SetDefault("cookie.secure", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("maintenance.intervalminutes", 60)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
