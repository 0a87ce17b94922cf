package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds PostgreSQL connection settings.
// URL, when set, takes precedence over the discrete fields.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

const (
	defaultPort           = "5432"
	defaultSSLMode        = "disable"
	defaultMaxConnections = 5
	defaultMigrationsDir  = "migrations"
)

// Normalize fills defaults and checks that a target database is named.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.URL) != "" {
		if _, err := url.Parse(c.URL); err != nil {
			return fmt.Errorf("invalid database url: %w", err)
		}
	} else {
		if strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("database host and name are required (or set DATABASE_URL)")
		}
		if strings.TrimSpace(c.Port) == "" {
			c.Port = defaultPort
		}
		if strings.TrimSpace(c.SSLMode) == "" {
			c.SSLMode = defaultSSLMode
		}
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConnections
	}
	if strings.TrimSpace(c.MigrationsDir) == "" {
		c.MigrationsDir = defaultMigrationsDir
	}
	return nil
}

// URLString renders the postgres:// URL used by both lib/pq and golang-migrate.
func (c Config) URLString() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Target describes the database for logs without exposing credentials.
func (c Config) Target() (host, name string) {
	if u, err := url.Parse(c.URLString()); err == nil {
		return u.Hostname(), strings.TrimPrefix(u.Path, "/")
	}
	return c.Host, c.Name
}
