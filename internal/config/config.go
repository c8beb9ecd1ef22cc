// Package config loads the application configuration from layered env
// files: config/default.env is required, config/local.env optionally
// overrides it.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the host:port form for net/http.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig is the PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	MaxConnections int
}

// Config is the validated application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	// CredentialsKey seals stored provider credentials.
	CredentialsKey [32]byte
}

// Load reads config from dir. The local override is loaded first so its
// values win; a missing local file is not an error, a missing default
// file is.
func Load(dir string) (*Config, error) {
	local := filepath.Join(dir, "local.env")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Load(local); err != nil {
			return nil, fmt.Errorf("load %s: %w", local, err)
		}
	}
	if err := godotenv.Load(filepath.Join(dir, "default.env")); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	cfg := &Config{}
	var err error

	cfg.Server.Host = os.Getenv("SERVER_HOST")
	if cfg.Server.Port, err = port("SERVER_PORT"); err != nil {
		return nil, err
	}

	cfg.Database.Host = os.Getenv("DATABASE_HOST")
	if cfg.Database.Port, err = port("DATABASE_PORT"); err != nil {
		return nil, err
	}
	cfg.Database.User = os.Getenv("DATABASE_USER")
	cfg.Database.Password = os.Getenv("DATABASE_PASSWORD")
	cfg.Database.DBName = os.Getenv("DATABASE_DB_NAME")
	if cfg.Database.MaxConnections, err = positiveInt("DATABASE_MAX_CONNECTIONS"); err != nil {
		return nil, err
	}

	key, err := base64.StdEncoding.DecodeString(os.Getenv("CREDENTIALS_KEY"))
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("CREDENTIALS_KEY must be 32 bytes, base64-encoded")
	}
	copy(cfg.CredentialsKey[:], key)

	return cfg, nil
}

func port(key string) (int, error) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 || n > 65535 {
		return 0, fmt.Errorf("%s must be a port in 0-65535", key)
	}
	return n, nil
}

func positiveInt(key string) (int, error) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}
