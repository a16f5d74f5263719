package mssql

import (
	"fmt"
	"net/url"
	"os"

	"github.com/go-playground/validator/v10"
)

// Config carries the SQL Server connection settings. It is built explicitly
// (usually from the environment, after godotenv has loaded .env) and passed
// to NewProvider; the provider never reads process state itself.
type Config struct {
	Server    string `validate:"required"`
	Database  string `validate:"required"`
	User      string `validate:"required"`
	Password  string `validate:"required"`
	TrustCert bool
	Encrypt   bool
}

// ConfigFromEnv assembles a Config from the DB_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Server:    os.Getenv("DB_SERVER"),
		Database:  os.Getenv("DB_DATABASE"),
		User:      os.Getenv("DB_USERNAME"),
		Password:  os.Getenv("DB_PASSWORD"),
		TrustCert: envFlag("DB_TRUST_CERT", true),
		Encrypt:   envFlag("DB_ENCRYPT", false),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("incomplete database configuration: %w", err)
	}
	return nil
}

// DSN renders the sqlserver connection URL consumed by the driver.
func (c Config) DSN() string {
	query := url.Values{}
	query.Set("database", c.Database)
	query.Set("encrypt", boolWord(c.Encrypt))
	query.Set("trustservercertificate", boolWord(c.TrustCert))

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Server,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func envFlag(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	default:
		return fallback
	}
}

func boolWord(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
