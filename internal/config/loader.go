package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the credential settings
const (
	EnvMailUsername = "SATURDAY_ALERT_MAIL_USERNAME"
	EnvMailPassword = "SATURDAY_ALERT_MAIL_PASSWORD"
	EnvMailHost     = "SATURDAY_ALERT_MAIL_HOST"
	EnvMailPort     = "SATURDAY_ALERT_MAIL_PORT"
	EnvUserAgent    = "SATURDAY_ALERT_USER_AGENT"
)

// Load reads the configuration.
//
// An empty path means DefaultConfigFile, which may be absent; an explicit path
// must exist. When envFile is set its variables are applied over the file, and
// the process environment is applied over both.
func Load(path, envFile string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile()
	}

	cfg, err := LoadFile(path)
	switch {
	case errors.Is(err, ErrConfigNotFound) && !explicit:
		cfg = NewConfig()
	case err != nil:
		return nil, err
	}

	vars := map[string]string{}
	if envFile != "" {
		vars, err = godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("reading env file: %w", err)
		}
	}

	if err := cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return vars[key]
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads a YAML configuration file over the defaults.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// applyEnv overrides credentials with any non-empty variables
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvMailUsername); v != "" {
		c.Mail.Username = v
	}
	if v := getenv(EnvMailPassword); v != "" {
		c.Mail.Password = v
	}
	if v := getenv(EnvMailHost); v != "" {
		c.Mail.Host = v
	}
	if v := getenv(EnvMailPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return invalid("mail.port", fmt.Sprintf("%s=%q is not a number", EnvMailPort, v))
		}
		c.Mail.Port = port
	}
	if v := getenv(EnvUserAgent); v != "" {
		c.Browser.UserAgent = v
	}
	return nil
}
