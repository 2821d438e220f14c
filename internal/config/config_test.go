package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
mail:
  username: alerts@example.com
  password: from-file
browser:
  user_agent: Mozilla/5.0 (test)
venue:
  label: Wadsworth 2025
fetch:
  start: "2025-01"
  end: "2025-12"
  timeout: 10s
  on_error: abort
window:
  start: "2025-06-01"
  end: "2025-09-30"
schedule: "0 */6 * * *"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvMailUsername, EnvMailPassword, EnvMailHost, EnvMailPort, EnvUserAgent} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeFile(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Mail.Username != "alerts@example.com" || cfg.Mail.Password != "from-file" {
		t.Errorf("mail = %+v", cfg.Mail)
	}
	if cfg.Mail.Host != DefaultMailHost || cfg.Mail.Port != DefaultMailPort {
		t.Errorf("mail relay defaults lost: %s:%d", cfg.Mail.Host, cfg.Mail.Port)
	}
	if cfg.Venue.Label != "Wadsworth 2025" {
		t.Errorf("venue label = %q", cfg.Venue.Label)
	}
	if cfg.Venue.CalendarID != 28897 {
		t.Errorf("calendar id default lost: %d", cfg.Venue.CalendarID)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("fetch timeout = %v, want 10s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.OnError != OnErrorAbort {
		t.Errorf("on_error = %q, want abort", cfg.Fetch.OnError)
	}
	if cfg.Schedule != "0 */6 * * *" {
		t.Errorf("schedule = %q", cfg.Schedule)
	}

	if err := cfg.Validate(true); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFile(absent) error = %v, want ErrConfigNotFound", err)
	}

	if _, err := LoadFile(writeFile(t, "bad.yaml", "mail: [unclosed")); err == nil {
		t.Error("LoadFile(bad yaml) expected error")
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	configPath := writeFile(t, "config.yaml", sampleYAML)
	envPath := writeFile(t, ".env", "SATURDAY_ALERT_MAIL_PASSWORD=from-env-file\nSATURDAY_ALERT_USER_AGENT=EnvFileAgent/1.0\n")

	t.Setenv(EnvUserAgent, "ProcessAgent/2.0")

	cfg, err := Load(configPath, envPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Mail.Username != "alerts@example.com" {
		t.Errorf("username = %q, want file value", cfg.Mail.Username)
	}
	if cfg.Mail.Password != "from-env-file" {
		t.Errorf("password = %q, want env file value", cfg.Mail.Password)
	}
	if cfg.Browser.UserAgent != "ProcessAgent/2.0" {
		t.Errorf("user agent = %q, want process env value", cfg.Browser.UserAgent)
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	clearEnv(t)
	configPath := writeFile(t, "config.yaml", sampleYAML)

	if _, err := Load(configPath, filepath.Join(t.TempDir(), "no.env")); err == nil {
		t.Error("Load() with missing env file expected error")
	}

	t.Setenv(EnvMailPort, "twenty-five")
	_, err := Load(configPath, "")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) || cfgErr.Key != "mail.port" {
		t.Errorf("Load() error = %v, want config error for mail.port", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := NewConfig()
		cfg.Mail.Username = "me@example.com"
		cfg.Mail.Password = "secret"
		cfg.Browser.UserAgent = "Agent/1.0"
		return cfg
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		requireMail bool
		wantKey     string
		wantErr     error
	}{
		{name: "valid", mutate: func(*Config) {}, requireMail: true},
		{name: "missing user agent", mutate: func(c *Config) { c.Browser.UserAgent = "" }, wantKey: "browser.user_agent", wantErr: ErrMissingKey},
		{name: "missing username", mutate: func(c *Config) { c.Mail.Username = "" }, requireMail: true, wantKey: "mail.username", wantErr: ErrMissingKey},
		{name: "missing password", mutate: func(c *Config) { c.Mail.Password = "" }, requireMail: true, wantKey: "mail.password", wantErr: ErrMissingKey},
		{name: "mail not required", mutate: func(c *Config) { c.Mail.Password = "" }},
		{name: "bad port", mutate: func(c *Config) { c.Mail.Port = 0 }, requireMail: true, wantKey: "mail.port", wantErr: ErrInvalidValue},
		{name: "bad fetch start", mutate: func(c *Config) { c.Fetch.Start = "Jan 2024" }, wantKey: "fetch.start", wantErr: ErrInvalidValue},
		{name: "span reversed", mutate: func(c *Config) { c.Fetch.Start = "2024-12"; c.Fetch.End = "2024-01" }, wantKey: "fetch.end", wantErr: ErrInvalidValue},
		{name: "window reversed", mutate: func(c *Config) { c.Window.Start = "2024-10-31"; c.Window.End = "2024-05-01" }, wantKey: "window", wantErr: ErrInvalidValue},
		{name: "zero timeout", mutate: func(c *Config) { c.Fetch.Timeout = 0 }, wantKey: "fetch.timeout", wantErr: ErrInvalidValue},
		{name: "bad on_error", mutate: func(c *Config) { c.Fetch.OnError = "retry" }, wantKey: "fetch.on_error", wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate(tt.requireMail)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %T, want *Error", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Error.Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestScraperOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Browser.UserAgent = "Agent/1.0"
	cfg.Fetch.Timeout = 3 * time.Second

	opts := cfg.ScraperOptions()
	if opts.UserAgent != "Agent/1.0" || opts.Timeout != 3*time.Second {
		t.Errorf("ScraperOptions() = %+v", opts)
	}
	if opts.URL != cfg.Venue.Endpoint || opts.CalendarID != cfg.Venue.CalendarID {
		t.Errorf("ScraperOptions() venue fields = %+v", opts)
	}
}

func TestPromptPassword_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := PromptPassword(f, os.Stderr, "Password: "); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("PromptPassword() error = %v, want ErrNotTerminal", err)
	}
}
