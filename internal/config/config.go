// ABOUTME: Configuration loader for the panel client, CLI, TUI and dev server
// ABOUTME: Layers defaults, .env, an optional YAML file and environment variables

package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when nothing else names a backend.
const DefaultAPIURL = "http://localhost:8080"

// DefaultLoginPaths is the ordered list of candidate login routes.
var DefaultLoginPaths = []string{
	"/api/auth/login",
	"/auth/login",
	"/login",
	"/api/login",
	"/api/v1/auth/login",
}

// DefaultHealthPaths is the ordered list of richer health endpoints.
var DefaultHealthPaths = []string{
	"/health",
	"/actuator/health",
	"/api/health",
	"/status",
}

// Duration is a time.Duration that accepts "15s" style strings or plain
// seconds in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := parseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds every tunable of the client stack.
type Config struct {
	// Backend
	APIURL         string   `yaml:"api_url"`
	RequestTimeout Duration `yaml:"request_timeout"` // per request executor call (default 15s)
	LoginTimeout   Duration `yaml:"login_timeout"`   // per login candidate attempt (default 10s)
	ProbeTimeout   Duration `yaml:"probe_timeout"`   // per connectivity probe method (default 3s)
	LoginPaths     []string `yaml:"login_paths"`
	HealthPaths    []string `yaml:"health_paths"`
	RejectMethod   string   `yaml:"reject_method"` // DELETE (default) or POST

	// Login validation and user normalization
	MinUsernameLength int    `yaml:"min_username_length"`
	MinPasswordLength int    `yaml:"min_password_length"`
	EmailDomain       string `yaml:"email_domain"`

	// Token store
	ExpiryMargin Duration `yaml:"expiry_margin"` // treat tokens expiring within this window as expired
	TokenDir     string   `yaml:"token_dir"`     // persistent tier directory
	SessionDir   string   `yaml:"session_dir"`   // short-lived tier directory
	SessionTTL   Duration `yaml:"session_ttl"`   // max age of the short-lived tier
	ValkeyURI    string   `yaml:"valkey_uri"`    // optional shared tier

	// Dev server
	Dev DevConfig `yaml:"dev"`
}

// DevConfig configures the development backend.
type DevConfig struct {
	Addr      string   `yaml:"addr"`
	LoginPath string   `yaml:"login_path"`
	JWTSecret string   `yaml:"jwt_secret"`
	TokenTTL  Duration `yaml:"token_ttl"`
	// LoginLimit caps login attempts per client IP per minute; 0 disables.
	LoginLimit int `yaml:"login_limit"`
}

// Defaults returns a Config populated with built-in defaults only.
func Defaults() *Config {
	return &Config{
		APIURL:            DefaultAPIURL,
		RequestTimeout:    Duration(15 * time.Second),
		LoginTimeout:      Duration(10 * time.Second),
		ProbeTimeout:      Duration(3 * time.Second),
		LoginPaths:        append([]string(nil), DefaultLoginPaths...),
		HealthPaths:       append([]string(nil), DefaultHealthPaths...),
		RejectMethod:      http.MethodDelete,
		MinUsernameLength: 3,
		MinPasswordLength: 4,
		EmailDomain:       "ibarra.gob.ec",
		TokenDir:          defaultTokenDir(),
		SessionDir:        defaultSessionDir(),
		SessionTTL:        Duration(12 * time.Hour),
		Dev: DevConfig{
			Addr:       ":8080",
			LoginPath:  "/auth/login",
			JWTSecret:  "panel-dev-secret",
			TokenTTL:   Duration(time.Hour),
			LoginLimit: 20,
		},
	}
}

// Load builds the configuration. Sources, lowest priority first: defaults,
// .env in the working directory, the YAML file at path (or PANEL_CONFIG),
// then PANEL_* environment variables.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()

	if path == "" {
		path = os.Getenv("PANEL_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	c.APIURL = ensureScheme(c.APIURL)
	return nil
}

func (c *Config) applyEnv() error {
	c.APIURL = ensureScheme(getEnv("PANEL_API_URL", c.APIURL))
	c.RejectMethod = strings.ToUpper(getEnv("PANEL_REJECT_METHOD", c.RejectMethod))
	c.EmailDomain = getEnv("PANEL_EMAIL_DOMAIN", c.EmailDomain)
	c.TokenDir = getEnv("PANEL_TOKEN_DIR", c.TokenDir)
	c.SessionDir = getEnv("PANEL_SESSION_DIR", c.SessionDir)
	c.ValkeyURI = getEnv("PANEL_VALKEY_URI", c.ValkeyURI)
	c.MinUsernameLength = getEnvInt("PANEL_MIN_USERNAME", c.MinUsernameLength)
	c.MinPasswordLength = getEnvInt("PANEL_MIN_PASSWORD", c.MinPasswordLength)

	if paths := getEnvStringList("PANEL_LOGIN_PATHS"); paths != nil {
		c.LoginPaths = paths
	}
	if paths := getEnvStringList("PANEL_HEALTH_PATHS"); paths != nil {
		c.HealthPaths = paths
	}

	c.Dev.Addr = getEnv("PANEL_DEV_ADDR", c.Dev.Addr)
	c.Dev.LoginPath = getEnv("PANEL_DEV_LOGIN_PATH", c.Dev.LoginPath)
	c.Dev.JWTSecret = getEnv("PANEL_DEV_JWT_SECRET", c.Dev.JWTSecret)
	c.Dev.LoginLimit = getEnvInt("PANEL_DEV_LOGIN_LIMIT", c.Dev.LoginLimit)

	for _, d := range []struct {
		key string
		dst *Duration
	}{
		{"PANEL_REQUEST_TIMEOUT", &c.RequestTimeout},
		{"PANEL_LOGIN_TIMEOUT", &c.LoginTimeout},
		{"PANEL_PROBE_TIMEOUT", &c.ProbeTimeout},
		{"PANEL_EXPIRY_MARGIN", &c.ExpiryMargin},
		{"PANEL_SESSION_TTL", &c.SessionTTL},
		{"PANEL_DEV_TOKEN_TTL", &c.Dev.TokenTTL},
	} {
		v, err := getEnvDuration(d.key, time.Duration(*d.dst))
		if err != nil {
			return err
		}
		*d.dst = Duration(v)
	}

	return nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api url is required")
	}
	if len(c.LoginPaths) == 0 {
		return errors.New("at least one login path is required")
	}
	for _, p := range c.LoginPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("login path %q must start with /", p)
		}
	}
	if c.RejectMethod != http.MethodDelete && c.RejectMethod != http.MethodPost {
		return fmt.Errorf("reject method must be DELETE or POST, got %q", c.RejectMethod)
	}
	for _, d := range []struct {
		name  string
		value Duration
	}{
		{"request timeout", c.RequestTimeout},
		{"login timeout", c.LoginTimeout},
		{"probe timeout", c.ProbeTimeout},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	if c.ExpiryMargin < 0 {
		return errors.New("expiry margin cannot be negative")
	}
	if c.MinUsernameLength < 1 || c.MinPasswordLength < 1 {
		return errors.New("credential minimum lengths must be at least 1")
	}
	if c.Dev.LoginLimit < 0 {
		return errors.New("dev login limit cannot be negative")
	}
	return nil
}

func defaultTokenDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "panel-municipal")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "panel-municipal")
}

func defaultSessionDir() string {
	if rt := os.Getenv("XDG_RUNTIME_DIR"); rt != "" {
		return filepath.Join(rt, "panel-municipal")
	}
	return filepath.Join(os.TempDir(), "panel-municipal-"+strconv.Itoa(os.Getuid()))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := parseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds http:// prefix if the URL has no scheme and strips a
// trailing slash so paths can be appended directly.
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	return strings.TrimRight(url, "/")
}
