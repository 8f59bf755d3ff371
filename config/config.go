package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"

	// DefaultJWTSecret is refused outside the memory backend.
	DefaultJWTSecret = "change-me-in-production"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Store   StoreConfig   `koanf:"store"`
	S3      S3Config      `koanf:"s3"`
	Auth    AuthConfig    `koanf:"auth"`
	OpenAI  OpenAIConfig  `koanf:"openai"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Port              string        `koanf:"port"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

type StoreConfig struct {
	Backend  string `koanf:"backend"`
	MongoURI string `koanf:"mongo_uri"`
	DBName   string `koanf:"db_name"`
}

type S3Config struct {
	Bucket      string `koanf:"bucket"`
	Region      string `koanf:"region"`
	AccessKeyID string `koanf:"access_key_id"`
	SecretKey   string `koanf:"secret_key"`
	MaxUploadMB int64  `koanf:"max_upload_mb"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	// AdminEmail and AdminPassword seed the first admin account.
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

type OpenAIConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              "8080",
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
		},
		Store: StoreConfig{
			Backend:  BackendMongo,
			MongoURI: "mongodb://localhost:27017",
			DBName:   "digital_library",
		},
		S3: S3Config{
			Region:      "us-east-1",
			MaxUploadMB: 5,
		},
		Auth: AuthConfig{
			JWTSecret:     DefaultJWTSecret,
			TokenTTL:      7 * 24 * time.Hour,
			AdminEmail:    "admin@digitallibrary.com",
			AdminPassword: "password",
		},
		OpenAI: OpenAIConfig{
			Model:   "gpt-4",
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps the environment variables we honour to koanf paths.
var envKeys = map[string]string{
	"PORT":                  "server.port",
	"CORS_ORIGINS":          "server.cors_origins",
	"RATE_LIMIT_REQUESTS":   "server.rate_limit_requests",
	"RATE_LIMIT_WINDOW":     "server.rate_limit_window",
	"STORE_BACKEND":         "store.backend",
	"MONGODB_URI":           "store.mongo_uri",
	"MONGODB_DB":            "store.db_name",
	"AWS_S3_BUCKET":         "s3.bucket",
	"AWS_REGION":            "s3.region",
	"AWS_ACCESS_KEY_ID":     "s3.access_key_id",
	"AWS_SECRET_ACCESS_KEY": "s3.secret_key",
	"MAX_UPLOAD_MB":         "s3.max_upload_mb",
	"JWT_SECRET":            "auth.jwt_secret",
	"TOKEN_TTL":             "auth.token_ttl",
	"AUTH_EMAIL":            "auth.admin_email",
	"AUTH_PASSWORD":         "auth.admin_password",
	"OPENAI_API_KEY":        "openai.api_key",
	"OPENAI_BASE_URL":       "openai.base_url",
	"OPENAI_MODEL":          "openai.model",
	"OPENAI_TIMEOUT":        "openai.timeout",
	"LOG_LEVEL":             "logging.level",
	"LOG_FORMAT":            "logging.format",
}

// envTransform returns "" for variables we do not use so koanf skips them.
func envTransform(key string) string {
	return envKeys[key]
}

// ConfigPathEnvVar overrides the YAML file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load layers defaults, an optional YAML file and the environment, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.DBName == "" {
			errs = append(errs, errors.New("MONGODB_URI and MONGODB_DB are required for the mongo backend"))
		}
		if c.Auth.JWTSecret == DefaultJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set to a strong secret (not the default)"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q (use %s or %s)", c.Store.Backend, BackendMongo, BackendMemory))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.S3.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	if c.Server.RateLimitRequests <= 0 || c.Server.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes is the cover upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.S3.MaxUploadMB * 1024 * 1024
}
