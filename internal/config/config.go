package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	devJWTSecret     = "americano-dev-secret"
	devAdminPassword = "admin"
)

type Config struct {
	App                   string        `mapstructure:"app"`
	Port                  string        `mapstructure:"port"`
	LogLevel              string        `mapstructure:"log_level"`
	PostgresDSN           string        `mapstructure:"postgres_dsn"`
	PostgresMigrationsDir string        `mapstructure:"postgres_migrations_dir"`
	DBPath                string        `mapstructure:"db_path"`
	DBMigrationsDir       string        `mapstructure:"db_migrations_dir"`
	AdminPasswordHash     string        `mapstructure:"admin_password_hash"`
	AdminPassword         string        `mapstructure:"admin_password"`
	JWTSecret             string        `mapstructure:"jwt_secret"`
	JWTTTL                time.Duration `mapstructure:"jwt_ttl"`
	CORSOrigins           []string      `mapstructure:"cors_origins"`
	LambdaFunction        string        `mapstructure:"aws_lambda_function_name"`
	Export                ExportConfig  `mapstructure:"export"`
}

// ExportConfig points at the S3-compatible bucket that published exports go to.
// Publishing is off while Bucket is empty.
type ExportConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

func (c Config) Prod() bool {
	return strings.EqualFold(strings.TrimSpace(c.App), "prod")
}

func (c Config) Lambda() bool {
	return c.LambdaFunction != ""
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (e ExportConfig) Enabled() bool {
	return strings.TrimSpace(e.Bucket) != ""
}

var defaults = map[string]any{
	"app":                      "dev",
	"port":                     "8080",
	"log_level":                "info",
	"postgres_dsn":             "",
	"postgres_migrations_dir":  "",
	"db_path":                  "",
	"db_migrations_dir":        "",
	"admin_password_hash":      "",
	"admin_password":           "",
	"jwt_secret":               "",
	"jwt_ttl":                  "12h",
	"cors_origins":             "*",
	"aws_lambda_function_name": "",
	"export.bucket":            "",
	"export.endpoint":          "",
	"export.region":            "auto",
	"export.access_key_id":     "",
	"export.secret_access_key": "",
	"export.public_base_url":   "",
}

// Load reads configuration from the environment, with .env and .env.local loaded
// first outside Lambda. A config.yaml in one of searchPaths (default "." and
// "./config") fills anything the environment leaves unset.
func Load(searchPaths ...string) (Config, error) {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(".env.local")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(searchPaths) == 0 {
		searchPaths = []string{".", "./config"}
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive, got %s", c.JWTTTL)
	}
	if c.JWTSecret == "" {
		if c.Prod() {
			return errors.New("JWT_SECRET is required when APP=prod")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.AdminPasswordHash == "" && c.AdminPassword == "" {
		if c.Prod() {
			return errors.New("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required when APP=prod")
		}
		c.AdminPassword = devAdminPassword
	}
	return nil
}

// splitOrigins accepts both a yaml list and a comma separated env value.
func splitOrigins(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
