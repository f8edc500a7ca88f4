package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr              string        `yaml:"addr" validate:"required"`
	StaticDir         string        `yaml:"staticDir" validate:"required"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout" validate:"gt=0"`
	MaxUploadBytes    int64         `yaml:"maxUploadBytes" validate:"gt=0"`
}

type StorageConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwtSecret" validate:"required,min=16"`
	TokenTTL   time.Duration `yaml:"tokenTtl" validate:"gt=0"`
	BcryptCost int           `yaml:"bcryptCost" validate:"gte=4,lte=31"`
	Revocation string        `yaml:"revocation" validate:"oneof=none memory redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8000",
			StaticDir:         "static",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxUploadBytes:    32 << 20,
		},
		Storage: StorageConfig{Path: "quiz.db"},
		Auth: AuthConfig{
			TokenTTL:   time.Hour,
			BcryptCost: 10,
			Revocation: "none",
		},
	}
}

// Load reads the optional YAML file at path, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	setString := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}

	setString("ADDR", &cfg.Server.Addr)
	setString("STATIC_DIR", &cfg.Server.StaticDir)
	setString("DB_PATH", &cfg.Storage.Path)
	setString("JWT_SECRET", &cfg.Auth.JWTSecret)
	setString("REVOCATION", &cfg.Auth.Revocation)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)

	if value, ok := lookup("TOKEN_TTL"); ok && value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = ttl
	}
	if value, ok := lookup("BCRYPT_COST"); ok && value != "" {
		cost, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		cfg.Auth.BcryptCost = cost
	}
	if value, ok := lookup("REDIS_DB"); ok && value != "" {
		db, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

// secretFields are reported without their value.
var secretFields = map[string]bool{
	"Config.Auth.JWTSecret": true,
	"Config.Redis.Password": true,
}

func (c Config) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(redisRequired, Config{})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validate config: %w", err)
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		if secretFields[fieldErr.StructNamespace()] {
			messages = append(messages, fmt.Sprintf("%s failed %q", fieldErr.Namespace(), fieldErr.Tag()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s failed %q (value: %v)", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Value()))
	}
	return fmt.Errorf("invalid config:\n- %s", strings.Join(messages, "\n- "))
}

func redisRequired(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Auth.Revocation == "redis" && cfg.Redis.Addr == "" {
		sl.ReportError(cfg.Redis.Addr, "Redis.Addr", "Addr", "required_with_redis_revocation", "")
	}
}
