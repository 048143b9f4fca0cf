// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath        = pflag.String("config", "", "Path to the config.toml file")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers    = []string{"sqlite", "postgres"}
	validMailDrivers  = []string{"smtp", "log"}
	ErrMissingSecret  = errors.New("no jwt secret provided")
	ErrInvalidSetting = errors.New("invalid setting")
)

type Config struct {
	App          App          `mapstructure:"app"`
	Host         Host         `mapstructure:"host"`
	Database     Database     `mapstructure:"database"`
	JWT          JWT          `mapstructure:"jwt"`
	Verification Verification `mapstructure:"verification"`
	Pagination   Pagination   `mapstructure:"pagination"`
	Validation   Validation   `mapstructure:"validation"`
	Mail         Mail         `mapstructure:"mail"`
}

type App struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
}

type Host struct {
	Port int      `mapstructure:"port"`
	CORS []string `mapstructure:"cors"`
	SSL  SSL      `mapstructure:"ssl"`
}

type SSL struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWT struct {
	Secret string `mapstructure:"secret"`
}

// Verification holds the verification code policy. Both values are in minutes.
type Verification struct {
	CodeTTL        int `mapstructure:"code_ttl"`
	ResendCooldown int `mapstructure:"resend_cooldown"`
}

func (vc Verification) TTL() time.Duration {
	return time.Duration(vc.CodeTTL) * time.Minute
}

func (vc Verification) Cooldown() time.Duration {
	return time.Duration(vc.ResendCooldown) * time.Minute
}

type Pagination struct {
	PageSize int `mapstructure:"page_size"`
}

type Validation struct {
	MaxStringLength int `mapstructure:"max_string_length"`
}

type Mail struct {
	Driver    string `mapstructure:"driver"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	Workers   int    `mapstructure:"workers"`
	QueueSize int    `mapstructure:"queue_size"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	cfg, err := Load(v.GetViper())
	if errors.Is(err, ErrMissingSecret) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return cfg, err
}

// Load binds environment variables and defaults onto vp, reads the config
// file vp points at and returns the validated result. A missing config file
// is not fatal since everything can come from the environment.
func Load(vp *v.Viper) (*Config, error) {
	vp.AutomaticEnv()

	//
	// ENVS
	//
	vp.BindEnv("app.name", "app_name")
	vp.BindEnv("app.log_level", "app_log_level")

	vp.BindEnv("host.port", "host_port")
	vp.BindEnv("host.cors", "host_cors")

	vp.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	vp.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	vp.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	vp.BindEnv("database.driver", "database_driver")
	vp.BindEnv("database.dsn", "database_dsn")

	vp.BindEnv("jwt.secret", "jwt_secret")

	vp.BindEnv("verification.code_ttl", "verification_code_ttl")
	vp.BindEnv("verification.resend_cooldown", "verification_resend_cooldown")

	vp.BindEnv("pagination.page_size", "pagination_page_size")
	vp.BindEnv("validation.max_string_length", "validation_max_string_length")

	vp.BindEnv("mail.driver", "mail_driver")
	vp.BindEnv("mail.host", "mail_host")
	vp.BindEnv("mail.port", "mail_port")
	vp.BindEnv("mail.username", "mail_username")
	vp.BindEnv("mail.password", "mail_password")
	vp.BindEnv("mail.from", "mail_from")

	//
	// Defaults
	//
	vp.SetDefault("app.name", "Todo API")
	vp.SetDefault("app.log_level", "info")

	vp.SetDefault("host.port", 8080)
	vp.SetDefault("host.cors", []string{"http://localhost:5173"})
	vp.SetDefault("host.ssl.enabled", false)

	vp.SetDefault("database.driver", "sqlite")
	vp.SetDefault("database.dsn", "database.db")

	vp.SetDefault("verification.code_ttl", 10)
	vp.SetDefault("verification.resend_cooldown", 1)

	vp.SetDefault("pagination.page_size", 10)
	vp.SetDefault("validation.max_string_length", 255)

	vp.SetDefault("mail.driver", "smtp")
	vp.SetDefault("mail.port", 587)
	vp.SetDefault("mail.workers", 2)
	vp.SetDefault("mail.queue_size", 64)

	if err := vp.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}

		zap.L().Warn("No config file found, using defaults and environment")
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every setting holds a usable value
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("%w: app.name can't be empty", ErrInvalidSetting)
	}

	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return fmt.Errorf("%w: invalid log level provided", ErrInvalidSetting)
	}

	if c.Host.Port <= 0 {
		return fmt.Errorf("%w: invalid port provided", ErrInvalidSetting)
	}

	if len(c.Host.CORS) == 0 {
		return fmt.Errorf("%w: host.cors needs at least one origin", ErrInvalidSetting)
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return fmt.Errorf("%w: no ssl certificate path provided", ErrInvalidSetting)
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return fmt.Errorf("%w: no ssl certificate key path provided", ErrInvalidSetting)
		}
	}

	if !slices.Contains(validDBDrivers, c.Database.Driver) {
		return fmt.Errorf("%w: invalid database driver provided", ErrInvalidSetting)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn can't be empty", ErrInvalidSetting)
	}

	if c.JWT.Secret == "" {
		return ErrMissingSecret
	}

	if c.Verification.CodeTTL <= 0 {
		return fmt.Errorf("%w: verification.code_ttl must be bigger than 0", ErrInvalidSetting)
	}

	if c.Verification.ResendCooldown < 0 {
		return fmt.Errorf("%w: verification.resend_cooldown can't be negative", ErrInvalidSetting)
	}

	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("%w: pagination.page_size must be bigger than 0", ErrInvalidSetting)
	}

	if c.Validation.MaxStringLength <= 0 {
		return fmt.Errorf("%w: validation.max_string_length must be bigger than 0", ErrInvalidSetting)
	}

	if !slices.Contains(validMailDrivers, c.Mail.Driver) {
		return fmt.Errorf("%w: invalid mail driver provided", ErrInvalidSetting)
	}

	if c.Mail.Driver == "smtp" {
		if c.Mail.Host == "" {
			return fmt.Errorf("%w: mail.host can't be empty", ErrInvalidSetting)
		}

		if c.Mail.From == "" {
			return fmt.Errorf("%w: mail.from can't be empty", ErrInvalidSetting)
		}
	}

	if c.Mail.Workers <= 0 {
		return fmt.Errorf("%w: mail.workers must be bigger than 0", ErrInvalidSetting)
	}

	if c.Mail.QueueSize <= 0 {
		return fmt.Errorf("%w: mail.queue_size must be bigger than 0", ErrInvalidSetting)
	}

	return nil
}
