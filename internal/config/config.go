// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env         string `validate:"required"`                    // APP_ENV (dev, test, prod)
	Port        string `validate:"required,numeric"`            // APP_PORT
	DBDriver    string `validate:"oneof=mysql sqlite3"`         // DB_DRIVER
	DBUser      string `validate:"required_if=DBDriver mysql"`  // DB_USER
	DBPass      string                                          // DB_PASS (empty allowed)
	DBHost      string `validate:"required_if=DBDriver mysql"`  // DB_HOST
	DBPort      string `validate:"required_if=DBDriver mysql"`  // DB_PORT
	DBName      string `validate:"required_if=DBDriver mysql"`  // DB_NAME
	SQLitePath  string `validate:"required_if=DBDriver sqlite3"` // SQLITE_PATH
	AutoMigrate bool                                            // DB_AUTO_MIGRATE

	JWTSecret      string `validate:"required,min=16"` // JWT_SECRET
	AccessTTLMin   int    `validate:"min=1"`           // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int    `validate:"min=1"`           // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int    `validate:"min=4,max=31"`    // BCRYPT_COST

	LogLevel      string `validate:"oneof=trace debug info warn warning error fatal panic"` // LOG_LEVEL
	EventsEnabled bool                                                                    // EVENTS_ENABLED
	RabbitMQURL   string `validate:"required_if=EventsEnabled true"`                        // RABBITMQ_URL
}

// Load reads an optional .env file and the environment.  Invalid or
// missing required values halt the program with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}
	cfg, err := FromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	return cfg
}

// FromEnv builds a Config from the current environment and validates it.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		DBDriver:       strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBUser:         os.Getenv("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         os.Getenv("DB_NAME"),
		SQLitePath:     envStr("SQLITE_PATH", "maintenance.db"),
		AutoMigrate:    envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		LogLevel:       strings.ToLower(envStr("LOG_LEVEL", "info")),
		EventsEnabled:  envBool("EVENTS_ENABLED", false),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
