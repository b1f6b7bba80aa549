package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTAccessSecret       string `mapstructure:"JWT_ACCESS_TOKEN_SECRET"`
	JWTAccessExpirationMS int64  `mapstructure:"JWT_ACCESS_TOKEN_EXPIRATION_MS"`

	JWTRefreshSecret       string `mapstructure:"JWT_REFRESH_TOKEN_SECRET"`
	JWTRefreshExpirationMS int64  `mapstructure:"JWT_REFRESH_TOKEN_EXPIRATION_MS"`

	FrontendURL string `mapstructure:"FRONTEND_URL"`

	EmailHost     string `mapstructure:"EMAIL_HOST"`
	EmailPort     int    `mapstructure:"EMAIL_PORT"`
	EmailUser     string `mapstructure:"EMAIL_USER"`
	EmailPassword string `mapstructure:"EMAIL_PASSWORD"`

	// Environment controls the Secure flag on auth cookies.
	Environment string `mapstructure:"ENVIRONMENT"`
}

var AppConfig *Config

// AccessTokenTTL returns the configured access-token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTAccessExpirationMS) * time.Millisecond
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWTRefreshExpirationMS) * time.Millisecond
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
