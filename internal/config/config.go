package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	AuthConfig
	StoreConfig
	BookingConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Auth
	Store
	Booking
}

// New loads a .env file when one is present and returns the environment backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
