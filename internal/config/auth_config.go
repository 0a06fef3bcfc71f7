package config

import (
	"strings"
	"time"
)

type AuthConfig interface {
	GetAuthBaseURL() string
	GetAuthTimeout() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetAuthBaseURL is the external authentication backend serving /auth/signin and /auth/signup
func (Auth) GetAuthBaseURL() string {
	return strings.TrimRight(GetEnv("AUTH_BASE_URL", "http://localhost:8000"), "/")
}

func (Auth) GetAuthTimeout() time.Duration {
	return GetDuration("AUTH_TIMEOUT", 10*time.Second)
}
