package config

import (
	"strings"
	"time"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type StoreConfig interface {
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetSessionMemoryCapacity() int
	GetUIStateCapacity() int
	GetUIStateTTL() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetSessionStore selects the persisted session key/value store: "memory" or "redis"
func (Store) GetSessionStore() string {
	if strings.EqualFold(GetEnv("SESSION_STORE", SessionStoreMemory), SessionStoreRedis) {
		return SessionStoreRedis
	}
	return SessionStoreMemory
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetInt("REDIS_DB", 0)
}

// GetSessionMemoryCapacity bounds how many browser sessions the in-memory store holds
func (Store) GetSessionMemoryCapacity() int {
	return GetInt("SESSION_MEMORY_CAPACITY", 10000)
}

// GetUIStateCapacity bounds how many browsers' UI state (wizard, calendar, modals) is held in memory
func (Store) GetUIStateCapacity() int {
	return GetInt("UI_STATE_CAPACITY", 10000)
}

// GetUIStateTTL is how long an idle browser's UI state is kept
func (Store) GetUIStateTTL() time.Duration {
	return GetDuration("UI_STATE_TTL", 2*time.Hour)
}
