package jwt

import (
	"sync"
	"time"

	"support-desk/internal/env"

	"github.com/go-redis/redis/v8"
)

var (
	RedisClient *redis.Client

	AccessTokenTTL = 24 * time.Hour

	mu sync.RWMutex
)

const RefreshTokenTTL = 24 * 30 * time.Hour

const refreshKeyPrefix = "refresh:"

const (
	RoleAgent Role = iota
	RoleAdmin
)

var RoleSecrets = map[Role]string{
	RoleAgent: "",
	RoleAdmin: "",
}

// Settings configures signing secrets, token lifetime and the refresh token store.
type Settings struct {
	AgentSecret string
	AdminSecret string
	AccessTTL   time.Duration
	Redis       *redis.Client
}

func init() {
	Configure(Settings{
		AgentSecret: env.Get(env.AgentSecretKey),
		AdminSecret: env.Get(env.AdminSecretKey),
	})
}

// Configure replaces the package settings. Zero fields keep their current value.
func Configure(s Settings) {
	mu.Lock()
	defer mu.Unlock()

	if s.AgentSecret != "" {
		RoleSecrets[RoleAgent] = s.AgentSecret
	}
	if s.AdminSecret != "" {
		RoleSecrets[RoleAdmin] = s.AdminSecret
	}
	if s.AccessTTL > 0 {
		AccessTokenTTL = s.AccessTTL
	}
	if s.Redis != nil {
		RedisClient = s.Redis
	}
}

func secretFor(role Role) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	secret, ok := RoleSecrets[role]
	if !ok || secret == "" {
		return "", false
	}
	return secret, true
}

func accessTTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return AccessTokenTTL
}
