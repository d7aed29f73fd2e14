package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultTTL = 24 * time.Hour

	userKeyPrefix        = "presence:user:"
	socketUserKeyPrefix  = "presence:socket-user:"
	agentKeyPrefix       = "presence:agent:"
	agentSocketKeyPrefix = "presence:agent-socket:"
)

// RedisRegistry shares presence between the REST and websocket processes.
// Entries expire after ttl so stale sockets do not linger after a crash.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) SetUserSocket(ctx context.Context, userID, socketID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKeyPrefix+userID, socketID, r.ttl)
		pipe.Set(ctx, socketUserKeyPrefix+socketID, userID, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence: set user socket: %w", err)
	}
	return nil
}

func (r *RedisRegistry) UserSocket(ctx context.Context, userID string) (string, bool, error) {
	return r.getString(ctx, userKeyPrefix+userID)
}

func (r *RedisRegistry) SetAgent(ctx context.Context, info AgentInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("presence: encode agent: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, agentKeyPrefix+info.SocketID, payload, r.ttl)
		pipe.Set(ctx, agentSocketKeyPrefix+info.AgentID, info.SocketID, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence: set agent: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Agent(ctx context.Context, socketID string) (AgentInfo, bool, error) {
	raw, ok, err := r.getString(ctx, agentKeyPrefix+socketID)
	if err != nil || !ok {
		return AgentInfo{}, false, err
	}
	var info AgentInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return AgentInfo{}, false, fmt.Errorf("presence: decode agent: %w", err)
	}
	return info, true, nil
}

func (r *RedisRegistry) AgentSocket(ctx context.Context, agentID string) (string, bool, error) {
	return r.getString(ctx, agentSocketKeyPrefix+agentID)
}

func (r *RedisRegistry) RemoveSocket(ctx context.Context, socketID string) (AgentInfo, bool, error) {
	userID, hasUser, err := r.getString(ctx, socketUserKeyPrefix+socketID)
	if err != nil {
		return AgentInfo{}, false, err
	}
	if hasUser {
		current, _, err := r.getString(ctx, userKeyPrefix+userID)
		if err != nil {
			return AgentInfo{}, false, err
		}
		keys := []string{socketUserKeyPrefix + socketID}
		if current == socketID {
			keys = append(keys, userKeyPrefix+userID)
		}
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return AgentInfo{}, false, fmt.Errorf("presence: remove user socket: %w", err)
		}
	}

	info, isAgent, err := r.Agent(ctx, socketID)
	if err != nil || !isAgent {
		return AgentInfo{}, false, err
	}

	keys := []string{agentKeyPrefix + socketID}
	if current, _, err := r.getString(ctx, agentSocketKeyPrefix+info.AgentID); err == nil && current == socketID {
		keys = append(keys, agentSocketKeyPrefix+info.AgentID)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return AgentInfo{}, false, fmt.Errorf("presence: remove agent: %w", err)
	}
	return info, true, nil
}

func (r *RedisRegistry) getString(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("presence: get %s: %w", key, err)
	}
	return val, true, nil
}
