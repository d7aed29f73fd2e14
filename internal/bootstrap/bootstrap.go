// Package bootstrap assembles what every server binary shares: environment,
// config, storage, Redis clients, JWT settings and graceful shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"support-desk/internal/config"
	"support-desk/internal/database"
	"support-desk/internal/env"
	internaljwt "support-desk/internal/jwt"
	"support-desk/internal/presence"
	"support-desk/internal/queue"
	"support-desk/internal/service/notification"
	"support-desk/utils"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 5 * time.Second

type Runtime struct {
	Ctx      context.Context
	Config   *config.Config
	DB       *database.Database
	Queue    *queue.RequestQueueManager
	Shutdown *utils.ShutdownManager

	// ChatRedis carries websocket fan-out and, when enabled, presence. Nil when unset.
	ChatRedis *redis.Client
	// AuthRedis stores refresh tokens. Nil when unset.
	AuthRedis *redis.Client
}

// Start loads .env and the YAML config, connects storage and Redis, and
// configures token signing. Callers register their own shutdown tasks and
// then call ReleaseOnShutdown so shared resources close last.
func Start(ctx context.Context) (*Runtime, error) {
	if err := env.Load(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(env.GetOrDefault(env.ConfigPath, "support.yaml"))
	if err != nil {
		return nil, err
	}

	ctx, sm := utils.NewShutdownManager(ctx)
	rt := &Runtime{Ctx: ctx, Config: cfg, Shutdown: sm}

	db, err := database.NewDatabase(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("db init failed: %w", err)
	}
	rt.DB = db

	rt.ChatRedis, err = openRedis(ctx, cfg.Redis.Chat)
	if err != nil {
		return nil, fmt.Errorf("chat redis: %w", err)
	}
	rt.AuthRedis, err = openRedis(ctx, cfg.Redis.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth redis: %w", err)
	}

	internaljwt.Configure(internaljwt.Settings{
		AgentSecret: env.Get(env.AgentSecretKey),
		AdminSecret: env.Get(env.AdminSecretKey),
		AccessTTL:   cfg.Chat.TokenTTL,
		Redis:       rt.AuthRedis,
	})

	rt.Queue = queue.NewRequestQueueManager(cfg.Queue.Size, cfg.Queue.Workers)

	return rt, nil
}

// ReleaseOnShutdown queues the request queue, Redis clients and storage for
// shutdown, after every task registered so far.
func (rt *Runtime) ReleaseOnShutdown() {
	rt.Shutdown.Register(func(ctx context.Context) error {
		rt.Queue.Shutdown()
		return nil
	})
	rt.Shutdown.Register(func(ctx context.Context) error {
		var errs []error
		for _, c := range []*redis.Client{rt.ChatRedis, rt.AuthRedis} {
			if c != nil {
				if err := c.Close(); err != nil {
					errs = append(errs, err)
				}
			}
		}
		return errors.Join(errs...)
	})
	rt.Shutdown.Register(rt.DB.Close)
}

func openRedis(ctx context.Context, ep config.RedisEndpoint) (*redis.Client, error) {
	if ep.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: ep.Addr, Password: ep.Password})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping %s: %w", ep.Addr, err)
	}
	return client, nil
}

// Registry returns the shared Redis registry when presence is enabled, and a
// process-local one otherwise.
func (rt *Runtime) Registry() presence.Registry {
	if rt.Config.Redis.Presence && rt.ChatRedis != nil {
		return presence.NewRedisRegistry(rt.ChatRedis, rt.Config.Redis.PresenceTTL)
	}
	if rt.Config.Redis.Presence {
		log.Println("[BOOTSTRAP] presence requested without chat redis, using process memory")
	}
	return presence.NewMemoryRegistry()
}

func (rt *Runtime) Notifier() (*notification.Service, error) {
	return notification.NewFromConfig(rt.Config.Mail, rt.Config.Alerts)
}
