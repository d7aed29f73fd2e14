package main

import (
	"context"
	"log"

	"support-desk/internal/api"
	"support-desk/internal/api/router"
	"support-desk/internal/bootstrap"
	"support-desk/internal/scheduler"
	"support-desk/internal/service/agent"
	"support-desk/internal/service/chat"
	"support-desk/internal/websocket"
)

func main() {
	rt, err := bootstrap.Start(context.Background())
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	cfg := rt.Config

	registry := rt.Registry()
	agents := agent.New(rt.DB)

	hub := websocket.NewHub()
	go hub.Run(rt.Ctx)

	wsRouter := websocket.NewRouter(websocket.RouterConfig{
		Chat:          chat.New(rt.DB),
		Agents:        agents,
		Registry:      registry,
		Emitter:       hub,
		DeliveryDelay: cfg.Chat.DeliveryDelay,
	})
	handler := websocket.NewHandler(rt.Ctx, hub, wsRouter, cfg.CORS.AllowedOrigins)

	if rt.ChatRedis != nil {
		go websocket.Relay(rt.Ctx, rt.ChatRedis, hub)
	}

	jobs := scheduler.New(rt.Ctx)
	if notifier, err := rt.Notifier(); err != nil {
		log.Printf("outbox retry disabled: %v", err)
	} else if err := jobs.Add(scheduler.OutboxRetryJob(cfg.Schedule.OutboxRetry, notifier)); err != nil {
		log.Fatalf("schedule outbox retry: %v", err)
	}
	live := websocket.AgentLiveness(rt.Ctx, registry, hub)
	if err := jobs.Add(scheduler.IdleAgentsJob(cfg.Schedule.IdleAgents, cfg.Schedule.IdleAfter, agents, live)); err != nil {
		log.Fatalf("schedule idle agents: %v", err)
	}
	jobs.Start()

	server := api.NewAPIServer(
		cfg.Servers.WS,
		rt.Queue,
		rt.DB,
		&api.Dependencies{CORS: cfg.CORS, Handler: handler},
		router.UtilsRoutes("/api", "ws-server"),
		router.WSRoutes("/api"),
	)

	rt.Shutdown.Register(server.Shutdown)
	rt.Shutdown.Register(jobs.Stop)
	rt.Shutdown.Register(func(ctx context.Context) error {
		wsRouter.Stop()
		return nil
	})
	rt.ReleaseOnShutdown()
	rt.Shutdown.StartListening()

	if err := server.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	// StartListening exits the process once the shutdown tasks finish.
	select {}
}
