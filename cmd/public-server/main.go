package main

import (
	"context"
	"log"

	"support-desk/internal/api"
	"support-desk/internal/api/router"
	"support-desk/internal/bootstrap"
	"support-desk/internal/websocket"
)

func main() {
	rt, err := bootstrap.Start(context.Background())
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	notifier, err := rt.Notifier()
	if err != nil {
		log.Fatalf("notifier init failed: %v", err)
	}

	deps := &api.Dependencies{
		CORS:     rt.Config.CORS,
		Registry: rt.Registry(),
		Notifier: notifier,
	}
	if rt.ChatRedis != nil {
		deps.Publisher = websocket.NewPublisher(rt.ChatRedis)
	} else {
		log.Println("chat redis not configured, new requests will not reach agents live")
	}

	server := api.NewAPIServer(
		rt.Config.Servers.Public,
		rt.Queue,
		rt.DB,
		deps,
		router.UtilsRoutes("/api", "public-server"),
		router.PublicRoutes("/api"),
	)

	rt.Shutdown.Register(server.Shutdown)
	rt.ReleaseOnShutdown()
	rt.Shutdown.StartListening()

	if err := server.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	// StartListening exits the process once the shutdown tasks finish.
	select {}
}
