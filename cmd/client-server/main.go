package main

import (
	"context"
	"log"

	"support-desk/internal/api"
	"support-desk/internal/api/router"
	"support-desk/internal/bootstrap"
)

func main() {
	rt, err := bootstrap.Start(context.Background())
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	server := api.NewAPIServer(
		rt.Config.Servers.Client,
		rt.Queue,
		rt.DB,
		&api.Dependencies{CORS: rt.Config.CORS},
		router.UtilsRoutes("/api", "client-server"),
		router.AdminRoutes("/api"),
		router.AgentRoutes("/api"),
		router.DeskRoutes("/api"),
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
