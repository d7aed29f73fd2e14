package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"support-desk/internal/config"
	"support-desk/internal/database"
	"support-desk/internal/presence"
	"support-desk/internal/queue"
	"support-desk/internal/service/notification"
	"support-desk/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// Dependencies carries the shared collaborators route registrars pull from.
// Every field is optional.
type Dependencies struct {
	CORS       config.CORSConfig
	Handler    *websocket.Handler
	Publisher  *websocket.Publisher
	Registry   presence.Registry
	Notifier   *notification.Service
	Registerer prometheus.Registerer
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	db                  *database.Database
	routeRegistrars     []RouteRegistrar
	deps                Dependencies
	metrics             *metrics
	server              *http.Server
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, db *database.Database, deps *Dependencies, registrars ...RouteRegistrar) *APIServer {
	var d Dependencies
	if deps != nil {
		d = *deps
	}
	if len(d.CORS.AllowedOrigins) == 0 {
		d.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}

	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		db:                  db,
		deps:                d,
		routeRegistrars:     registrars,
		metrics:             newMetrics(d.Registerer, listenAddr, rqm),
	}
}

// Routes builds the mux with every registrar plus /metrics.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	return s.metrics.instrument(mux)
}

// Run blocks until the server stops. http.ErrServerClosed is not an error.
func (s *APIServer) Run() error {
	s.server = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server listening on http://localhost%s", s.listenAddr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *APIServer) Database() *database.Database {
	return s.db
}

func (s *APIServer) Handler() *websocket.Handler {
	return s.deps.Handler
}

func (s *APIServer) Publisher() *websocket.Publisher {
	return s.deps.Publisher
}

func (s *APIServer) Registry() presence.Registry {
	return s.deps.Registry
}

func (s *APIServer) Notifier() *notification.Service {
	return s.deps.Notifier
}
