package websocket

import (
	"context"
	"log"
	"net/http"

	"support-desk/utils"

	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	router   *Router
	upgrader websocket.Upgrader
	ctx      context.Context
}

// NewHandler upgrades connections for hub. allowedOrigins follows the CORS
// configuration; "*" accepts any origin.
func NewHandler(ctx context.Context, hub *Hub, router *Router, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		router: router,
		ctx:    ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return utils.OriginAllowed(allowed, origin)
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WEBSOCKET] upgrade failed: %v", err)
		return
	}

	cl := newClient(conn, utils.NewSocketID())
	if !h.hub.Register(cl) {
		conn.Close()
		return
	}
	log.Printf("[WEBSOCKET] client %s connected from %s", cl.ID, utils.RealClientIP(r))

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.ctx, h.hub, h.router)

	h.router.Connected(cl.ID)
}
